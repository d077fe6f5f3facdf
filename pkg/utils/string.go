// Package utils provides common utility functions.
package utils

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf16"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// StringHelper provides string utility functions.
type StringHelper struct {
	stripMarks transform.Transformer
}

// NewStringHelper creates a new string helper.
func NewStringHelper() *StringHelper {
	return &StringHelper{
		stripMarks: transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn))),
	}
}

// TrimWhitespace removes leading and trailing whitespace.
func (s *StringHelper) TrimWhitespace(str string) string {
	return strings.TrimSpace(str)
}

// NormalizeWhitespace replaces multiple whitespace with single space.
func (s *StringHelper) NormalizeWhitespace(str string) string {
	return strings.Join(strings.Fields(str), " ")
}

// TruncateString truncates string to max length in runes.
func (s *StringHelper) TruncateString(str string, maxLength int) string {
	r := []rune(str)
	if len(r) <= maxLength {
		return str
	}

	return string(r[:maxLength]) + "..."
}

// Slugify lowercases str, strips accents and collapses every run of
// characters outside [a-z0-9] into a single dash.
func (s *StringHelper) Slugify(str string) string {
	folded, _, err := transform.String(s.stripMarks, str)
	if err != nil {
		folded = str
	}

	folded = strings.ToLower(folded)

	var sb strings.Builder

	dash := false

	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)

			dash = false

			continue
		}

		if !dash && sb.Len() > 0 {
			sb.WriteByte('-')

			dash = true
		}
	}

	return strings.TrimSuffix(sb.String(), "-")
}

// ShortHash returns an 8-digit hex digest of str. It is the classic
// 31-multiplier string hash over UTF-16 code units, truncated to 32 bits, so
// names match those produced by the site's client code.
func (s *StringHelper) ShortHash(str string) string {
	var h int32

	for _, unit := range utf16.Encode([]rune(str)) {
		h = (h << 5) - h + int32(unit)
	}

	return fmt.Sprintf("%08x", uint32(h))
}
