package utils

import (
	"strings"
	"time"
)

// instantLayouts are tried in order. Layouts without a zone are read as UTC.
var instantLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseInstant parses an ISO-8601 timestamp. It reports false instead of
// failing when s is not a recognizable instant.
func ParseInstant(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	// A lowercase zone designator is valid ISO-8601 but not accepted by time.Parse.
	if strings.HasSuffix(s, "z") {
		s = s[:len(s)-1] + "Z"
	}

	for _, layout := range instantLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), true
		}
	}

	return time.Time{}, false
}

// FormatInstant renders t as an RFC 3339 UTC instant with a trailing Z.
func FormatInstant(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// DateString returns the UTC calendar date of t as YYYY-MM-DD.
func DateString(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}
