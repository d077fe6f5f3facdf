package normalizer

import (
	"math"
	"strconv"
	"strings"
	"time"

	"newsdesk/internal/models"
	"newsdesk/pkg/utils"
)

// Defaults holds the values used when a record carries none of the aliases
// for an attribute.
type Defaults struct {
	Country   string
	Language  string
	Sentiment string
	Curator   string
}

// DefaultValues returns the stock defaults.
func DefaultValues() Defaults {
	return Defaults{
		Country:   "Regional",
		Language:  "es",
		Sentiment: "neutral",
		Curator:   "Codex 1",
	}
}

// Transformer maps raw records to canonical articles.
type Transformer struct {
	defaults Defaults
}

// NewTransformer creates a new transformer instance.
func NewTransformer(defaults Defaults) *Transformer {
	return &Transformer{defaults: defaults}
}

// Transform converts a raw record into a canonical article. It never fails:
// absent or unusable values take their defaults. now is stamped on records
// that carry no publication time.
func (t *Transformer) Transform(raw models.RawRecord, now time.Time) models.Article {
	publishedAt, ok := t.str(raw, FieldPublishedAt)
	if !ok {
		publishedAt = utils.FormatInstant(now)
	}

	return models.Article{
		ID:          t.strOr(raw, FieldID, ""),
		Title:       t.strOr(raw, FieldTitle, ""),
		Summary:     t.strOr(raw, FieldSummary, ""),
		URL:         t.strOr(raw, FieldURL, ""),
		Source:      t.strOr(raw, FieldSource, ""),
		SourceURL:   t.strOr(raw, FieldSourceURL, ""),
		Country:     t.strOr(raw, FieldCountry, t.defaults.Country),
		Topics:      t.topics(raw),
		Language:    t.strOr(raw, FieldLanguage, t.defaults.Language),
		PublishedAt: publishedAt,
		Relevance:   t.relevance(raw),
		Sentiment:   t.strOr(raw, FieldSentiment, t.defaults.Sentiment),
		Author:      t.strOr(raw, FieldAuthor, ""),
		Curator:     t.strOr(raw, FieldCurator, t.defaults.Curator),
	}
}

func (t *Transformer) strOr(raw models.RawRecord, field, fallback string) string {
	if v, ok := t.str(raw, field); ok {
		return v
	}

	return fallback
}

func (t *Transformer) str(raw models.RawRecord, field string) (string, bool) {
	for _, key := range fieldAliases[field] {
		v, found := raw[key]
		if !found || !present(v) {
			continue
		}

		if s, ok := scalarString(v); ok {
			return s, true
		}
	}

	return "", false
}

func (t *Transformer) topics(raw models.RawRecord) []string {
	for _, key := range fieldAliases[FieldTopics] {
		v, found := raw[key]
		if !found || !present(v) {
			continue
		}

		switch tv := v.(type) {
		case string:
			return []string{tv}
		case []string:
			return append([]string{}, tv...)
		case []any:
			out := make([]string, 0, len(tv))

			for _, item := range tv {
				if s, ok := scalarString(item); ok && s != "" {
					out = append(out, s)
				}
			}

			return out
		}
	}

	return []string{}
}

func (t *Transformer) relevance(raw models.RawRecord) float64 {
	for _, key := range fieldAliases[FieldRelevance] {
		v, found := raw[key]
		if !found || !present(v) {
			continue
		}

		if f, ok := number(v); ok {
			return f
		}
	}

	return 0
}

// present reports whether v counts as a supplied value: null, empty strings,
// zero numbers, false and empty collections do not.
func present(v any) bool {
	switch tv := v.(type) {
	case nil:
		return false
	case string:
		return tv != ""
	case bool:
		return tv
	case float64:
		return tv != 0
	case int:
		return tv != 0
	case int64:
		return tv != 0
	case []any:
		return len(tv) > 0
	case []string:
		return len(tv) > 0
	case map[string]any:
		return len(tv) > 0
	default:
		return true
	}
}

func scalarString(v any) (string, bool) {
	switch tv := v.(type) {
	case string:
		return tv, true
	case float64:
		return strconv.FormatFloat(tv, 'f', -1, 64), true
	case int:
		return strconv.Itoa(tv), true
	case int64:
		return strconv.FormatInt(tv, 10), true
	case bool:
		return strconv.FormatBool(tv), true
	default:
		return "", false
	}
}

func number(v any) (float64, bool) {
	var f float64

	switch tv := v.(type) {
	case float64:
		f = tv
	case int:
		f = float64(tv)
	case int64:
		f = float64(tv)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(tv), 64)
		if err != nil {
			return 0, false
		}

		f = parsed
	default:
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}

	return f, true
}
