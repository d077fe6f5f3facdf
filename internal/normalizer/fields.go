package normalizer

// Canonical attribute names.
const (
	FieldID          = "id"
	FieldTitle       = "title"
	FieldSummary     = "summary"
	FieldURL         = "url"
	FieldSource      = "source"
	FieldSourceURL   = "source_url"
	FieldCountry     = "country"
	FieldTopics      = "topics"
	FieldLanguage    = "language"
	FieldPublishedAt = "published_at"
	FieldRelevance   = "relevance"
	FieldSentiment   = "sentiment"
	FieldAuthor      = "author"
	FieldCurator     = "curator"
)

// fieldAliases lists, per canonical attribute, the raw keys consulted in
// priority order. The first key holding a usable value wins.
var fieldAliases = map[string][]string{
	FieldID:          {"id", "url", "title"},
	FieldTitle:       {"title", "titulo"},
	FieldSummary:     {"summary", "resumen"},
	FieldURL:         {"url", "link"},
	FieldSource:      {"source", "fuente"},
	FieldSourceURL:   {"source_url", "fuente_url"},
	FieldCountry:     {"country", "pais"},
	FieldTopics:      {"topics", "temas"},
	FieldLanguage:    {"language", "idioma"},
	FieldPublishedAt: {"published_at", "fecha"},
	FieldRelevance:   {"relevance", "relevancia"},
	FieldSentiment:   {"sentiment", "sentimiento"},
	FieldAuthor:      {"author", "autor"},
	FieldCurator:     {"curator", "curador"},
}

// Aliases returns the raw keys consulted for a canonical attribute.
func Aliases(field string) []string {
	return append([]string(nil), fieldAliases[field]...)
}
