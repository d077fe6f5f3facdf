// Package models defines the records read from run snapshots and written to feeds.
package models

// RawRecord is an untrusted article as it appears in a run snapshot.
// No key is guaranteed to be present and values may be of any JSON type.
type RawRecord map[string]any

// Article is the canonical, schema-complete article record.
type Article struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Summary     string   `json:"summary"`
	URL         string   `json:"url"`
	Source      string   `json:"source"`
	SourceURL   string   `json:"source_url"`
	Country     string   `json:"country"`
	Topics      []string `json:"topics"`
	Language    string   `json:"language"`
	PublishedAt string   `json:"published_at"`
	Relevance   float64  `json:"relevance"`
	Sentiment   string   `json:"sentiment"`
	Author      string   `json:"author"`
	Curator     string   `json:"curator"`
}

// Entry is the per-article trace file stored under a day partition.
type Entry struct {
	Article
	GeneratedAt string `json:"generated_at"`
	Date        string `json:"date"`
}
