package feed

import (
	"fmt"
	"path/filepath"
	"time"

	"newsdesk/internal/models"
	"newsdesk/pkg/utils"
)

// countIndex describes one by-<key> document.
type countIndex struct {
	file  string
	key   string
	names func(a models.Article) []string
}

var countIndexes = []countIndex{
	{file: "by-country.json", key: "byCountry", names: func(a models.Article) []string { return []string{a.Country} }},
	{file: "by-topic.json", key: "byTopic", names: func(a models.Article) []string { return a.Topics }},
	{file: "by-source.json", key: "bySource", names: func(a models.Article) []string { return []string{a.Source} }},
}

// TallyBy counts articles per value of a field.
func TallyBy(articles []models.Article, names func(a models.Article) []string) models.CountIndex {
	var all []string
	for _, a := range articles {
		all = append(all, names(a)...)
	}

	return models.Tally(all)
}

// WriteIndices writes the by-country, by-topic and by-source count documents
// for articles into indexDir.
func WriteIndices(indexDir, version string, articles []models.Article, now time.Time) error {
	for _, ix := range countIndexes {
		doc := models.CountsIndex{
			Version:     version,
			GeneratedAt: utils.FormatInstant(now),
			Key:         ix.key,
			Counts:      TallyBy(articles, ix.names),
		}

		if err := WriteJSON(filepath.Join(indexDir, ix.file), doc); err != nil {
			return fmt.Errorf("failed to write %s: %w", ix.file, err)
		}
	}

	return nil
}

// WriteRunsManifest lists the parsed run snapshots in indexDir/runs.json.
func WriteRunsManifest(indexDir, version string, runs []models.RunSummary, now time.Time) error {
	if runs == nil {
		runs = []models.RunSummary{}
	}

	doc := models.RunsManifest{
		Version:     version,
		GeneratedAt: utils.FormatInstant(now),
		Runs:        runs,
	}

	if err := WriteJSON(filepath.Join(indexDir, "runs.json"), doc); err != nil {
		return fmt.Errorf("failed to write runs manifest: %w", err)
	}

	return nil
}
