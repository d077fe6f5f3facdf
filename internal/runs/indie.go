package runs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mmcdole/gofeed"

	"newsdesk/internal/models"
	"newsdesk/pkg/utils"
)

// indieFeedExts are syndication formats accepted in the indie directory.
var indieFeedExts = map[string]bool{".xml": true, ".rss": true, ".atom": true}

// LoadIndie reads hand-curated drops from dir in filename order: a *.json file
// holds one raw article object, an RSS or Atom file contributes one record per
// item. Files that fail to parse are skipped.
func (l *Loader) LoadIndie(dir string) []models.RawRecord {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			l.log.Warn("cannot list indie directory", "dir", dir, "err", err)
		}

		return nil
	}

	var names []string

	for _, entry := range entries {
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if entry.IsDir() || (ext != ".json" && !indieFeedExts[ext]) {
			continue
		}

		names = append(names, entry.Name())
	}

	sort.Strings(names)

	parser := gofeed.NewParser()

	var out []models.RawRecord

	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			l.log.Warn("skipping indie file", "file", name, "err", err)
			continue
		}

		if strings.EqualFold(filepath.Ext(name), ".json") {
			rec, err := decodeIndieArticle(data)
			if err != nil {
				l.log.Warn("skipping indie file", "file", name, "err", err)
				continue
			}

			out = append(out, rec)

			continue
		}

		feed, err := parser.Parse(bytes.NewReader(data))
		if err != nil {
			l.log.Warn("skipping indie feed", "file", name, "err", err)
			continue
		}

		out = append(out, FeedRecords(feed)...)
	}

	return out
}

func decodeIndieArticle(data []byte) (models.RawRecord, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	obj, ok := doc.(map[string]any)
	if !ok {
		return nil, ErrNotObject
	}

	return models.RawRecord(obj), nil
}

// FeedRecords converts syndication items into raw records using canonical keys.
func FeedRecords(feed *gofeed.Feed) []models.RawRecord {
	out := make([]models.RawRecord, 0, len(feed.Items))

	for _, item := range feed.Items {
		rec := models.RawRecord{
			"title":      item.Title,
			"summary":    item.Description,
			"url":        item.Link,
			"source":     feed.Title,
			"source_url": feed.Link,
			"language":   feed.Language,
		}

		if item.GUID != "" {
			rec["id"] = item.GUID
		}

		switch {
		case item.PublishedParsed != nil:
			rec["published_at"] = utils.FormatInstant(*item.PublishedParsed)
		case item.UpdatedParsed != nil:
			rec["published_at"] = utils.FormatInstant(*item.UpdatedParsed)
		}

		if len(item.Categories) > 0 {
			topics := make([]any, 0, len(item.Categories))
			for _, c := range item.Categories {
				topics = append(topics, c)
			}

			rec["topics"] = topics
		}

		if len(item.Authors) > 0 && item.Authors[0] != nil {
			rec["author"] = item.Authors[0].Name
		}

		out = append(out, rec)
	}

	return out
}
