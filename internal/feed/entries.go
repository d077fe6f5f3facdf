package feed

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"newsdesk/internal/models"
	"newsdesk/pkg/utils"
)

// DayPattern matches a day partition name.
var DayPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// EntryPattern matches a per-article trace file name.
var EntryPattern = regexp.MustCompile(`^[a-z0-9-]+-[0-9a-f]{8}\.json$`)

// DailyIndexFile is the summary file of a day partition.
const DailyIndexFile = "index.json"

// EntryName returns the trace file name of an article: slug(title)-hash8.json.
// Articles without a usable title slug are named "untitled".
func EntryName(h *utils.StringHelper, a models.Article) string {
	slug := h.Slugify(a.Title)
	if slug == "" {
		slug = "untitled"
	}

	key := a.URL
	if key == "" {
		key = a.ID
	}

	if key == "" {
		key = a.Title
	}

	return fmt.Sprintf("%s-%s.json", slug, h.ShortHash(key))
}

// WriteEntries writes the day partition for articles under
// entriesDir/YYYY-MM-DD: an index.json summary plus one trace file per
// article. Trace files from earlier builds that are no longer part of the
// day's set are removed.
func WriteEntries(entriesDir string, day time.Time, articles []models.Article, now time.Time) (string, error) {
	date := utils.DateString(day)
	dir := filepath.Join(entriesDir, date)
	generatedAt := utils.FormatInstant(now)
	h := utils.NewStringHelper()

	var topics, countries []string
	for _, a := range articles {
		topics = append(topics, a.Topics...)
		countries = append(countries, a.Country)
	}

	index := models.DailyIndex{
		Date:        date,
		Count:       len(articles),
		Topics:      models.Tally(topics),
		Countries:   models.Tally(countries),
		GeneratedAt: generatedAt,
	}

	if err := WriteJSON(filepath.Join(dir, DailyIndexFile), index); err != nil {
		return "", fmt.Errorf("failed to write daily index: %w", err)
	}

	keep := map[string]bool{DailyIndexFile: true}

	for _, a := range articles {
		name := EntryName(h, a)
		// Two titles can share a slug and hash; the first ranked article keeps the name.
		if keep[name] {
			continue
		}

		keep[name] = true

		entry := models.Entry{Article: a, GeneratedAt: generatedAt, Date: date}
		if err := WriteJSON(filepath.Join(dir, name), entry); err != nil {
			return "", fmt.Errorf("failed to write entry %s: %w", name, err)
		}
	}

	if err := pruneEntries(dir, keep); err != nil {
		return "", err
	}

	return dir, nil
}

func pruneEntries(dir string, keep map[string]bool) error {
	files, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", dir, err)
	}

	for _, f := range files {
		if f.IsDir() || keep[f.Name()] || filepath.Ext(f.Name()) != ".json" {
			continue
		}

		if err := os.Remove(filepath.Join(dir, f.Name())); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to remove stale entry %s: %w", f.Name(), err)
		}
	}

	return nil
}

// ListDays returns the day partitions present under entriesDir, sorted.
func ListDays(entriesDir string) ([]string, error) {
	dirs, err := os.ReadDir(entriesDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}

		return nil, fmt.Errorf("failed to list %s: %w", entriesDir, err)
	}

	days := []string{}

	for _, d := range dirs {
		if d.IsDir() && DayPattern.MatchString(d.Name()) {
			days = append(days, d.Name())
		}
	}

	sort.Strings(days)

	return days, nil
}

// WriteCatalog rebuilds indexDir/catalog.json from the day partitions present.
func WriteCatalog(indexDir, entriesDir, version string, now time.Time) (models.Catalog, error) {
	days, err := ListDays(entriesDir)
	if err != nil {
		return models.Catalog{}, err
	}

	catalog := models.Catalog{
		Version:     version,
		GeneratedAt: utils.FormatInstant(now),
		Days:        days,
	}

	if err := WriteJSON(filepath.Join(indexDir, "catalog.json"), catalog); err != nil {
		return models.Catalog{}, fmt.Errorf("failed to write catalog: %w", err)
	}

	return catalog, nil
}
