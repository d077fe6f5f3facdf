// Package runs discovers and parses run snapshots and hand-curated article drops.
package runs

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"newsdesk/internal/logger"
	"newsdesk/internal/models"
)

// Snapshot decoding errors. They never abort a load; the offending file is skipped.
var (
	ErrNotObject       = errors.New("snapshot root is not an object")
	ErrMissingArticles = errors.New("snapshot has no articles list")
)

// FilenamePattern matches run snapshot names, e.g. 2024-01-01T06-00-00-000Z.json.
var FilenamePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}-\d{2}-\d{2}-\d{3}Z\.json$`)

// Loader reads run snapshots from disk.
type Loader struct {
	log *logger.Logger
}

// NewLoader creates a loader that reports skipped files to log.
func NewLoader(log *logger.Logger) *Loader {
	return &Loader{log: log}
}

// ListFiles returns the *.json files in dir sorted by name. A missing
// directory yields no files and no error.
func ListFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	var names []string

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		names = append(names, entry.Name())
	}

	sort.Strings(names)

	return names, nil
}

// Load parses every snapshot in dir in filename order. Unreadable or malformed
// files are skipped; Load itself never fails.
func (l *Loader) Load(dir string) []models.Run {
	names, err := ListFiles(dir)
	if err != nil {
		l.log.Warn("cannot list runs directory", "dir", dir, "err", err)
		return nil
	}

	runs := make([]models.Run, 0, len(names))

	for _, name := range names {
		run, err := ReadSnapshot(filepath.Join(dir, name))
		if err != nil {
			l.log.Warn("skipping run snapshot", "file", name, "err", err)
			continue
		}

		runs = append(runs, run)
	}

	l.log.Debug("loaded run snapshots", "dir", dir, "files", len(names), "parsed", len(runs))

	return runs
}

// ReadSnapshot parses a single run snapshot file.
func ReadSnapshot(path string) (models.Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Run{}, fmt.Errorf("failed to read snapshot: %w", err)
	}

	return DecodeSnapshot(filepath.Base(path), data)
}

// DecodeSnapshot parses snapshot bytes. Elements of articles that are not
// objects are dropped one by one.
func DecodeSnapshot(name string, data []byte) (models.Run, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return models.Run{}, fmt.Errorf("invalid JSON: %w", err)
	}

	obj, ok := doc.(map[string]any)
	if !ok {
		return models.Run{}, ErrNotObject
	}

	list, ok := obj["articles"].([]any)
	if !ok {
		return models.Run{}, ErrMissingArticles
	}

	run := models.Run{
		File:     name,
		Articles: make([]models.RawRecord, 0, len(list)),
	}

	if ts, ok := obj["timestamp"].(string); ok {
		run.Timestamp = &ts
	}

	for _, item := range list {
		if rec, ok := item.(map[string]any); ok {
			run.Articles = append(run.Articles, models.RawRecord(rec))
		}
	}

	return run, nil
}

// Articles concatenates the articles of every run in order, without dedupe.
func Articles(runs []models.Run) []models.RawRecord {
	total := 0
	for _, r := range runs {
		total += len(r.Articles)
	}

	out := make([]models.RawRecord, 0, total)
	for _, r := range runs {
		out = append(out, r.Articles...)
	}

	return out
}

// Summaries builds the runs manifest lines.
func Summaries(runs []models.Run) []models.RunSummary {
	out := make([]models.RunSummary, 0, len(runs))
	for _, r := range runs {
		out = append(out, models.RunSummary{File: r.File, Timestamp: r.Timestamp, Count: len(r.Articles)})
	}

	return out
}
