// Package validator checks that the published data directory keeps the shape
// downstream readers rely on. It only reads; it never repairs or creates files.
package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"newsdesk/internal/config"
	"newsdesk/internal/feed"
	"newsdesk/internal/formatter"
	"newsdesk/internal/runs"
	"newsdesk/pkg/metadata"
)

// Validation errors.
var (
	ErrInvalidJSON       = errors.New("invalid JSON")
	ErrRootNotObject     = errors.New("root must be an object")
	ErrMissingArticles   = errors.New("missing articles[]")
	ErrRunFilename       = errors.New("run filename must be ISO-like")
	ErrDayFolder         = errors.New("bad day folder name")
	ErrMissingDailyIndex = errors.New("missing daily index")
	ErrMissingIndexField = errors.New("daily index is missing a field")
	ErrEntryFilename     = errors.New("entry filename should be slug-hash.json")
	ErrMissingEntryField = errors.New("entry is missing a field")
	ErrTopicsNotList     = errors.New("topics must be a list")
	ErrDigestSignature   = errors.New("digest signature does not verify")
)

var (
	dailyIndexFields      = []string{"date", "count", "topics", "countries", "generated_at"}
	entryRequiredFields   = []string{"title", "url", "country", "topics", "language", "published_at"}
	recommendedIndexFiles = []string{"catalog.json", "status.json"}
)

// ValidationError is one structural problem found in a file.
type ValidationError struct {
	Err     error
	Path    string
	Message string
}

func (e ValidationError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}

	return fmt.Sprintf("%s: %v: %s", e.Path, e.Err, e.Message)
}

func (e ValidationError) Unwrap() error {
	return e.Err
}

// ValidationResult contains validation results.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []string
	Stats    ValidationStats
	IsValid  bool
}

// ValidationStats counts what was inspected.
type ValidationStats struct {
	Feeds   int
	Runs    int
	Days    int
	Entries int
}

// LayoutValidator validates a data directory.
type LayoutValidator struct {
	cfg *config.Config
}

// NewLayoutValidator creates a new validator.
func NewLayoutValidator(cfg *config.Config) *LayoutValidator {
	return &LayoutValidator{cfg: cfg}
}

// Validate inspects feeds, run snapshots, day partitions and the digest.
func (v *LayoutValidator) Validate() *ValidationResult {
	result := &ValidationResult{
		Errors:   []ValidationError{},
		Warnings: []string{},
	}

	v.validateFeeds(result)
	v.validateRuns(result)
	v.validateEntries(result)
	v.validateIndex(result)

	result.IsValid = len(result.Errors) == 0

	return result
}

func (r *ValidationResult) addError(path string, err error, msg string) {
	r.Errors = append(r.Errors, ValidationError{Err: err, Path: path, Message: msg})
}

// Err joins every validation error, or returns nil.
func (r *ValidationResult) Err() error {
	errs := make([]error, 0, len(r.Errors))
	for _, e := range r.Errors {
		errs = append(errs, e)
	}

	return errors.Join(errs...)
}

func readObject(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}

	obj, ok := doc.(map[string]any)
	if !ok {
		return nil, ErrRootNotObject
	}

	return obj, nil
}

func hasArticlesList(obj map[string]any) bool {
	_, ok := obj["articles"].([]any)
	return ok
}

func (v *LayoutValidator) validateFeeds(result *ValidationResult) {
	matches, err := filepath.Glob(filepath.Join(v.cfg.Paths.DataDir, "feed-*.json"))
	if err != nil {
		result.addError(v.cfg.Paths.DataDir, err, "cannot list feeds")
		return
	}

	sort.Strings(matches)

	for _, path := range matches {
		result.Stats.Feeds++

		obj, err := readObject(path)
		if err != nil {
			result.addError(path, err, "")
			continue
		}

		if !hasArticlesList(obj) {
			result.addError(path, ErrMissingArticles, "")
		}
	}
}

func (v *LayoutValidator) validateRuns(result *ValidationResult) {
	dir := v.cfg.RunsDir()

	names, err := runs.ListFiles(dir)
	if err != nil {
		result.addError(dir, err, "cannot list runs")
		return
	}

	for _, name := range names {
		result.Stats.Runs++
		path := filepath.Join(dir, name)

		if !runs.FilenamePattern.MatchString(name) {
			result.addError(path, ErrRunFilename, name)
		}

		obj, err := readObject(path)
		if err != nil {
			result.addError(path, err, "")
			continue
		}

		if !hasArticlesList(obj) {
			result.addError(path, ErrMissingArticles, "")
		}
	}
}

func (v *LayoutValidator) validateEntries(result *ValidationResult) {
	root := v.cfg.EntriesDir()

	dirs, err := os.ReadDir(root)
	if err != nil {
		if !os.IsNotExist(err) {
			result.addError(root, err, "cannot list entries")
		}

		return
	}

	for _, d := range dirs {
		if !d.IsDir() {
			continue
		}

		result.Stats.Days++
		v.validateDay(result, filepath.Join(root, d.Name()))
	}
}

func (v *LayoutValidator) validateDay(result *ValidationResult, dir string) {
	name := filepath.Base(dir)
	if !feed.DayPattern.MatchString(name) {
		result.addError(dir, ErrDayFolder, "")
		return
	}

	indexPath := filepath.Join(dir, feed.DailyIndexFile)

	index, err := readObject(indexPath)
	switch {
	case os.IsNotExist(err):
		result.addError(indexPath, ErrMissingDailyIndex, "")
		return
	case err != nil:
		result.addError(indexPath, err, "")
		return
	}

	for _, field := range dailyIndexFields {
		if _, ok := index[field]; !ok {
			result.addError(indexPath, ErrMissingIndexField, field)
		}
	}

	files, err := os.ReadDir(dir)
	if err != nil {
		result.addError(dir, err, "cannot list day")
		return
	}

	for _, f := range files {
		if f.IsDir() || f.Name() == feed.DailyIndexFile || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}

		result.Stats.Entries++
		v.validateEntry(result, filepath.Join(dir, f.Name()))
	}
}

func (v *LayoutValidator) validateEntry(result *ValidationResult, path string) {
	if !feed.EntryPattern.MatchString(filepath.Base(path)) {
		result.addError(path, ErrEntryFilename, "")
		return
	}

	entry, err := readObject(path)
	if err != nil {
		result.addError(path, err, "")
		return
	}

	for _, field := range entryRequiredFields {
		if _, ok := entry[field]; !ok {
			result.addError(path, ErrMissingEntryField, field)
		}
	}

	if topics, ok := entry["topics"]; ok {
		if _, isList := topics.([]any); !isList {
			result.addError(path, ErrTopicsNotList, "")
		}
	}
}

func (v *LayoutValidator) validateIndex(result *ValidationResult) {
	dir := v.cfg.IndexDir()

	for _, name := range recommendedIndexFiles {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s not found in %s", name, dir))
		}
	}

	digestPath := filepath.Join(dir, formatter.DigestFile)

	content, err := os.ReadFile(digestPath)
	if err != nil {
		return
	}

	if ok, err := metadata.Verify(string(content)); !ok {
		result.addError(digestPath, ErrDigestSignature, err.Error())
	}
}
