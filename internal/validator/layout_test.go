package validator

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsdesk/internal/config"
	"newsdesk/internal/feed"
	"newsdesk/internal/formatter"
	"newsdesk/internal/models"
)

var now = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// buildLayout writes a small, well-formed data directory.
func buildLayout(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.Paths.DataDir = t.TempDir()

	articles := []models.Article{
		{Title: "Paro agrario", URL: "https://a.example/1", Country: "Perú", Topics: []string{"agro"}, Language: "es", PublishedAt: "2024-05-10T09:00:00Z"},
		{Title: "Elecciones", URL: "https://a.example/2", Country: "Chile", Topics: []string{}, Language: "es", PublishedAt: "2024-05-10T08:00:00Z"},
	}

	writeFile(t, filepath.Join(cfg.RunsDir(), "2024-05-10T06-00-00-000Z.json"),
		`{"timestamp":"2024-05-10T06:00:00Z","articles":[{"title":"Paro agrario","url":"https://a.example/1"}]}`)

	require.NoError(t, feed.WriteJSON(cfg.LatestFeedPath(), models.NewFeed("v1.0", articles)))
	require.NoError(t, feed.WriteJSON(cfg.DailyFeedPath("2024-05-10"), models.NewFeed("v1.0", articles)))

	_, err := feed.WriteEntries(cfg.EntriesDir(), now, articles, now)
	require.NoError(t, err)

	_, err = feed.WriteCatalog(cfg.IndexDir(), cfg.EntriesDir(), "v1.0", now)
	require.NoError(t, err)

	require.NoError(t, feed.WriteJSON(cfg.StatusPath(), models.Status{Version: "v1.0"}))

	digest := formatter.RenderDigest(formatter.Digest{Version: "v1.0", Articles: articles, Top: 5}, now)
	writeFile(t, filepath.Join(cfg.IndexDir(), formatter.DigestFile), digest)

	return cfg
}

func TestValidate_WellFormedLayout(t *testing.T) {
	cfg := buildLayout(t)

	result := NewLayoutValidator(cfg).Validate()

	assert.True(t, result.IsValid, "errors: %v", result.Errors)
	assert.NoError(t, result.Err())
	assert.Empty(t, result.Warnings)
	assert.Equal(t, ValidationStats{Feeds: 2, Runs: 1, Days: 1, Entries: 2}, result.Stats)
}

func TestValidate_EmptyDataDir(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.DataDir = t.TempDir()

	result := NewLayoutValidator(cfg).Validate()

	assert.True(t, result.IsValid)
	assert.Len(t, result.Warnings, 2)
}

func TestValidate_Problems(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(t *testing.T, cfg *config.Config)
		wantErr error
	}{
		{
			name: "feed is not JSON",
			mutate: func(t *testing.T, cfg *config.Config) {
				writeFile(t, cfg.LatestFeedPath(), "{oops")
			},
			wantErr: ErrInvalidJSON,
		},
		{
			name: "feed root is a list",
			mutate: func(t *testing.T, cfg *config.Config) {
				writeFile(t, cfg.LatestFeedPath(), "[]")
			},
			wantErr: ErrRootNotObject,
		},
		{
			name: "feed without articles",
			mutate: func(t *testing.T, cfg *config.Config) {
				writeFile(t, cfg.DailyFeedPath("2024-05-09"), `{"version":"v1.0"}`)
			},
			wantErr: ErrMissingArticles,
		},
		{
			name: "run with a free-form name",
			mutate: func(t *testing.T, cfg *config.Config) {
				writeFile(t, filepath.Join(cfg.RunsDir(), "latest.json"), `{"articles":[]}`)
			},
			wantErr: ErrRunFilename,
		},
		{
			name: "bad day folder",
			mutate: func(t *testing.T, cfg *config.Config) {
				require.NoError(t, os.MkdirAll(filepath.Join(cfg.EntriesDir(), "yesterday"), 0755))
			},
			wantErr: ErrDayFolder,
		},
		{
			name: "day without index",
			mutate: func(t *testing.T, cfg *config.Config) {
				require.NoError(t, os.MkdirAll(filepath.Join(cfg.EntriesDir(), "2024-05-01"), 0755))
			},
			wantErr: ErrMissingDailyIndex,
		},
		{
			name: "index missing a field",
			mutate: func(t *testing.T, cfg *config.Config) {
				writeFile(t, filepath.Join(cfg.EntriesDir(), "2024-05-10", feed.DailyIndexFile), `{"date":"2024-05-10"}`)
			},
			wantErr: ErrMissingIndexField,
		},
		{
			name: "entry with a bad name",
			mutate: func(t *testing.T, cfg *config.Config) {
				writeFile(t, filepath.Join(cfg.EntriesDir(), "2024-05-10", "Entry.json"), `{}`)
			},
			wantErr: ErrEntryFilename,
		},
		{
			name: "entry missing a field",
			mutate: func(t *testing.T, cfg *config.Config) {
				writeFile(t, filepath.Join(cfg.EntriesDir(), "2024-05-10", "extra-0000abcd.json"), `{"title":"x"}`)
			},
			wantErr: ErrMissingEntryField,
		},
		{
			name: "topics as a string",
			mutate: func(t *testing.T, cfg *config.Config) {
				writeFile(t, filepath.Join(cfg.EntriesDir(), "2024-05-10", "extra-0000abcd.json"),
					`{"title":"x","url":"u","country":"c","topics":"agro","language":"es","published_at":"2024-05-10T00:00:00Z"}`)
			},
			wantErr: ErrTopicsNotList,
		},
		{
			name: "hand-edited digest",
			mutate: func(t *testing.T, cfg *config.Config) {
				path := filepath.Join(cfg.IndexDir(), formatter.DigestFile)
				data, err := os.ReadFile(path)
				require.NoError(t, err)
				writeFile(t, path, strings.Replace(string(data), "Paro agrario", "Paro nacional", 1))
			},
			wantErr: ErrDigestSignature,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := buildLayout(t)
			tt.mutate(t, cfg)

			result := NewLayoutValidator(cfg).Validate()

			assert.False(t, result.IsValid)
			assert.ErrorIs(t, result.Err(), tt.wantErr)
		})
	}
}

func TestValidationError_Message(t *testing.T) {
	err := ValidationError{Err: ErrMissingEntryField, Path: "entries/x.json", Message: "url"}

	assert.Equal(t, "entries/x.json: entry is missing a field: url", err.Error())
	assert.ErrorIs(t, err, ErrMissingEntryField)
}
