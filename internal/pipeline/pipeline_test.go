package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsdesk/internal/config"
	"newsdesk/internal/formatter"
	"newsdesk/internal/logger"
	"newsdesk/internal/models"
	"newsdesk/internal/validator"
	"newsdesk/pkg/metadata"
)

var buildTime = time.Date(2024, 1, 1, 7, 0, 0, 0, time.UTC)

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(t.TempDir(), "data")

	return cfg
}

func writeRun(t *testing.T, cfg *config.Config, name, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(cfg.RunsDir(), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.RunsDir(), name), []byte(content), 0644))
}

func readFeed(t *testing.T, path string) models.Feed {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var f models.Feed
	require.NoError(t, json.Unmarshal(data, &f))

	return f
}

func seedRuns(t *testing.T, cfg *config.Config) {
	t.Helper()

	writeRun(t, cfg, "2024-01-01T00-00-00-000Z.json", `{
  "timestamp": "2024-01-01T00:00:00Z",
  "articles": [
    {"url": "a", "titulo": "Primera", "published_at": "2024-01-01T00:00:00Z", "relevance": 1, "pais": "Perú", "temas": ["agro"]},
    {"link": "b", "title": "Ayer", "fecha": "2023-12-31T22:00:00Z", "relevancia": 4}
  ]
}`)
	writeRun(t, cfg, "2024-01-01T06-00-00-000Z.json", `{
  "timestamp": "2024-01-01T06:00:00Z",
  "articles": [
    {"url": "a", "title": "Repetida", "published_at": "2024-01-01T00:00:00Z", "relevance": 9},
    {"url": "c", "title": "Tarde", "published_at": "2024-01-01T05:00:00Z", "source": "Radio Sur"},
    {"title": "Sin enlace"}
  ]
}`)
}

func TestRun_BuildsEveryOutput(t *testing.T) {
	cfg := testConfig(t)
	seedRuns(t, cfg)

	res, err := New(cfg, logger.Discard()).Run(context.Background(), buildTime)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Runs)
	assert.Equal(t, 5, res.Records)
	assert.Equal(t, 1, res.MissingURL)
	assert.Equal(t, 3, res.LatestCount)
	assert.Equal(t, 2, res.DailyCount)
	assert.Equal(t, []string{"2024-01-01"}, res.Days)

	latest := readFeed(t, cfg.LatestFeedPath())
	require.Len(t, latest.Articles, 3)
	assert.Equal(t, "v1.0", latest.Version)
	assert.Equal(t, []string{"c", "a", "b"}, urls(latest.Articles))

	// First-seen occurrence of "a" wins over the higher relevance one.
	assert.Equal(t, "Primera", latest.Articles[1].Title)
	assert.InDelta(t, 1.0, latest.Articles[1].Relevance, 1e-9)
	assert.Equal(t, "Perú", latest.Articles[1].Country)

	daily := readFeed(t, cfg.DailyFeedPath("2024-01-01"))
	assert.Equal(t, []string{"c", "a"}, urls(daily.Articles))

	assert.True(t, res.Status.OK)
	require.NotNil(t, res.Status.LastRunISO)
	assert.Equal(t, "2024-01-01T06:00:00Z", *res.Status.LastRunISO)
	assert.Equal(t, 3, res.Status.FeedCount)

	for _, name := range []string{"by-country.json", "by-topic.json", "by-source.json", "runs.json", "catalog.json", "status.json"} {
		assert.FileExists(t, filepath.Join(cfg.IndexDir(), name))
	}

	digest, err := os.ReadFile(filepath.Join(cfg.IndexDir(), formatter.DigestFile))
	require.NoError(t, err)

	ok, err := metadata.Verify(string(digest))
	require.NoError(t, err)
	assert.True(t, ok)

	result := validator.NewLayoutValidator(cfg).Validate()
	assert.True(t, result.IsValid, "errors: %v", result.Errors)
	assert.Empty(t, result.Warnings)
}

func TestRun_Idempotent(t *testing.T) {
	cfg := testConfig(t)
	seedRuns(t, cfg)

	p := New(cfg, logger.Discard())

	_, err := p.Run(context.Background(), buildTime)
	require.NoError(t, err)

	first := snapshotFiles(t, cfg)

	_, err = p.Run(context.Background(), buildTime)
	require.NoError(t, err)

	assert.Equal(t, first, snapshotFiles(t, cfg))
}

func TestRun_InvalidRunFileIsSkipped(t *testing.T) {
	cfg := testConfig(t)
	writeRun(t, cfg, "2024-01-01T00-00-00-000Z.json", `{"articles": [`)
	writeRun(t, cfg, "2024-01-01T01-00-00-000Z.json",
		`{"timestamp":"2024-01-01T01:00:00Z","articles":[{"url":"ok","published_at":"2024-01-01T00:30:00Z"}]}`)

	res, err := New(cfg, logger.Discard()).Run(context.Background(), buildTime)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Runs)
	assert.Equal(t, []string{"ok"}, urls(readFeed(t, cfg.LatestFeedPath()).Articles))
}

func TestRun_EmptyStart(t *testing.T) {
	cfg := testConfig(t)

	res, err := New(cfg, logger.Discard()).Run(context.Background(), buildTime)
	require.NoError(t, err)

	assert.Empty(t, readFeed(t, cfg.LatestFeedPath()).Articles)
	assert.Empty(t, readFeed(t, cfg.DailyFeedPath("2024-01-01")).Articles)
	assert.False(t, res.Status.OK)
	assert.Nil(t, res.Status.LastRunISO)
	assert.Equal(t, 0, res.Status.FeedCount)

	data, err := os.ReadFile(cfg.LatestFeedPath())
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"version\": \"v1.0\",\n  \"articles\": []\n}\n", string(data))
}

func TestRun_StaleRuns(t *testing.T) {
	cfg := testConfig(t)
	seedRuns(t, cfg)

	res, err := New(cfg, logger.Discard()).Run(context.Background(), buildTime.Add(12*time.Hour))
	require.NoError(t, err)

	// Newest run is 2024-01-01T06:00:00Z, now is 13h later.
	assert.False(t, res.Status.OK)
}

func TestRun_BoundedSize(t *testing.T) {
	cfg := testConfig(t)
	cfg.Feeds.LatestCap = 10
	cfg.Feeds.DailyCap = 4

	var sb strings.Builder
	sb.WriteString(`{"timestamp":"2024-01-01T06:00:00Z","articles":[`)

	for i := 0; i < 30; i++ {
		if i > 0 {
			sb.WriteString(",")
		}

		fmt.Fprintf(&sb, `{"url":"u%d","published_at":"2024-01-01T%02d:00:00Z"}`, i, i%7)
	}

	sb.WriteString("]}")
	writeRun(t, cfg, "2024-01-01T06-00-00-000Z.json", sb.String())

	res, err := New(cfg, logger.Discard()).Run(context.Background(), buildTime)
	require.NoError(t, err)

	assert.Equal(t, 10, res.LatestCount)
	assert.Equal(t, 4, res.DailyCount)
	assert.Len(t, readFeed(t, cfg.LatestFeedPath()).Articles, 10)
}

func TestRun_OptionalOutputsDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Outputs = config.OutputsConfig{}
	seedRuns(t, cfg)

	_, err := New(cfg, logger.Discard()).Run(context.Background(), buildTime)
	require.NoError(t, err)

	assert.FileExists(t, cfg.StatusPath())
	assert.NoFileExists(t, filepath.Join(cfg.IndexDir(), "catalog.json"))
	assert.NoFileExists(t, filepath.Join(cfg.IndexDir(), formatter.DigestFile))
	assert.NoDirExists(t, cfg.EntriesDir())
}

func TestRun_Cancelled(t *testing.T) {
	cfg := testConfig(t)
	seedRuns(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(cfg, logger.Discard()).Run(ctx, buildTime)
	require.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, cfg.LatestFeedPath())
}

func TestRun_StorageFailure(t *testing.T) {
	cfg := testConfig(t)
	seedRuns(t, cfg)

	// A regular file where the index directory should be.
	require.NoError(t, os.WriteFile(cfg.IndexDir(), []byte("x"), 0644))

	_, err := New(cfg, logger.Discard()).Run(context.Background(), buildTime)
	require.Error(t, err)
}

func urls(articles []models.Article) []string {
	out := make([]string, 0, len(articles))
	for _, a := range articles {
		out = append(out, a.URL)
	}

	return out
}

// snapshotFiles reads the feed files, which carry no build timestamps.
func snapshotFiles(t *testing.T, cfg *config.Config) map[string]string {
	t.Helper()

	out := map[string]string{}

	for _, path := range []string{cfg.LatestFeedPath(), cfg.DailyFeedPath("2024-01-01")} {
		data, err := os.ReadFile(path)
		require.NoError(t, err)

		out[filepath.Base(path)] = string(data)
	}

	return out
}
