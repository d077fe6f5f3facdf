// Package pipeline runs one full build of the data directory: load every run
// snapshot and indie drop, normalize, reconcile, materialize the feeds and
// derived documents, then record freshness.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"newsdesk/internal/config"
	"newsdesk/internal/feed"
	"newsdesk/internal/formatter"
	"newsdesk/internal/logger"
	"newsdesk/internal/models"
	"newsdesk/internal/normalizer"
	"newsdesk/internal/runs"
	"newsdesk/internal/status"
	"newsdesk/pkg/utils"
)

// Result summarizes one build.
type Result struct {
	Runs        int
	Indie       int
	Records     int
	MissingURL  int
	LatestCount int
	DailyCount  int
	LatestPath  string
	DailyPath   string
	EntriesDir  string
	Days        []string
	Status      models.Status
	Duration    time.Duration
}

// Pipeline wires the loaders, normalizer and writers for one data directory.
type Pipeline struct {
	cfg *config.Config
	log *logger.Logger
}

// New creates a pipeline for cfg.
func New(cfg *config.Config, log *logger.Logger) *Pipeline {
	return &Pipeline{cfg: cfg, log: log}
}

// Run performs a full build at instant now. Malformed inputs are skipped or
// defaulted; only storage failures and cancellation are returned.
func (p *Pipeline) Run(ctx context.Context, now time.Time) (*Result, error) {
	start := time.Now()
	now = now.UTC()
	res := &Result{}

	// Phase 1: ingestion
	loader := runs.NewLoader(p.log.With("component", "runs"))

	snapshots := loader.Load(p.cfg.RunsDir())
	raws := runs.Articles(snapshots)
	indie := loader.LoadIndie(p.cfg.IndieDir())
	raws = append(raws, indie...)

	res.Runs = len(snapshots)
	res.Indie = len(indie)

	p.log.Info("loaded inputs", "runs", res.Runs, "indie", res.Indie, "records", len(raws))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Phase 2: normalization
	articles, stats := normalizer.NewProcessor(p.defaults()).Process(raws, now)
	res.Records = stats.Records
	res.MissingURL = stats.MissingURL

	if stats.MissingURL > 0 {
		p.log.Warn("records without url are dropped", "count", stats.MissingURL)
	}

	if stats.DefaultTimestamp > 0 {
		p.log.Debug("records stamped with build time", "count", stats.DefaultTimestamp)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Phase 3: feeds
	if err := os.MkdirAll(p.cfg.Paths.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	m := feed.NewMaterializer(p.cfg, p.log.With("component", "feed"))

	latest, err := m.WriteLatest(articles)
	if err != nil {
		return nil, err
	}

	daily, err := m.WriteDaily(articles, now)
	if err != nil {
		return nil, err
	}

	res.LatestCount = len(latest)
	res.DailyCount = len(daily)
	res.LatestPath = p.cfg.LatestFeedPath()
	res.DailyPath = p.cfg.DailyFeedPath(utils.DateString(now))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Phase 4: derived documents
	if err := p.writeDerived(snapshots, latest, daily, now, res); err != nil {
		return nil, err
	}

	// Phase 5: freshness, always last so it sees the feed just written
	monitor := status.NewMonitor(p.cfg.Freshness.MaxAge, p.cfg.Feeds.Version)
	res.Status = monitor.Compute(p.cfg.RunsDir(), p.cfg.LatestFeedPath(), now)

	if err := status.Write(p.cfg.StatusPath(), res.Status); err != nil {
		return nil, fmt.Errorf("failed to write status: %w", err)
	}

	if !res.Status.OK {
		lastRun := "none"
		if res.Status.LastRunISO != nil {
			lastRun = *res.Status.LastRunISO
		}

		p.log.Warn("pipeline is stale", "last_run", lastRun, "max_age", p.cfg.Freshness.MaxAge)
	}

	if p.cfg.Outputs.Digest {
		if err := p.writeDigest(res.Status, latest, now); err != nil {
			return nil, err
		}
	}

	res.Duration = time.Since(start)

	p.log.Info("build complete",
		"latest", res.LatestCount,
		"daily", res.DailyCount,
		"ok", res.Status.OK,
		"duration", res.Duration,
	)

	return res, nil
}

func (p *Pipeline) defaults() normalizer.Defaults {
	return normalizer.Defaults{
		Country:   p.cfg.Defaults.Country,
		Language:  p.cfg.Defaults.Language,
		Sentiment: p.cfg.Defaults.Sentiment,
		Curator:   p.cfg.Defaults.Curator,
	}
}

func (p *Pipeline) writeDerived(snapshots []models.Run, latest, daily []models.Article, now time.Time, res *Result) error {
	indexDir := p.cfg.IndexDir()
	version := p.cfg.Feeds.Version

	if p.cfg.Outputs.Indices {
		if err := feed.WriteIndices(indexDir, version, latest, now); err != nil {
			return err
		}

		if err := feed.WriteRunsManifest(indexDir, version, runs.Summaries(snapshots), now); err != nil {
			return err
		}
	}

	if p.cfg.Outputs.Entries {
		dir, err := feed.WriteEntries(p.cfg.EntriesDir(), now, daily, now)
		if err != nil {
			return err
		}

		res.EntriesDir = dir
	}

	if p.cfg.Outputs.Catalog {
		catalog, err := feed.WriteCatalog(indexDir, p.cfg.EntriesDir(), version, now)
		if err != nil {
			return err
		}

		res.Days = catalog.Days
	}

	return nil
}

func (p *Pipeline) writeDigest(st models.Status, latest []models.Article, now time.Time) error {
	doc := formatter.RenderDigest(formatter.Digest{
		Version:  p.cfg.Feeds.Version,
		Status:   st,
		Articles: latest,
		Top:      p.cfg.Outputs.DigestTop,
	}, now)

	path := filepath.Join(p.cfg.IndexDir(), formatter.DigestFile)
	if err := feed.WriteFileAtomic(path, []byte(doc)); err != nil {
		return fmt.Errorf("failed to write digest: %w", err)
	}

	return nil
}
