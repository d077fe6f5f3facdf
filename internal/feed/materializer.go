package feed

import (
	"fmt"
	"time"

	"newsdesk/internal/config"
	"newsdesk/internal/logger"
	"newsdesk/internal/models"
	"newsdesk/internal/reconcile"
	"newsdesk/pkg/utils"
)

// Materializer writes the latest and daily feeds. Both are recomputed from
// the full article set on every call and never patched in place.
type Materializer struct {
	cfg *config.Config
	log *logger.Logger
}

// NewMaterializer creates a materializer for the layout described by cfg.
func NewMaterializer(cfg *config.Config, log *logger.Logger) *Materializer {
	return &Materializer{cfg: cfg, log: log}
}

// WriteLatest reconciles all articles with the latest cap and replaces the
// latest feed. It returns the articles written.
func (m *Materializer) WriteLatest(all []models.Article) ([]models.Article, error) {
	articles := reconcile.Reconcile(all, m.cfg.Feeds.LatestCap)
	path := m.cfg.LatestFeedPath()

	if err := WriteJSON(path, models.NewFeed(m.cfg.Feeds.Version, articles)); err != nil {
		return nil, fmt.Errorf("failed to write latest feed: %w", err)
	}

	m.log.Info("wrote latest feed", "path", path, "count", len(articles))

	return articles, nil
}

// WriteDaily keeps the articles published on today's UTC date, reconciles them
// with the daily cap and replaces that day's feed. It returns the articles
// written.
func (m *Materializer) WriteDaily(all []models.Article, today time.Time) ([]models.Article, error) {
	articles := reconcile.Reconcile(reconcile.OnDay(all, today), m.cfg.Feeds.DailyCap)
	path := m.cfg.DailyFeedPath(utils.DateString(today))

	if err := WriteJSON(path, models.NewFeed(m.cfg.Feeds.Version, articles)); err != nil {
		return nil, fmt.Errorf("failed to write daily feed: %w", err)
	}

	m.log.Info("wrote daily feed", "path", path, "count", len(articles))

	return articles, nil
}
