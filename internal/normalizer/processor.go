// Package normalizer maps heterogeneous raw article records onto the canonical article schema.
package normalizer

import (
	"time"

	"newsdesk/internal/models"
)

// Stats describes one batch of normalized records.
type Stats struct {
	Records          int
	MissingURL       int
	DefaultTimestamp int
}

// Processor normalizes batches of raw records.
type Processor struct {
	transformer *Transformer
}

// NewProcessor creates a new processor instance.
func NewProcessor(defaults Defaults) *Processor {
	return &Processor{
		transformer: NewTransformer(defaults),
	}
}

// Process normalizes every record, preserving input order.
func (p *Processor) Process(raws []models.RawRecord, now time.Time) ([]models.Article, Stats) {
	articles := make([]models.Article, 0, len(raws))
	stats := Stats{Records: len(raws)}

	for _, raw := range raws {
		if _, ok := p.transformer.str(raw, FieldPublishedAt); !ok {
			stats.DefaultTimestamp++
		}

		article := p.transformer.Transform(raw, now)
		if article.URL == "" {
			stats.MissingURL++
		}

		articles = append(articles, article)
	}

	return articles, stats
}
