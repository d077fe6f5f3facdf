// Package reconcile turns the cross-run article set into a bounded, ranked feed.
//
// The order is part of the published contract: newest first, then most
// relevant first, with undated articles at the bottom. Given the same input
// sequence the output is always identical.
package reconcile

import (
	"sort"
	"time"

	"newsdesk/internal/models"
	"newsdesk/pkg/utils"
)

// Reconcile dedupes articles by url, ranks them and keeps at most limit of them.
// limit <= 0 keeps everything.
func Reconcile(articles []models.Article, limit int) []models.Article {
	out := Dedupe(articles)
	Sort(out)

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	return out
}

// Dedupe keeps the first occurrence of every non-empty url, in input order.
// Articles without a url are dropped. Later duplicates lose even when they are
// more relevant.
func Dedupe(articles []models.Article) []models.Article {
	seen := make(map[string]struct{}, len(articles))
	out := make([]models.Article, 0, len(articles))

	for _, a := range articles {
		if a.URL == "" {
			continue
		}

		if _, dup := seen[a.URL]; dup {
			continue
		}

		seen[a.URL] = struct{}{}
		out = append(out, a)
	}

	return out
}

// rankKey is the composite sort key of an article.
type rankKey struct {
	at        time.Time
	dated     bool
	relevance float64
}

func keyOf(a models.Article) rankKey {
	at, ok := utils.ParseInstant(a.PublishedAt)

	return rankKey{at: at, dated: ok, relevance: a.Relevance}
}

// before reports whether k ranks ahead of o.
func (k rankKey) before(o rankKey) bool {
	if k.dated != o.dated {
		return k.dated
	}

	if k.dated && !k.at.Equal(o.at) {
		return k.at.After(o.at)
	}

	return k.relevance > o.relevance
}

// Sort orders articles in place by descending (published_at, relevance).
// Unparseable timestamps sink below every dated article. The sort is stable.
func Sort(articles []models.Article) {
	keys := make([]rankKey, len(articles))
	for i, a := range articles {
		keys[i] = keyOf(a)
	}

	sort.Stable(&byRank{articles: articles, keys: keys})
}

type byRank struct {
	articles []models.Article
	keys     []rankKey
}

func (b *byRank) Len() int           { return len(b.articles) }
func (b *byRank) Less(i, j int) bool { return b.keys[i].before(b.keys[j]) }
func (b *byRank) Swap(i, j int) {
	b.articles[i], b.articles[j] = b.articles[j], b.articles[i]
	b.keys[i], b.keys[j] = b.keys[j], b.keys[i]
}

// OnDay keeps the articles whose published_at falls on day's UTC calendar
// date. Articles with unparseable timestamps never match.
func OnDay(articles []models.Article, day time.Time) []models.Article {
	want := utils.DateString(day)
	out := make([]models.Article, 0)

	for _, a := range articles {
		at, ok := utils.ParseInstant(a.PublishedAt)
		if ok && utils.DateString(at) == want {
			out = append(out, a)
		}
	}

	return out
}

// InOrder reports whether articles already satisfy the ranking order.
func InOrder(articles []models.Article) bool {
	for i := 1; i < len(articles); i++ {
		if keyOf(articles[i]).before(keyOf(articles[i-1])) {
			return false
		}
	}

	return true
}
