// Package status derives the pipeline freshness record from the runs directory
// and the latest feed. It only reads those inputs and never fails: anything
// missing or malformed degrades to null, zero or not ok.
package status

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"newsdesk/internal/feed"
	"newsdesk/internal/models"
	"newsdesk/internal/runs"
	"newsdesk/pkg/utils"
)

// DefaultMaxAge is how old the newest run may be for the pipeline to count as fresh.
const DefaultMaxAge = 12 * time.Hour

// Monitor computes freshness records.
type Monitor struct {
	maxAge  time.Duration
	version string
}

// NewMonitor creates a monitor with the given freshness threshold.
func NewMonitor(maxAge time.Duration, version string) *Monitor {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}

	if version == "" {
		version = models.FeedVersion
	}

	return &Monitor{maxAge: maxAge, version: version}
}

// Compute builds the status record at instant now.
func (m *Monitor) Compute(runsDir, feedFile string, now time.Time) models.Status {
	st := models.Status{
		Version:        m.version,
		GeneratedAt:    utils.FormatInstant(now),
		LastRunISO:     LastRunTimestamp(runsDir),
		LastFeedUpdate: FeedModTime(feedFile),
		FeedCount:      FeedCount(feedFile),
	}

	if st.LastRunISO != nil {
		if last, ok := utils.ParseInstant(*st.LastRunISO); ok {
			st.OK = now.Sub(last) <= m.maxAge
		}
	}

	return st
}

// Compute builds a status record with the default threshold.
func Compute(runsDir, feedFile string, now time.Time) models.Status {
	return NewMonitor(DefaultMaxAge, models.FeedVersion).Compute(runsDir, feedFile, now)
}

// Write atomically replaces path with st.
func Write(path string, st models.Status) error {
	return feed.WriteJSON(path, st)
}

// LastRunTimestamp returns the timestamp declared inside the run file with the
// newest modification time, or nil. Equal modification times are broken by
// the larger file name.
func LastRunTimestamp(runsDir string) *string {
	names, err := runs.ListFiles(runsDir)
	if err != nil || len(names) == 0 {
		return nil
	}

	var (
		newest    string
		newestMod time.Time
	)

	for _, name := range names {
		info, err := os.Stat(filepath.Join(runsDir, name))
		if err != nil {
			continue
		}

		mod := info.ModTime()
		if newest == "" || mod.After(newestMod) || (mod.Equal(newestMod) && name > newest) {
			newest, newestMod = name, mod
		}
	}

	if newest == "" {
		return nil
	}

	data, err := os.ReadFile(filepath.Join(runsDir, newest))
	if err != nil {
		return nil
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil
	}

	ts, ok := doc["timestamp"].(string)
	if !ok {
		return nil
	}

	return &ts
}

// FeedModTime returns the feed file modification time as a UTC instant, or nil
// when the file does not exist.
func FeedModTime(feedFile string) *string {
	info, err := os.Stat(feedFile)
	if err != nil {
		return nil
	}

	ts := utils.FormatInstant(info.ModTime())

	return &ts
}

// FeedCount returns the length of the feed's articles list, or 0 when the file
// is absent, unreadable or has no articles list.
func FeedCount(feedFile string) int {
	data, err := os.ReadFile(feedFile)
	if err != nil {
		return 0
	}

	var doc struct {
		Articles json.RawMessage `json:"articles"`
	}

	if err := json.Unmarshal(data, &doc); err != nil {
		return 0
	}

	var list []json.RawMessage
	if err := json.Unmarshal(doc.Articles, &list); err != nil {
		return 0
	}

	return len(list)
}
