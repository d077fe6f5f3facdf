package models

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
)

// FeedVersion is the schema version stamped on every materialized document.
const FeedVersion = "v1.0"

// Feed is a materialized, capped article list.
type Feed struct {
	Version  string    `json:"version"`
	Articles []Article `json:"articles"`
}

// NewFeed wraps articles in a feed document. Articles always encode as a list.
func NewFeed(version string, articles []Article) Feed {
	if articles == nil {
		articles = []Article{}
	}

	return Feed{Version: version, Articles: articles}
}

// Status is the freshness record derived on every invocation.
type Status struct {
	Version        string  `json:"version"`
	GeneratedAt    string  `json:"generated_at"`
	LastRunISO     *string `json:"last_run_iso"`
	LastFeedUpdate *string `json:"last_feed_update"`
	FeedCount      int     `json:"feed_count"`
	OK             bool    `json:"ok"`
}

// Catalog lists the day partitions present under the entries directory.
type Catalog struct {
	Version     string   `json:"version"`
	GeneratedAt string   `json:"generated_at"`
	Days        []string `json:"days"`
}

// DailyIndex summarizes one day partition of entries.
type DailyIndex struct {
	Date        string     `json:"date"`
	Count       int        `json:"count"`
	Topics      CountIndex `json:"topics"`
	Countries   CountIndex `json:"countries"`
	GeneratedAt string     `json:"generated_at"`
}

// Count is one bucket of a CountIndex.
type Count struct {
	Name  string
	Count int
}

// CountIndex is an ordered name -> count map. It encodes as a JSON object whose
// keys follow descending count, then ascending name.
type CountIndex []Count

// Tally counts occurrences of each non-empty name.
func Tally(names []string) CountIndex {
	counts := make(map[string]int)

	var order []string

	for _, name := range names {
		if name == "" {
			continue
		}

		if _, seen := counts[name]; !seen {
			order = append(order, name)
		}

		counts[name]++
	}

	idx := make(CountIndex, 0, len(order))
	for _, name := range order {
		idx = append(idx, Count{Name: name, Count: counts[name]})
	}

	sort.SliceStable(idx, func(i, j int) bool {
		if idx[i].Count != idx[j].Count {
			return idx[i].Count > idx[j].Count
		}

		return idx[i].Name < idx[j].Name
	})

	return idx
}

// MarshalJSON writes the index as an object, preserving bucket order.
func (c CountIndex) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, bucket := range c {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := marshalString(bucket.Name)
		if err != nil {
			return nil, err
		}

		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(bucket.Count))
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// Get returns the count for name, or 0.
func (c CountIndex) Get(name string) int {
	for _, bucket := range c {
		if bucket.Name == name {
			return bucket.Count
		}
	}

	return 0
}

// CountsIndex is a by-country/by-topic/by-source document.
type CountsIndex struct {
	Version     string
	GeneratedAt string
	Key         string
	Counts      CountIndex
}

// MarshalJSON writes {"version", "generated_at", <Key>: {...}}.
func (ci CountsIndex) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	fields := []struct {
		name  string
		value func() ([]byte, error)
	}{
		{"version", func() ([]byte, error) { return marshalString(ci.Version) }},
		{"generated_at", func() ([]byte, error) { return marshalString(ci.GeneratedAt) }},
		{ci.Key, ci.Counts.MarshalJSON},
	}

	buf.WriteByte('{')

	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := marshalString(f.name)
		if err != nil {
			return nil, err
		}

		value, err := f.value()
		if err != nil {
			return nil, err
		}

		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

func marshalString(s string) ([]byte, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(s); err != nil {
		return nil, err
	}

	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
