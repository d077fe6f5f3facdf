package models

// Run is one parsed run snapshot.
type Run struct {
	// File is the base name of the snapshot, e.g. 2024-01-01T00-00-00-000Z.json.
	File string
	// Timestamp is the self-declared timestamp field, nil when absent or not a string.
	Timestamp *string
	Articles  []RawRecord
}

// RunSummary is one line of the runs manifest.
type RunSummary struct {
	File      string  `json:"file"`
	Timestamp *string `json:"timestamp"`
	Count     int     `json:"count"`
}

// RunsManifest lists every run snapshot that took part in a build.
type RunsManifest struct {
	Version     string       `json:"version"`
	GeneratedAt string       `json:"generated_at"`
	Runs        []RunSummary `json:"runs"`
}
