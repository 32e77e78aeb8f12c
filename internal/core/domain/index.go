package domain

import "time"

// MetricCosine is the only similarity metric used by collections.
const MetricCosine = "cosine"

// CollectionInfo describes a physical collection in a vector store.
type CollectionInfo struct {
	Name      string `json:"name"`
	Dimension int    `json:"dimension"`
	Metric    string `json:"metric"`
}

// CollectionHandle identifies the physical collection bound to a logical name
// for one embedding dimension.
type CollectionHandle struct {
	// Logical is the configured collection name.
	Logical string

	// Name is the physical collection name.
	Name string

	// Dimension is the vector length the collection accepts.
	Dimension int

	// Created is true if EnsureCollection created the collection.
	Created bool

	// Retired lists stale physical collections deleted after the new one was confirmed.
	Retired []string
}

// IndexStats is a health summary of a collection.
type IndexStats struct {
	Collection string `json:"collection"`
	Count      int    `json:"count"`
	Dimension  int    `json:"dimension"`
}

// ChunkFailure records why one chunk could not be ingested.
type ChunkFailure struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// IngestionReport summarises one ingestion run.
type IngestionReport struct {
	Collection string         `json:"collection"`
	Succeeded  []string       `json:"succeeded"`
	Failed     []ChunkFailure `json:"failed"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
}

// Total returns the number of chunks processed.
func (r *IngestionReport) Total() int {
	return len(r.Succeeded) + len(r.Failed)
}

// OK returns true if every chunk succeeded.
func (r *IngestionReport) OK() bool {
	return len(r.Failed) == 0
}

// IngestionRun is a persisted summary of a finished ingestion run.
type IngestionRun struct {
	ID         int64          `json:"id"`
	Collection string         `json:"collection"`
	Succeeded  int            `json:"succeeded"`
	Failed     int            `json:"failed"`
	Failures   []ChunkFailure `json:"failures"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
}

// RunFromReport summarises a report for storage.
func RunFromReport(r *IngestionReport) IngestionRun {
	failures := make([]ChunkFailure, len(r.Failed))
	copy(failures, r.Failed)
	return IngestionRun{
		Collection: r.Collection,
		Succeeded:  len(r.Succeeded),
		Failed:     len(r.Failed),
		Failures:   failures,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
	}
}
