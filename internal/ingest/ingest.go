package ingest

import (
	"time"
)

const (
	StatusRunning   = "RUNNING"
	StatusCompleted = "COMPLETED"
	StatusFailed    = "FAILED"
)

type Run struct {
	ID              string     `json:"id"`
	StartedAt       time.Time  `json:"started_at"`
	FinishedAt      *time.Time `json:"finished_at,omitempty"`
	Status          string     `json:"status"` // RUNNING, COMPLETED, FAILED
	Source          string     `json:"source"`
	EntriesParsed   int        `json:"entries_parsed"`
	EntriesUpserted int        `json:"entries_upserted"`
	Error           string     `json:"error,omitempty"`
}
