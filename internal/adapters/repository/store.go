// Package repository persists pipeline run summaries.
package repository

import (
	"context"
	"encoding/json"
	"time"
)

const defaultMaxLimit = 100

// Run is one stored pipeline run.
type Run struct {
	ID          string          `json:"id"`
	Source      string          `json:"source"`
	Fingerprint string          `json:"fingerprint"`
	CreatedAt   time.Time       `json:"created_at"`
	Persons     int             `json:"persons"`
	Items       int             `json:"items"`
	Clusters    int             `json:"clusters"`
	Silhouette  *float64        `json:"silhouette,omitempty"`
	Warnings    int             `json:"warnings"`
	DurationMS  int64           `json:"duration_ms"`
	Summary     json.RawMessage `json:"summary,omitempty"`
}

// Store provides read/write access to stored runs.
type Store interface {
	// Save stores a run. Returns ErrDuplicate if the id is taken.
	Save(ctx context.Context, r Run) error

	// Get returns one run. Returns ErrNotFound if the id is unknown.
	Get(ctx context.Context, id string) (Run, error)

	// List returns up to limit runs, newest first. Summary is omitted.
	List(ctx context.Context, limit int) ([]Run, error)

	// Count returns the number of stored runs.
	Count(ctx context.Context) (int, error)

	Close() error
}

func checkLimit(limit, maxLimit int) error {
	if limit < 1 || limit > maxLimit {
		return ErrInvalidLimit
	}
	return nil
}
