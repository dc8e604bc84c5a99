// Package eventstore persists pipeline run events to SQLite, giving the
// history command and the daemon an append-only record of past publishes.
package eventstore

import (
	"context"
	"time"
)

// Event is one recorded pipeline occurrence.
type Event struct {
	ID        int64
	RunID     string
	Type      string
	Timestamp time.Time
	Payload   []byte
}

// Run is the projection of a run's events into a summary row.
type Run struct {
	RunID    string
	Started  time.Time
	Finished time.Time
	Outcome  string // success | failed | canceled | running
	Trigger  string
	Scheme   string
	Duration time.Duration
}

// Event type names appended by the pipeline.
const (
	EventRunStarted     = "RunStarted"
	EventStageCompleted = "StageCompleted"
	EventStageFailed    = "StageFailed"
	EventRunFinished    = "RunFinished"
)

// Store defines the interface for persisting and retrieving run events.
type Store interface {
	// Append adds a new event to the store.
	Append(ctx context.Context, runID, eventType string, payload []byte) error

	// EventsByRunID retrieves all events for a specific run in append order.
	EventsByRunID(ctx context.Context, runID string) ([]Event, error)

	// RecentRuns projects the most recent runs, newest first.
	RecentRuns(ctx context.Context, limit int) ([]Run, error)

	// Close closes the store and releases resources.
	Close() error
}
