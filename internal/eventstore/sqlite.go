package eventstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore creates a new SQLite-based event store.
// Use ":memory:" for an in-memory database, or a file path for persistence.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS run_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		event_type TEXT NOT NULL,
		timestamp INTEGER NOT NULL,
		payload BLOB
	);
	CREATE INDEX IF NOT EXISTS idx_run_id ON run_events(run_id);
	CREATE INDEX IF NOT EXISTS idx_timestamp ON run_events(timestamp);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append adds a new event to the store.
func (s *SQLiteStore) Append(ctx context.Context, runID, eventType string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO run_events (run_id, event_type, timestamp, payload) VALUES (?, ?, ?, ?)",
		runID, eventType, time.Now().UnixNano(), payload,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// EventsByRunID retrieves all events for a specific run in append order.
func (s *SQLiteStore) EventsByRunID(ctx context.Context, runID string) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, run_id, event_type, timestamp, payload FROM run_events WHERE run_id = ? ORDER BY id",
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// RecentRuns projects run summaries from the event log, newest first.
func (s *SQLiteStore) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, run_id, event_type, timestamp, payload FROM run_events
		WHERE run_id IN (
			SELECT run_id FROM run_events WHERE event_type = ?
			ORDER BY id DESC LIMIT ?
		)
		ORDER BY id`,
		EventRunStarted, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	events, err := scanEvents(rows)
	if err != nil {
		return nil, err
	}
	return projectRuns(events), nil
}

func scanEvents(rows *sql.Rows) ([]Event, error) {
	var events []Event
	for rows.Next() {
		var e Event
		var ts int64
		if err := rows.Scan(&e.ID, &e.RunID, &e.Type, &ts, &e.Payload); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Timestamp = time.Unix(0, ts)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return events, nil
}

// projectRuns folds an ordered event list into per-run summaries.
func projectRuns(events []Event) []Run {
	byRun := make(map[string]*Run)
	var order []string

	for _, e := range events {
		r, ok := byRun[e.RunID]
		if !ok {
			r = &Run{RunID: e.RunID, Outcome: "running"}
			byRun[e.RunID] = r
			order = append(order, e.RunID)
		}

		switch e.Type {
		case EventRunStarted:
			r.Started = e.Timestamp
			var meta struct {
				Trigger string `json:"trigger"`
			}
			if len(e.Payload) > 0 && json.Unmarshal(e.Payload, &meta) == nil {
				r.Trigger = meta.Trigger
			}
		case EventRunFinished:
			r.Finished = e.Timestamp
			r.Duration = r.Finished.Sub(r.Started)
			var meta struct {
				Outcome string `json:"outcome"`
				Scheme  string `json:"scheme"`
			}
			if len(e.Payload) > 0 && json.Unmarshal(e.Payload, &meta) == nil {
				r.Outcome = meta.Outcome
				r.Scheme = meta.Scheme
			}
		}
	}

	// Newest first.
	runs := make([]Run, 0, len(order))
	for i := len(order) - 1; i >= 0; i-- {
		runs = append(runs, *byRun[order[i]])
	}
	return runs
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
