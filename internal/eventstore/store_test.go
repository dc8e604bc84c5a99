package eventstore

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func TestAppendAndEventsByRunID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "run-1", EventRunStarted, mustJSON(t, map[string]string{"trigger": "manual"})))
	require.NoError(t, store.Append(ctx, "run-1", EventStageCompleted, mustJSON(t, map[string]string{"stage": "detect"})))
	require.NoError(t, store.Append(ctx, "run-2", EventRunStarted, nil))

	events, err := store.EventsByRunID(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, EventRunStarted, events[0].Type)
	assert.Equal(t, EventStageCompleted, events[1].Type)
}

func TestRecentRunsProjection(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "run-1", EventRunStarted, mustJSON(t, map[string]string{"trigger": "manual"})))
	require.NoError(t, store.Append(ctx, "run-1", EventRunFinished, mustJSON(t, map[string]string{"outcome": "success", "scheme": "MyKit"})))
	require.NoError(t, store.Append(ctx, "run-2", EventRunStarted, mustJSON(t, map[string]string{"trigger": "webhook"})))
	require.NoError(t, store.Append(ctx, "run-2", EventRunFinished, mustJSON(t, map[string]string{"outcome": "failed", "scheme": "MyKit"})))
	require.NoError(t, store.Append(ctx, "run-3", EventRunStarted, mustJSON(t, map[string]string{"trigger": "webhook"})))

	runs, err := store.RecentRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 3)

	// Newest first.
	assert.Equal(t, "run-3", runs[0].RunID)
	assert.Equal(t, "running", runs[0].Outcome)
	assert.Equal(t, "run-2", runs[1].RunID)
	assert.Equal(t, "failed", runs[1].Outcome)
	assert.Equal(t, "run-1", runs[2].RunID)
	assert.Equal(t, "success", runs[2].Outcome)
	assert.Equal(t, "manual", runs[2].Trigger)
	assert.Equal(t, "MyKit", runs[2].Scheme)
	assert.False(t, runs[2].Duration < 0)
}

func TestRecentRunsLimit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.Append(ctx, id, EventRunStarted, nil))
	}

	runs, err := store.RecentRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "c", runs[0].RunID)
	assert.Equal(t, "b", runs[1].RunID)
}
