package daemon

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/doccpub/internal/metrics"
)

// countingRecorder counts preemptions.
type countingRecorder struct {
	metrics.NoopRecorder
	preempted atomic.Int32
}

func (r *countingRecorder) IncRunPreempted() { r.preempted.Add(1) }

func TestCoordinator_SingleActiveRun(t *testing.T) {
	var (
		mu      sync.Mutex
		active  int
		maxSeen int
	)

	started := make(chan struct{})
	release := make(chan struct{})

	coord := NewCoordinator(&WorkerGroup{}, nil, func(ctx context.Context, trigger string) {
		mu.Lock()
		active++
		if active > maxSeen {
			maxSeen = active
		}
		mu.Unlock()

		started <- struct{}{}
		select {
		case <-release:
		case <-ctx.Done():
		}

		mu.Lock()
		active--
		mu.Unlock()
	})

	require.True(t, coord.Trigger(context.Background(), "manual"))
	<-started
	assert.True(t, coord.Active())

	// Second trigger preempts the first; the new run only starts once the
	// old one has exited.
	require.True(t, coord.Trigger(context.Background(), "webhook"))
	<-started

	close(release)
	require.Eventually(t, func() bool { return !coord.Active() }, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, maxSeen, "two publishes must never overlap")
}

func TestCoordinator_PreemptionCancelsOldRun(t *testing.T) {
	recorder := &countingRecorder{}

	canceled := make(chan struct{})
	started := make(chan struct{})

	coord := NewCoordinator(&WorkerGroup{}, recorder, func(ctx context.Context, trigger string) {
		started <- struct{}{}
		if trigger == "manual" {
			<-ctx.Done()
			close(canceled)
		}
	})

	require.True(t, coord.Trigger(context.Background(), "manual"))
	<-started

	require.True(t, coord.Trigger(context.Background(), "webhook"))

	select {
	case <-canceled:
	case <-time.After(time.Second):
		t.Fatal("older run was not canceled by the newer trigger")
	}
	<-started

	require.Eventually(t, func() bool { return !coord.Active() }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(1), recorder.preempted.Load())
}

func TestCoordinator_RejectsTriggersWhileStopping(t *testing.T) {
	group := &WorkerGroup{}
	require.NoError(t, group.StopAndWait(context.Background()))

	coord := NewCoordinator(group, nil, func(context.Context, string) {
		t.Fatal("run must not start after shutdown")
	})
	assert.False(t, coord.Trigger(context.Background(), "manual"))
	assert.False(t, coord.Active())
}

func TestWorkerGroup_StopAndWaitBounded(t *testing.T) {
	group := &WorkerGroup{}
	block := make(chan struct{})
	require.True(t, group.Go(func() { <-block }))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := group.StopAndWait(ctx)
	require.Error(t, err, "a stuck worker must not hang shutdown forever")

	close(block)
}
