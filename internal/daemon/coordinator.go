package daemon

import (
	"context"
	"log/slog"
	"sync"

	"git.home.luguber.info/inful/doccpub/internal/logfields"
	"git.home.luguber.info/inful/doccpub/internal/metrics"
)

// RunFunc executes one publish run.
type RunFunc func(ctx context.Context, trigger string)

// Coordinator enforces the single-active-publish rule. A new trigger cancels
// the run in flight and replaces it; the documentation site only ever wants
// the newest revision, so finishing a stale run is wasted work.
type Coordinator struct {
	mu       sync.Mutex
	cancel   context.CancelFunc
	done     chan struct{}
	recorder metrics.Recorder
	workers  *WorkerGroup
	runFn    RunFunc
}

// NewCoordinator creates a coordinator dispatching runs through the group.
func NewCoordinator(workers *WorkerGroup, recorder metrics.Recorder, runFn RunFunc) *Coordinator {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &Coordinator{
		recorder: recorder,
		workers:  workers,
		runFn:    runFn,
	}
}

// Trigger starts a run for the given trigger source, preempting any run
// currently in flight. It returns false when the daemon is shutting down and
// no run was started.
func (c *Coordinator) Trigger(ctx context.Context, trigger string) bool {
	c.mu.Lock()
	if c.cancel != nil {
		slog.Info("Preempting active run", logfields.Trigger(trigger))
		c.cancel()
		c.recorder.IncRunPreempted()
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	prev := c.done
	c.cancel = cancel
	c.done = done
	c.mu.Unlock()

	started := c.workers.Go(func() {
		defer close(done)
		// The preempted run may still be tearing down its workspace; wait so
		// two publishes never touch the deploy target at once.
		if prev != nil {
			<-prev
		}
		c.runFn(runCtx, trigger)

		c.mu.Lock()
		if c.done == done {
			c.cancel = nil
			c.done = nil
		}
		c.mu.Unlock()
		cancel()
	})
	if !started {
		cancel()
		c.mu.Lock()
		if c.done == done {
			c.cancel = nil
			c.done = nil
		}
		c.mu.Unlock()
		close(done)
	}
	return started
}

// CancelActive cancels the run in flight, if any.
func (c *Coordinator) CancelActive() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
	}
}

// Active reports whether a run is currently in flight.
func (c *Coordinator) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done != nil
}
