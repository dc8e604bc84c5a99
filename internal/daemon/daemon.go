// Package daemon runs doccpub as a long-lived service: webhooks, scheduled
// rebuilds and config reloads all funnel into the same publish pipeline,
// with at most one publish in flight at a time.
package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"git.home.luguber.info/inful/doccpub/internal/config"
	"git.home.luguber.info/inful/doccpub/internal/eventstore"
	"git.home.luguber.info/inful/doccpub/internal/logfields"
	"git.home.luguber.info/inful/doccpub/internal/metrics"
	"git.home.luguber.info/inful/doccpub/internal/pipeline"
	"git.home.luguber.info/inful/doccpub/internal/workspace"
)

// Status represents the current state of the daemon.
type Status string

const (
	StatusStopped  Status = "stopped"
	StatusStarting Status = "starting"
	StatusRunning  Status = "running"
	StatusStopping Status = "stopping"
)

// Daemon wires the publish pipeline to its long-running triggers.
type Daemon struct {
	mu         sync.RWMutex
	cfg        *config.Config
	configPath string
	status     atomic.Value // Status
	startTime  time.Time

	workers *WorkerGroup
	coord   *Coordinator

	httpServer *HTTPServer
	scheduler  *Scheduler
	watcher    *ConfigWatcher
	nats       *NATSPublisher

	store     eventstore.Store
	bus       *pipeline.Bus
	recorder  metrics.Recorder
	registry  *prom.Registry
	workspace *workspace.Manager

	baseCtx    context.Context
	baseCancel context.CancelFunc
}

// New creates a daemon instance. configPath enables config file watching
// when non-empty.
func New(cfg *config.Config, configPath string) (*Daemon, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}

	d := &Daemon{
		cfg:        cfg,
		configPath: configPath,
		workers:    &WorkerGroup{},
		recorder:   metrics.NoopRecorder{},
		// A persistent workspace keeps the project clone between runs so
		// repeated publishes update instead of recloning.
		workspace: workspace.NewPersistentManager("", "doccpub-daemon"),
	}
	d.status.Store(StatusStopped)

	if cfg.Daemon.Metrics {
		d.registry = prom.NewRegistry()
		d.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		d.recorder = metrics.NewPrometheusRecorder(d.registry)
	}

	if cfg.History.Path != "" {
		store, err := eventstore.NewSQLiteStore(cfg.History.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open run history store: %w", err)
		}
		d.store = store
		d.bus = pipeline.NewBusWithStore(store)
	} else {
		d.bus = pipeline.NewBus()
	}

	if cfg.Daemon.NATS != nil && cfg.Daemon.NATS.Enabled {
		mirror, err := NewNATSPublisher(cfg.Daemon.NATS)
		if err != nil {
			return nil, err
		}
		mirror.Attach(d.bus)
		d.nats = mirror
	}

	d.coord = NewCoordinator(d.workers, d.recorder, d.runOnce)
	d.httpServer = NewHTTPServer(cfg.Daemon, d, d.registry, d.store)

	return d, nil
}

// Start brings up all daemon components. It does not block; use Stop for
// shutdown.
func (d *Daemon) Start(ctx context.Context) error {
	d.status.Store(StatusStarting)
	d.startTime = time.Now()
	d.baseCtx, d.baseCancel = context.WithCancel(context.WithoutCancel(ctx))

	if err := d.httpServer.Start(ctx); err != nil {
		d.baseCancel()
		d.status.Store(StatusStopped)
		return err
	}

	// Components already running must come down again when a later one
	// fails; a half-started daemon may not keep serving.
	fail := func(err error) error {
		if d.scheduler != nil {
			if serr := d.scheduler.Stop(ctx); serr != nil {
				slog.Warn("Scheduler shutdown failed", logfields.Error(serr))
			}
			d.scheduler = nil
		}
		if serr := d.httpServer.Stop(ctx); serr != nil {
			slog.Warn("HTTP server shutdown failed", logfields.Error(serr))
		}
		d.baseCancel()
		d.status.Store(StatusStopped)
		return err
	}

	if schedule := d.config().Daemon.Schedule; schedule != "" {
		interval, err := time.ParseDuration(schedule)
		if err != nil {
			return fail(fmt.Errorf("invalid daemon schedule %q: %w", schedule, err))
		}
		scheduler, err := NewScheduler(func(trigger string) { d.TriggerPublish(trigger) })
		if err != nil {
			return fail(err)
		}
		if _, err := scheduler.SchedulePeriodicPublish(interval); err != nil {
			return fail(err)
		}
		scheduler.Start(ctx)
		d.scheduler = scheduler
	}

	if d.configPath != "" {
		watcher, err := NewConfigWatcher(d.configPath, d.Reload)
		if err != nil {
			return fail(err)
		}
		if err := watcher.Start(d.baseCtx); err != nil {
			_ = watcher.Stop(ctx)
			return fail(err)
		}
		d.watcher = watcher
	}

	d.status.Store(StatusRunning)
	slog.Info("Daemon started", slog.String("listen", d.config().Daemon.Listen))
	return nil
}

// Stop shuts the daemon down: no new runs start, the active run is canceled,
// and components stop in reverse start order.
func (d *Daemon) Stop(ctx context.Context) error {
	d.status.Store(StatusStopping)

	if d.watcher != nil {
		_ = d.watcher.Stop(ctx)
	}
	if d.scheduler != nil {
		if err := d.scheduler.Stop(ctx); err != nil {
			slog.Warn("Scheduler shutdown failed", logfields.Error(err))
		}
	}
	if err := d.httpServer.Stop(ctx); err != nil {
		slog.Warn("HTTP server shutdown failed", logfields.Error(err))
	}

	d.coord.CancelActive()
	if d.baseCancel != nil {
		d.baseCancel()
	}
	if err := d.workers.StopAndWait(ctx); err != nil {
		return fmt.Errorf("workers did not stop in time: %w", err)
	}

	if d.nats != nil {
		d.nats.Close()
	}
	if d.store != nil {
		if err := d.store.Close(); err != nil {
			slog.Warn("Failed to close run history store", logfields.Error(err))
		}
	}

	d.status.Store(StatusStopped)
	slog.Info("Daemon stopped")
	return nil
}

// TriggerPublish requests a publish run. A run already in flight is
// preempted: only the newest revision matters.
func (d *Daemon) TriggerPublish(trigger string) {
	d.recorder.IncTriggerReceived(trigger)
	if !d.coord.Trigger(d.baseCtx, trigger) {
		slog.Warn("Publish trigger dropped: daemon is stopping", logfields.Trigger(trigger))
	}
}

// runOnce executes one pipeline run with the daemon's shared bus and
// recorder.
func (d *Daemon) runOnce(ctx context.Context, trigger string) {
	p := pipeline.New(d.config(),
		pipeline.WithBus(d.bus),
		pipeline.WithRecorder(d.recorder),
		pipeline.WithWorkspace(d.workspace),
	)
	if _, err := p.Run(ctx, trigger); err != nil {
		// Already logged by the pipeline; the daemon keeps serving.
		return
	}
}

// Reload re-reads the configuration file and swaps it in for subsequent
// runs. The listen address and schedule require a restart to change.
func (d *Daemon) Reload() error {
	cfg, err := config.Load(d.configPath)
	if err != nil {
		return err
	}

	d.mu.Lock()
	old := d.cfg
	d.cfg = cfg
	d.mu.Unlock()

	if old.Daemon.Listen != cfg.Daemon.Listen {
		slog.Warn("daemon.listen changed; restart required for it to take effect")
	}
	if old.Daemon.Schedule != cfg.Daemon.Schedule {
		slog.Warn("daemon.schedule changed; restart required for it to take effect")
	}
	slog.Info("Configuration reloaded")
	return nil
}

func (d *Daemon) config() *config.Config {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.cfg
}

// Status returns the daemon lifecycle state.
func (d *Daemon) Status() Status {
	return d.status.Load().(Status)
}

// StartTime returns when Start was called.
func (d *Daemon) StartTime() time.Time {
	return d.startTime
}

// ActiveRun reports whether a publish is in flight.
func (d *Daemon) ActiveRun() bool {
	return d.coord.Active()
}
