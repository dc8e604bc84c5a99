package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/doccpub/internal/builder"
	"git.home.luguber.info/inful/doccpub/internal/catalog"
	"git.home.luguber.info/inful/doccpub/internal/config"
	"git.home.luguber.info/inful/doccpub/internal/gitsource"
	"git.home.luguber.info/inful/doccpub/internal/logfields"
	"git.home.luguber.info/inful/doccpub/internal/metrics"
	"git.home.luguber.info/inful/doccpub/internal/project"
	"git.home.luguber.info/inful/doccpub/internal/publish"
	"git.home.luguber.info/inful/doccpub/internal/runner"
	"git.home.luguber.info/inful/doccpub/internal/site"
	"git.home.luguber.info/inful/doccpub/internal/toolchain"
	"git.home.luguber.info/inful/doccpub/internal/workspace"
)

// State names the pipeline's position in its linear run.
type State string

const (
	StateStart      State = "start"
	StateDetecting  State = "detecting"
	StateBuilding   State = "building"
	StatePackaging  State = "packaging"
	StatePublishing State = "publishing"
	StateDone       State = "done"
	StateFailed     State = "failed"
)

// Stage names for events and metrics.
const (
	StageDetect  = "detect"
	StageBuild   = "build"
	StagePackage = "package"
	StagePublish = "publish"
)

// Report summarizes a finished run.
type Report struct {
	RunID    string
	State    State
	Outcome  string // success | failed | canceled
	Scheme   string
	SiteDir  string
	Duration time.Duration
	Err      error
}

// Option configures pipeline behavior.
type Option func(*Pipeline)

// WithRunner substitutes the external command runner (tests use a stub).
func WithRunner(r runner.Runner) Option {
	return func(p *Pipeline) { p.run = r }
}

// WithToolLookup substitutes toolchain resolution.
func WithToolLookup(l toolchain.LookupFunc) Option {
	return func(p *Pipeline) { p.lookup = l }
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(p *Pipeline) { p.recorder = r }
}

// WithBus attaches an event bus (shared with the daemon).
func WithBus(b *Bus) Option {
	return func(p *Pipeline) { p.bus = b }
}

// WithWorkspace substitutes the workspace manager (daemon mode uses a
// persistent one).
func WithWorkspace(ws *workspace.Manager) Option {
	return func(p *Pipeline) { p.ws = ws }
}

// WithPublisher substitutes the publisher backend.
func WithPublisher(pub publish.Publisher) Option {
	return func(p *Pipeline) { p.pub = pub }
}

// Pipeline executes the detect → build → package → publish sequence.
type Pipeline struct {
	cfg      *config.Config
	run      runner.Runner
	lookup   toolchain.LookupFunc
	recorder metrics.Recorder
	bus      *Bus
	ws       *workspace.Manager
	pub      publish.Publisher
}

// New creates a Pipeline for the given configuration.
func New(cfg *config.Config, options ...Option) *Pipeline {
	p := &Pipeline{
		cfg:      cfg,
		run:      runner.NewExecRunner(),
		recorder: metrics.NoopRecorder{},
		bus:      NewBus(),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// Run executes one full publish. The trigger string is recorded for history
// and metrics ("manual", "webhook", "schedule").
func (p *Pipeline) Run(ctx context.Context, trigger string) (*Report, error) {
	runID := uuid.NewString()
	start := time.Now()
	report := &Report{RunID: runID, State: StateStart}

	slog.Info("Run started", logfields.RunID(runID), logfields.Trigger(trigger))
	_ = p.bus.Publish(RunStarted{RunID: runID, Trigger: trigger})

	err := p.execute(ctx, runID, report)
	report.Duration = time.Since(start)

	outcome := "success"
	switch {
	case err == nil:
		report.State = StateDone
	case errors.Is(ctx.Err(), context.Canceled):
		report.State = StateFailed
		outcome = "canceled"
	default:
		report.State = StateFailed
		outcome = "failed"
	}
	report.Outcome = outcome
	report.Err = err

	p.recorder.ObserveRunDuration(report.Duration)
	p.recorder.IncRunOutcome(outcome)
	_ = p.bus.Publish(RunFinished{
		RunID:    runID,
		Outcome:  outcome,
		Scheme:   report.Scheme,
		Duration: report.Duration,
	})

	if err != nil {
		slog.Error("Run finished", logfields.RunID(runID), slog.String("outcome", outcome), logfields.Error(err))
		return report, err
	}
	slog.Info("Run finished",
		logfields.RunID(runID),
		slog.String("outcome", outcome),
		logfields.DurationMS(float64(report.Duration.Milliseconds())))
	return report, nil
}

// execute walks the stages in order, stopping at the first error.
func (p *Pipeline) execute(ctx context.Context, runID string, report *Report) error {
	ws := p.ws
	if ws == nil {
		ws = workspace.NewManager("")
	}
	if err := ws.Create(); err != nil {
		return err
	}
	// Workspace cleanup happens only after every stage, publish included, so
	// the uploaded tree never loses assets it still references.
	defer func() {
		if err := ws.Cleanup(); err != nil {
			slog.Warn("Failed to cleanup workspace", logfields.Error(err))
		}
	}()

	root, err := p.projectRoot(ctx, ws)
	if err != nil {
		return err
	}

	// Detecting
	report.State = StateDetecting
	var desc *project.Descriptor
	if err := p.stage(ctx, runID, StageDetect, func() error {
		var derr error
		desc, derr = project.Detect(root)
		return derr
	}); err != nil {
		return err
	}

	tc, err := toolchain.Locate(desc.Kind, p.cfg.Build.DeveloperDir, p.lookup)
	if err != nil {
		// Toolchain resolution is part of the detect/precondition phase:
		// fail before any build tool runs.
		p.recorder.IncStageResult(StageBuild, metrics.ResultFatal)
		_ = p.bus.Publish(StageFailed{RunID: runID, Stage: StageBuild, Error: err.Error()})
		return err
	}

	// Catalog inventory is advisory: broken article links are surfaced before
	// the compiler runs, but never fail the run.
	if inv, cerr := catalog.Scan(root); cerr != nil {
		slog.Warn("Catalog scan failed", logfields.Error(cerr))
	} else if len(inv.Catalogs) > 0 {
		slog.Info("Documentation catalogs found",
			slog.Int("catalogs", len(inv.Catalogs)),
			slog.Int("articles", len(inv.Articles)))
		for _, problem := range catalog.Lint(inv) {
			slog.Warn("Catalog problem",
				logfields.Path(problem.Article),
				slog.String("detail", problem.Detail))
		}
	}

	// The output tree is fully derived; stale files from a previous publish,
	// the pages backend's artifact repository included, must not leak into
	// this run.
	siteDir := p.siteDir(root, ws)
	if err := os.RemoveAll(siteDir); err != nil {
		return fmt.Errorf("failed to clear output directory: %w", err)
	}
	if err := os.MkdirAll(siteDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	// Building
	report.State = StateBuilding
	var archive *builder.Archive
	if err := p.stage(ctx, runID, StageBuild, func() error {
		b := builder.New(p.run, tc, p.cfg.Build)
		var berr error
		archive, berr = b.Build(ctx, desc, siteDir, ws.DerivedDataPath())
		return berr
	}); err != nil {
		return err
	}
	report.Scheme = archive.Scheme

	// Packaging
	report.State = StatePackaging
	if err := p.stage(ctx, runID, StagePackage, func() error {
		packager := site.NewPackager(p.run, tc, p.cfg.Site)
		return packager.Package(ctx, archive, root, siteDir)
	}); err != nil {
		return err
	}
	report.SiteDir = siteDir

	// Publishing
	report.State = StatePublishing
	if err := p.stage(ctx, runID, StagePublish, func() error {
		pub := p.pub
		if pub == nil {
			var perr error
			pub, perr = publish.New(p.cfg.Publish, root)
			if perr != nil {
				return perr
			}
		}
		slog.Info("Publishing site", logfields.Target(pub.Describe()))
		if uerr := pub.Upload(ctx, siteDir); uerr != nil {
			return fmt.Errorf("upload failed: %w", uerr)
		}
		if derr := pub.Deploy(ctx); derr != nil {
			// No rollback: the uploaded artifact stays staged.
			return fmt.Errorf("deploy failed after successful upload: %w", derr)
		}
		return nil
	}); err != nil {
		return err
	}

	return nil
}

// stage runs fn with timing, metrics and event reporting.
func (p *Pipeline) stage(ctx context.Context, runID, name string, fn func() error) error {
	start := time.Now()
	err := fn()
	duration := time.Since(start)
	p.recorder.ObserveStageDuration(name, duration)

	if err != nil {
		result := metrics.ResultFatal
		if errors.Is(ctx.Err(), context.Canceled) {
			result = metrics.ResultCanceled
		}
		p.recorder.IncStageResult(name, result)
		_ = p.bus.Publish(StageFailed{RunID: runID, Stage: name, Error: err.Error()})
		return err
	}

	p.recorder.IncStageResult(name, metrics.ResultSuccess)
	_ = p.bus.Publish(StageCompleted{RunID: runID, Stage: name, Duration: duration})
	slog.Debug("Stage completed",
		logfields.RunID(runID),
		logfields.Stage(name),
		logfields.DurationMS(float64(duration.Milliseconds())))
	return nil
}

// projectRoot resolves the local checkout, cloning remote projects first.
func (p *Pipeline) projectRoot(ctx context.Context, ws *workspace.Manager) (string, error) {
	if p.cfg.Project.Path != "" {
		return p.cfg.Project.Path, nil
	}
	client := gitsource.NewClient(ws.Path(), p.cfg.Build.ShallowDepth)
	return client.Fetch(ctx, p.cfg.Project)
}

// siteDir is the publishable tree. Local checkouts get it under the
// repository root; remote checkouts stage it in the workspace so the clone
// stays pristine for the next update.
func (p *Pipeline) siteDir(root string, ws *workspace.Manager) string {
	out := p.cfg.Site.OutputDir
	if filepath.IsAbs(out) {
		return out
	}
	if p.cfg.Project.Path == "" {
		return ws.StagingPath()
	}
	return filepath.Join(root, out)
}
