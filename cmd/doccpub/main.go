package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/doccpub/internal/config"
	"git.home.luguber.info/inful/doccpub/internal/daemon"
	"git.home.luguber.info/inful/doccpub/internal/eventstore"
	"git.home.luguber.info/inful/doccpub/internal/pipeline"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"doccpub.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Publish struct{} `cmd:"" help:"Detect, build, package and publish the documentation site"`

	Detect struct {
		Path string `arg:"" optional:"" help:"Project directory to inspect (defaults to configured project)"`
	} `cmd:"" help:"Detect the project type and inventory its documentation catalogs"`

	Build struct{} `cmd:"" help:"Build the documentation archive without publishing"`

	Package struct {
		Archive string `arg:"" help:"Path to a .doccarchive to package"`
		Scheme  string `short:"s" help:"Scheme name for the redirect (defaults to the configured scheme)"`
	} `cmd:"" help:"Package an existing archive into a publishable site tree"`

	History struct {
		Limit int `short:"n" help:"Number of runs to show" default:"20"`
	} `cmd:"" help:"Show recent publish runs"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`

	Daemon struct{} `cmd:"" help:"Run continuously, publishing on webhooks and schedule"`
}

func main() {
	ctx := kong.Parse(&CLI)

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	var err error
	switch ctx.Command() {
	case "publish":
		err = runPublish()
	case "detect", "detect <path>":
		err = runDetect(CLI.Detect.Path)
	case "build":
		err = runBuild()
	case "package <archive>":
		err = runPackage(CLI.Package.Archive, CLI.Package.Scheme)
	case "history":
		err = runHistory(CLI.History.Limit)
	case "init":
		err = config.Init(CLI.Config, CLI.Init.Force)
	case "daemon":
		err = runDaemon()
	default:
		err = fmt.Errorf("unknown command: %s", ctx.Command())
	}
	if err != nil {
		slog.Error("Command failed", "command", ctx.Command(), "error", err)
		os.Exit(1)
	}
}

// runPublish executes one full pipeline run, persisting history when a store
// is configured.
func runPublish() error {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return err
	}

	options := []pipeline.Option{}
	if cfg.History.Path != "" {
		store, serr := eventstore.NewSQLiteStore(cfg.History.Path)
		if serr != nil {
			return fmt.Errorf("failed to open run history store: %w", serr)
		}
		defer store.Close()
		options = append(options, pipeline.WithBus(pipeline.NewBusWithStore(store)))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	report, err := pipeline.New(cfg, options...).Run(ctx, "manual")
	if err != nil {
		return err
	}
	fmt.Printf("Published %s to %s (%s)\n", report.Scheme, report.SiteDir, report.Duration.Round(time.Millisecond))
	return nil
}

// runDaemon runs until SIGINT/SIGTERM, then shuts down with a grace period.
func runDaemon() error {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	d, err := daemon.New(cfg, CLI.Config)
	if err != nil {
		return fmt.Errorf("failed to create daemon: %w", err)
	}
	if err := d.Start(ctx); err != nil {
		return fmt.Errorf("failed to start daemon: %w", err)
	}

	<-ctx.Done()
	slog.Info("Shutdown signal received")

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()
	return d.Stop(stopCtx)
}

// runHistory prints the most recent publish runs from the store.
func runHistory(limit int) error {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return err
	}
	if cfg.History.Path == "" {
		return fmt.Errorf("run history is disabled: set history.path in the configuration")
	}

	store, err := eventstore.NewSQLiteStore(cfg.History.Path)
	if err != nil {
		return fmt.Errorf("failed to open run history store: %w", err)
	}
	defer store.Close()

	runs, err := store.RecentRuns(context.Background(), limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}

	fmt.Printf("%-36s  %-20s  %-9s  %-8s  %-12s  %s\n",
		"RUN", "STARTED", "OUTCOME", "TRIGGER", "DURATION", "SCHEME")
	for _, run := range runs {
		fmt.Printf("%-36s  %-20s  %-9s  %-8s  %-12s  %s\n",
			run.RunID,
			run.Started.Format("2006-01-02 15:04:05"),
			run.Outcome,
			run.Trigger,
			run.Duration.Round(time.Millisecond),
			run.Scheme)
	}
	return nil
}
