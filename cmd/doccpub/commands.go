package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"git.home.luguber.info/inful/doccpub/internal/builder"
	"git.home.luguber.info/inful/doccpub/internal/catalog"
	"git.home.luguber.info/inful/doccpub/internal/config"
	"git.home.luguber.info/inful/doccpub/internal/project"
	"git.home.luguber.info/inful/doccpub/internal/runner"
	"git.home.luguber.info/inful/doccpub/internal/site"
	"git.home.luguber.info/inful/doccpub/internal/toolchain"
	"git.home.luguber.info/inful/doccpub/internal/workspace"
)

// runDetect inspects a local checkout without building anything.
func runDetect(path string) error {
	var developerDir string
	if path == "" {
		cfg, err := config.Load(CLI.Config)
		if err != nil {
			return err
		}
		if cfg.Project.Path == "" {
			return fmt.Errorf("detect needs a local checkout: pass a path or set project.path")
		}
		path = cfg.Project.Path
		developerDir = cfg.Build.DeveloperDir
	}

	desc, err := project.Detect(path)
	if err != nil {
		return err
	}
	fmt.Printf("Project:  %s\n", desc.Name)
	fmt.Printf("Kind:     %s\n", desc.Kind)
	fmt.Printf("Manifest: %s\n", desc.ProjectPath)

	// Scheme listing needs xcodebuild; skip quietly on hosts without it.
	if desc.Kind == project.KindXcodeProject {
		if tc, terr := toolchain.Locate(desc.Kind, developerDir, nil); terr == nil {
			b := builder.New(runner.NewExecRunner(), tc, config.BuildConfig{})
			if schemes, serr := b.ListSchemes(context.Background(), desc); serr == nil {
				fmt.Printf("Schemes:  %s (first is built by default)\n", strings.Join(schemes, ", "))
			}
		}
	}

	inv, err := catalog.Scan(path)
	if err != nil {
		return err
	}
	if len(inv.Catalogs) == 0 {
		fmt.Println("No documentation catalogs found.")
		return nil
	}

	fmt.Printf("\nCatalogs (%d):\n", len(inv.Catalogs))
	for _, c := range inv.Catalogs {
		fmt.Printf("  %s\n", c)
	}
	if len(inv.Articles) > 0 {
		fmt.Printf("\nArticles (%d):\n", len(inv.Articles))
		for _, a := range inv.Articles {
			fmt.Printf("  %-40s %s\n", a.Path, a.Title)
		}
	}
	for _, problem := range catalog.Lint(inv) {
		fmt.Printf("warning: %s\n", problem)
	}
	return nil
}

// runBuild builds the documentation archive into the output directory
// without packaging or publishing it.
func runBuild() error {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return err
	}
	if cfg.Project.Path == "" {
		return fmt.Errorf("build needs a local checkout: set project.path (use publish for remote projects)")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	desc, err := project.Detect(cfg.Project.Path)
	if err != nil {
		return err
	}
	tc, err := toolchain.Locate(desc.Kind, cfg.Build.DeveloperDir, nil)
	if err != nil {
		return err
	}

	ws := workspace.NewManager("")
	if err := ws.Create(); err != nil {
		return err
	}
	defer func() {
		if cerr := ws.Cleanup(); cerr != nil {
			slog.Warn("Failed to cleanup workspace", "error", cerr)
		}
	}()

	outDir := cfg.Site.OutputDir
	if !filepath.IsAbs(outDir) {
		outDir = filepath.Join(cfg.Project.Path, outDir)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	archive, err := builder.New(runner.NewExecRunner(), tc, cfg.Build).
		Build(ctx, desc, outDir, ws.DerivedDataPath())
	if err != nil {
		return err
	}
	fmt.Printf("Built %s archive for scheme %s: %s\n", desc.Kind, archive.Scheme, archive.Path)
	return nil
}

// runPackage turns an existing .doccarchive into a publishable site tree.
func runPackage(archivePath, scheme string) error {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return err
	}
	if _, err := os.Stat(archivePath); err != nil {
		return fmt.Errorf("archive not found: %w", err)
	}

	if scheme == "" {
		scheme = cfg.Build.Scheme
	}
	if scheme == "" {
		scheme = strings.TrimSuffix(filepath.Base(archivePath), ".doccarchive")
	}

	tc, err := toolchain.LocateDocc(cfg.Build.DeveloperDir, nil)
	if err != nil {
		return err
	}

	assetsRoot := cfg.Project.Path
	if assetsRoot == "" {
		assetsRoot = "."
	}
	outDir := cfg.Site.OutputDir
	if !filepath.IsAbs(outDir) {
		outDir = filepath.Join(assetsRoot, outDir)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	archive := &builder.Archive{Path: archivePath, Scheme: scheme}
	packager := site.NewPackager(runner.NewExecRunner(), tc, cfg.Site)
	if err := packager.Package(ctx, archive, assetsRoot, outDir); err != nil {
		return err
	}
	fmt.Printf("Packaged site for scheme %s: %s\n", scheme, outDir)
	return nil
}
