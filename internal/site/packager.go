package site

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/doccpub/internal/builder"
	"git.home.luguber.info/inful/doccpub/internal/config"
	"git.home.luguber.info/inful/doccpub/internal/logfields"
	"git.home.luguber.info/inful/doccpub/internal/runner"
	"git.home.luguber.info/inful/doccpub/internal/toolchain"
)

// MissingAssetsError indicates the fixed theme assets directory is absent.
// Packaging halts; nothing is uploaded.
type MissingAssetsError struct {
	Path string
}

func (e *MissingAssetsError) Error() string {
	return fmt.Sprintf("theme assets directory not found: %s", e.Path)
}

// Packager assembles the publishable site tree.
type Packager struct {
	run runner.Runner
	tc  *toolchain.Toolchain
	cfg config.SiteConfig
}

// NewPackager creates a Packager.
func NewPackager(run runner.Runner, tc *toolchain.Toolchain, cfg config.SiteConfig) *Packager {
	return &Packager{run: run, tc: tc, cfg: cfg}
}

// Package turns the archive into the final site tree at outputDir.
//
// assetsRoot is the directory containing the theme assets directory
// (cfg.AssetsDir relative to it). The assets check runs before any transform
// so a missing theme fails fast.
func (p *Packager) Package(ctx context.Context, archive *builder.Archive, assetsRoot, outputDir string) error {
	assetsSrc := filepath.Join(assetsRoot, p.cfg.AssetsDir)
	if info, err := os.Stat(assetsSrc); err != nil || !info.IsDir() {
		return &MissingAssetsError{Path: assetsSrc}
	}

	if archive.StaticReady {
		// Package-plugin output is already hosting-ready; move it into place
		// when it was generated elsewhere.
		if archive.Path != outputDir {
			if err := copyTree(archive.Path, outputDir); err != nil {
				return fmt.Errorf("failed to stage site tree: %w", err)
			}
		}
		slog.Debug("Archive is hosting-ready, transform skipped", logfields.Path(archive.Path))
	} else {
		slog.Info("Applying static-hosting transform",
			logfields.Scheme(archive.Scheme),
			logfields.Path(archive.Path))
		if _, err := p.run.Run(ctx, runner.Command{
			Program: p.tc.Docc,
			Args: []string{
				"process-archive",
				"transform-for-static-hosting",
				archive.Path,
				"--hosting-base-path", archive.Scheme,
				"--output-path", outputDir,
			},
			Env: p.tc.Env(),
		}); err != nil {
			return fmt.Errorf("static-hosting transform failed: %w", err)
		}
	}

	verifyHostingBasePath(outputDir, archive.Scheme)

	assetsDst := filepath.Join(outputDir, p.cfg.AssetsDir)
	slog.Info("Copying theme assets", logfields.Path(assetsDst))
	if err := copyTree(assetsSrc, assetsDst); err != nil {
		return fmt.Errorf("failed to copy theme assets: %w", err)
	}

	if err := WriteRedirect(outputDir, archive.Scheme, p.cfg.Title); err != nil {
		return err
	}

	slog.Info("Site packaged", logfields.Path(outputDir), logfields.Scheme(archive.Scheme))
	return nil
}
