package builder

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/doccpub/internal/config"
	"git.home.luguber.info/inful/doccpub/internal/logfields"
	"git.home.luguber.info/inful/doccpub/internal/project"
	"git.home.luguber.info/inful/doccpub/internal/runner"
	"git.home.luguber.info/inful/doccpub/internal/toolchain"
)

// Archive describes the compiler's output for one run.
type Archive struct {
	// Path is either the hosting-ready tree (Swift packages) or the
	// .doccarchive bundle (Xcode projects).
	Path string
	// Scheme is the selected build scheme / target name.
	Scheme string
	// StaticReady reports whether Path is already a static site tree and the
	// packager can skip the static-hosting transform.
	StaticReady bool
}

// Builder runs the documentation compiler for a detected project.
type Builder struct {
	run runner.Runner
	tc  *toolchain.Toolchain
	cfg config.BuildConfig
}

// New creates a Builder.
func New(run runner.Runner, tc *toolchain.Toolchain, cfg config.BuildConfig) *Builder {
	return &Builder{run: run, tc: tc, cfg: cfg}
}

// Build resolves dependencies and produces a documentation archive for the
// detected project. outputDir receives the package-plugin output; derivedData
// receives xcodebuild intermediates.
func (b *Builder) Build(ctx context.Context, desc *project.Descriptor, outputDir, derivedData string) (*Archive, error) {
	switch desc.Kind {
	case project.KindSwiftPackage:
		return b.buildPackage(ctx, desc, outputDir)
	case project.KindXcodeProject:
		return b.buildXcodeProject(ctx, desc, derivedData)
	default:
		return nil, fmt.Errorf("unsupported project kind %q", desc.Kind)
	}
}

func (b *Builder) buildPackage(ctx context.Context, desc *project.Descriptor, outputDir string) (*Archive, error) {
	scheme := b.cfg.Scheme
	if scheme == "" {
		scheme = desc.Name
	}

	slog.Info("Resolving package dependencies", logfields.Project(desc.Name))
	if _, err := b.run.Run(ctx, runner.Command{
		Program: b.tc.Swift,
		Args:    []string{"package", "resolve"},
		Dir:     desc.Root,
		Env:     b.tc.Env(),
	}); err != nil {
		return nil, fmt.Errorf("package dependency resolution failed: %w", err)
	}

	slog.Info("Generating package documentation",
		logfields.Project(desc.Name),
		logfields.Scheme(scheme),
		logfields.Path(outputDir))
	if _, err := b.run.Run(ctx, runner.Command{
		Program: b.tc.Swift,
		Args: []string{
			"package",
			"--allow-writing-to-directory", outputDir,
			"generate-documentation",
			"--disable-indexing",
			"--transform-for-static-hosting",
			"--hosting-base-path", scheme,
			"--output-path", outputDir,
		},
		Dir: desc.Root,
		Env: b.tc.Env(),
	}); err != nil {
		return nil, fmt.Errorf("documentation generation failed: %w", err)
	}

	return &Archive{Path: outputDir, Scheme: scheme, StaticReady: true}, nil
}

func (b *Builder) buildXcodeProject(ctx context.Context, desc *project.Descriptor, derivedData string) (*Archive, error) {
	slog.Info("Resolving project dependencies", logfields.Project(desc.Name))
	if _, err := b.run.Run(ctx, runner.Command{
		Program: b.tc.Xcodebuild,
		Args:    []string{"-resolvePackageDependencies", "-project", desc.ProjectPath},
		Dir:     desc.Root,
		Env:     b.tc.Env(),
	}); err != nil {
		return nil, fmt.Errorf("project dependency resolution failed: %w", err)
	}

	scheme, err := b.selectScheme(ctx, desc)
	if err != nil {
		return nil, err
	}

	slog.Info("Building documentation",
		logfields.Project(desc.Name),
		logfields.Scheme(scheme),
		slog.String("destination", b.cfg.Destination))
	if _, err := b.run.Run(ctx, runner.Command{
		Program: b.tc.Xcodebuild,
		Args: []string{
			"docbuild",
			"-project", desc.ProjectPath,
			"-scheme", scheme,
			"-destination", b.cfg.Destination,
			"-derivedDataPath", derivedData,
		},
		Dir: desc.Root,
		Env: b.tc.Env(),
	}); err != nil {
		return nil, fmt.Errorf("docbuild failed: %w", err)
	}

	archivePath, err := findDoccArchive(derivedData)
	if err != nil {
		return nil, err
	}

	return &Archive{Path: archivePath, Scheme: scheme, StaticReady: false}, nil
}

// selectScheme returns the configured scheme, or the first scheme xcodebuild
// reports. First-in-listing order is the deliberate tie-break.
func (b *Builder) selectScheme(ctx context.Context, desc *project.Descriptor) (string, error) {
	if b.cfg.Scheme != "" {
		slog.Debug("Using configured scheme", logfields.Scheme(b.cfg.Scheme))
		return b.cfg.Scheme, nil
	}

	schemes, err := b.ListSchemes(ctx, desc)
	if err != nil {
		return "", err
	}
	if len(schemes) == 0 {
		return "", fmt.Errorf("project %s reports no build schemes", desc.Name)
	}

	slog.Info("Selected first listed scheme",
		logfields.Scheme(schemes[0]),
		slog.Int("available", len(schemes)))
	return schemes[0], nil
}

// findDoccArchive locates the .doccarchive produced under derived data.
func findDoccArchive(derivedData string) (string, error) {
	var found string
	err := filepath.WalkDir(derivedData, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && strings.HasSuffix(d.Name(), ".doccarchive") {
			found = path
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to scan derived data: %w", err)
	}
	if found == "" {
		return "", fmt.Errorf("no .doccarchive found under %s", derivedData)
	}
	return found, nil
}
