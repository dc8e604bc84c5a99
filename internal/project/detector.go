package project

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"git.home.luguber.info/inful/doccpub/internal/logfields"
)

// Kind enumerates the supported project classifications.
type Kind string

const (
	KindSwiftPackage Kind = "swift-package"
	KindXcodeProject Kind = "xcode-project"
)

// Descriptor is the result of detection: the classification plus the paths
// the build stage needs. It is immutable for the rest of the run.
type Descriptor struct {
	Kind Kind
	// Root is the repository root that was inspected.
	Root string
	// ProjectPath is the .xcodeproj bundle path (Xcode projects only).
	ProjectPath string
	// Name is the project's base name (manifest directory or bundle name).
	Name string
}

// NotFoundError indicates the repository contains neither a package manifest
// nor an Xcode project file. This halts the pipeline before any build step.
type NotFoundError struct {
	Root string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no Package.swift or *.xcodeproj found in %s", e.Root)
}

// Detect inspects the repository root and classifies it.
//
// A package manifest takes precedence over a project file, so a repository
// carrying both is built through the package manager. The two build paths are
// mutually exclusive by construction.
func Detect(root string) (*Descriptor, error) {
	manifest := filepath.Join(root, "Package.swift")
	if info, err := os.Stat(manifest); err == nil && !info.IsDir() {
		name := filepath.Base(absOrClean(root))
		slog.Info("Detected Swift package", logfields.Path(root), logfields.Project(name))
		return &Descriptor{Kind: KindSwiftPackage, Root: root, Name: name}, nil
	}

	projPath, err := findXcodeProject(root)
	if err != nil {
		return nil, err
	}
	if projPath != "" {
		name := strings.TrimSuffix(filepath.Base(projPath), ".xcodeproj")
		slog.Info("Detected Xcode project", logfields.Path(projPath), logfields.Project(name))
		return &Descriptor{Kind: KindXcodeProject, Root: root, ProjectPath: projPath, Name: name}, nil
	}

	return nil, &NotFoundError{Root: root}
}

// findXcodeProject returns the lexically first .xcodeproj bundle in root,
// or "" when none exists.
func findXcodeProject(root string) (string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return "", fmt.Errorf("failed to read repository root %s: %w", root, err)
	}

	var candidates []string
	for _, entry := range entries {
		if entry.IsDir() && strings.HasSuffix(entry.Name(), ".xcodeproj") {
			candidates = append(candidates, entry.Name())
		}
	}
	if len(candidates) == 0 {
		return "", nil
	}

	sort.Strings(candidates)
	if len(candidates) > 1 {
		slog.Warn("Multiple Xcode projects found, using first",
			logfields.Path(root),
			slog.String("selected", candidates[0]),
			slog.Int("count", len(candidates)))
	}
	return filepath.Join(root, candidates[0]), nil
}

func absOrClean(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
