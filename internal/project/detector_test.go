package project

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("// swift-tools-version:5.9\n"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func mkdir(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
}

func TestDetect_SwiftPackage(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "Package.swift"))

	desc, err := Detect(root)
	if err != nil {
		t.Fatalf("Detect() failed: %v", err)
	}
	if desc.Kind != KindSwiftPackage {
		t.Errorf("expected %s, got %s", KindSwiftPackage, desc.Kind)
	}
	if desc.ProjectPath != "" {
		t.Errorf("package detection must not set a project path")
	}
}

func TestDetect_XcodeProject(t *testing.T) {
	root := t.TempDir()
	mkdir(t, filepath.Join(root, "MyApp.xcodeproj"))

	desc, err := Detect(root)
	if err != nil {
		t.Fatalf("Detect() failed: %v", err)
	}
	if desc.Kind != KindXcodeProject {
		t.Errorf("expected %s, got %s", KindXcodeProject, desc.Kind)
	}
	if desc.Name != "MyApp" {
		t.Errorf("expected name MyApp, got %s", desc.Name)
	}
	if desc.ProjectPath != filepath.Join(root, "MyApp.xcodeproj") {
		t.Errorf("unexpected project path %s", desc.ProjectPath)
	}
}

// A manifest and a project file in the same snapshot must always resolve the
// same way: the package path wins and the project file is never considered.
func TestDetect_ManifestWinsOverProject(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "Package.swift"))
	mkdir(t, filepath.Join(root, "MyApp.xcodeproj"))

	desc, err := Detect(root)
	if err != nil {
		t.Fatalf("Detect() failed: %v", err)
	}
	if desc.Kind != KindSwiftPackage {
		t.Errorf("manifest should win, got %s", desc.Kind)
	}
}

func TestDetect_MultipleProjectsFirstLexicalWins(t *testing.T) {
	root := t.TempDir()
	mkdir(t, filepath.Join(root, "Zeta.xcodeproj"))
	mkdir(t, filepath.Join(root, "Alpha.xcodeproj"))

	// Detection must be deterministic regardless of directory read order.
	for i := 0; i < 3; i++ {
		desc, err := Detect(root)
		if err != nil {
			t.Fatalf("Detect() failed: %v", err)
		}
		if desc.Name != "Alpha" {
			t.Fatalf("expected lexically first project Alpha, got %s", desc.Name)
		}
	}
}

func TestDetect_NeitherFails(t *testing.T) {
	root := t.TempDir()

	_, err := Detect(root)
	if err == nil {
		t.Fatal("expected detection failure for empty repository")
	}
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %T: %v", err, err)
	}
}

// A stray Package.swift directory (not a file) must not classify as a package.
func TestDetect_ManifestDirectoryIgnored(t *testing.T) {
	root := t.TempDir()
	mkdir(t, filepath.Join(root, "Package.swift"))
	mkdir(t, filepath.Join(root, "MyApp.xcodeproj"))

	desc, err := Detect(root)
	if err != nil {
		t.Fatalf("Detect() failed: %v", err)
	}
	if desc.Kind != KindXcodeProject {
		t.Errorf("expected fallback to Xcode project, got %s", desc.Kind)
	}
}
