package workspace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestManager_EphemeralMode(t *testing.T) {
	tempBase := t.TempDir()
	mgr := NewManager(tempBase)

	if err := mgr.Create(); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	path := mgr.Path()
	if !strings.HasPrefix(filepath.Base(path), "doccpub-") {
		t.Errorf("expected timestamped directory name, got %s", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("workspace directory not created: %v", err)
	}

	if err := mgr.Cleanup(); err != nil {
		t.Fatalf("Cleanup() failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected workspace removed after cleanup")
	}
	if mgr.Path() != "" {
		t.Errorf("expected empty path after cleanup")
	}
}

func TestManager_PersistentMode(t *testing.T) {
	tempBase := t.TempDir()
	mgr := NewPersistentManager(tempBase, "working")

	if err := mgr.Create(); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	want := filepath.Join(tempBase, "working")
	if mgr.Path() != want {
		t.Errorf("expected fixed path %s, got %s", want, mgr.Path())
	}

	// Persistent cleanup keeps the directory.
	if err := mgr.Cleanup(); err != nil {
		t.Fatalf("Cleanup() failed: %v", err)
	}
	if _, err := os.Stat(want); err != nil {
		t.Errorf("persistent workspace should survive cleanup: %v", err)
	}
}

func TestManager_SubPaths(t *testing.T) {
	tempBase := t.TempDir()
	mgr := NewPersistentManager(tempBase, "work")
	if err := mgr.Create(); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	if got := mgr.DerivedDataPath(); got != filepath.Join(mgr.Path(), "DerivedData") {
		t.Errorf("unexpected derived data path %s", got)
	}
	if got := mgr.StagingPath(); got != filepath.Join(mgr.Path(), "staging") {
		t.Errorf("unexpected staging path %s", got)
	}
}
