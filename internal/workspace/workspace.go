package workspace

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/doccpub/internal/logfields"
)

// Manager owns the scratch directory a publish run builds in. The project
// checkout, xcodebuild derived data and the staged site tree all live under
// one root so a single Cleanup reclaims everything.
type Manager struct {
	baseDir    string
	workDir    string
	persistent bool
}

// NewManager returns a manager that materializes a fresh timestamped
// directory per run. An empty baseDir falls back to the system temp dir.
func NewManager(baseDir string) *Manager {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	return &Manager{baseDir: baseDir}
}

// NewPersistentManager returns a manager rooted at a fixed directory that
// survives Cleanup. Daemon mode uses this so the project checkout and
// derived data stay warm between runs.
func NewPersistentManager(baseDir, subdirName string) *Manager {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	if subdirName == "" {
		subdirName = "working"
	}
	return &Manager{
		baseDir:    baseDir,
		workDir:    filepath.Join(baseDir, subdirName),
		persistent: true,
	}
}

// Create materializes the workspace root.
func (m *Manager) Create() error {
	if m.persistent {
		if err := os.MkdirAll(m.workDir, 0o750); err != nil {
			return fmt.Errorf("failed to create workspace: %w", err)
		}
		slog.Info("Using persistent workspace", logfields.Path(m.workDir))
		return nil
	}

	dir := filepath.Join(m.baseDir, "doccpub-"+time.Now().Format("20060102-150405"))
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create workspace: %w", err)
	}
	m.workDir = dir
	slog.Info("Created workspace", logfields.Path(dir))
	return nil
}

// Path returns the workspace root. Empty before Create and, for ephemeral
// workspaces, after Cleanup.
func (m *Manager) Path() string {
	return m.workDir
}

// DerivedDataPath is where xcodebuild writes its intermediates.
func (m *Manager) DerivedDataPath() string {
	return filepath.Join(m.workDir, "DerivedData")
}

// StagingPath is where runs against a remote checkout assemble the site
// tree, keeping the clone itself pristine.
func (m *Manager) StagingPath() string {
	return filepath.Join(m.workDir, "staging")
}

// Cleanup removes an ephemeral workspace root. Persistent workspaces are
// left in place for the next run.
func (m *Manager) Cleanup() error {
	if m.workDir == "" || m.persistent {
		return nil
	}
	if err := os.RemoveAll(m.workDir); err != nil {
		return fmt.Errorf("failed to remove workspace: %w", err)
	}
	slog.Debug("Removed workspace", logfields.Path(m.workDir))
	m.workDir = ""
	return nil
}
