package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "doccpub.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestRunDetect_ExplicitPath(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "Package.swift"), []byte("// swift-tools-version:5.9\n"), 0o644))

	require.NoError(t, runDetect(root))
}

// Without a path argument, detect resolves the checkout (and the developer
// dir for scheme listing) from the configuration file.
func TestRunDetect_UsesConfiguredProject(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "Package.swift"), []byte("// swift-tools-version:5.9\n"), 0o644))

	CLI.Config = writeTestConfig(t, t.TempDir(), `
project:
  path: `+root+`
build:
  developer_dir: /Applications/Xcode.app/Contents/Developer
publish:
  target: none
`)

	require.NoError(t, runDetect(""))
}

func TestRunDetect_NoProjectAnywhere(t *testing.T) {
	err := runDetect(t.TempDir())
	require.Error(t, err)
}

func TestRunPackage_MissingArchive(t *testing.T) {
	root := t.TempDir()
	CLI.Config = writeTestConfig(t, root, `
project:
  path: `+root+`
publish:
  target: none
`)

	err := runPackage(filepath.Join(root, "MyKit.doccarchive"), "MyKit")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "archive not found")
}
