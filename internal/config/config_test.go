package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doccpub.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "project:\n  path: .\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ".", cfg.Project.Path)
	assert.Equal(t, DefaultBranch, cfg.Project.Branch)
	assert.Equal(t, DefaultDestination, cfg.Build.Destination)
	assert.Equal(t, DefaultAssetsDir, cfg.Site.AssetsDir)
	assert.Equal(t, DefaultOutputDir, cfg.Site.OutputDir)
	assert.Equal(t, "pages", cfg.Publish.Target)
	assert.Equal(t, DefaultPagesBranch, cfg.Publish.Branch)
	assert.Equal(t, DefaultRemote, cfg.Publish.Remote)
}

func TestLoad_EmptyProjectDefaultsToCwd(t *testing.T) {
	path := writeConfig(t, "publish:\n  target: none\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ".", cfg.Project.Path)
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("DOCCPUB_TEST_SCHEME", "MyKit")
	path := writeConfig(t, "project:\n  path: .\nbuild:\n  scheme: ${DOCCPUB_TEST_SCHEME}\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "MyKit", cfg.Build.Scheme)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration file not found")
}

func TestValidate_BadPublishTarget(t *testing.T) {
	path := writeConfig(t, "project:\n  path: .\npublish:\n  target: ftp\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid publish target")
}

func TestValidate_DirTargetRequiresDir(t *testing.T) {
	path := writeConfig(t, "project:\n  path: .\npublish:\n  target: dir\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires publish.dir")
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doccpub.yaml")
	require.NoError(t, Init(path, false))

	// Scaffolded file must load cleanly.
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "pages", cfg.Publish.Target)

	// Second init without force refuses to clobber.
	err = Init(path, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	require.NoError(t, Init(path, true))
}

func TestDaemonNATSSubjectDefault(t *testing.T) {
	path := writeConfig(t, "project:\n  path: .\ndaemon:\n  nats:\n    enabled: true\n    url: nats://localhost:4222\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Daemon.NATS)
	assert.Equal(t, DefaultNATSSubject, cfg.Daemon.NATS.Subject)
}
