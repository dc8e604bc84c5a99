package builder

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/doccpub/internal/config"
	"git.home.luguber.info/inful/doccpub/internal/project"
	"git.home.luguber.info/inful/doccpub/internal/runner"
	"git.home.luguber.info/inful/doccpub/internal/toolchain"
)

func testToolchain() *toolchain.Toolchain {
	return &toolchain.Toolchain{
		Swift:      "swift",
		Xcodebuild: "xcodebuild",
		Docc:       "docc",
	}
}

func buildCfg() config.BuildConfig {
	return config.BuildConfig{Destination: config.DefaultDestination}
}

func TestBuild_SwiftPackage(t *testing.T) {
	stub := runner.NewStubRunner()
	stub.Respond("swift", &runner.Result{}, nil)

	desc := &project.Descriptor{Kind: project.KindSwiftPackage, Root: "/repo", Name: "MyKit"}
	b := New(stub, testToolchain(), buildCfg())

	archive, err := b.Build(context.Background(), desc, "/repo/docs", "")
	require.NoError(t, err)

	assert.Equal(t, "/repo/docs", archive.Path)
	assert.Equal(t, "MyKit", archive.Scheme)
	assert.True(t, archive.StaticReady)

	// Resolve then generate, nothing else, and never the Xcode path.
	require.Len(t, stub.Calls, 2)
	assert.Equal(t, []string{"package", "resolve"}, stub.Calls[0].Args)
	assert.Contains(t, stub.Calls[1].Args, "generate-documentation")
	assert.Contains(t, stub.Calls[1].Args, "--transform-for-static-hosting")
	for _, call := range stub.Calls {
		assert.NotEqual(t, "xcodebuild", call.Program)
	}
}

func TestBuild_SwiftPackageResolveFailureAborts(t *testing.T) {
	stub := runner.NewStubRunner()
	stub.Respond("swift", nil, &runner.ExitError{Program: "swift", ExitCode: 1})

	desc := &project.Descriptor{Kind: project.KindSwiftPackage, Root: "/repo", Name: "MyKit"}
	b := New(stub, testToolchain(), buildCfg())

	_, err := b.Build(context.Background(), desc, "/repo/docs", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dependency resolution failed")
	// Stop on first error: generate-documentation is never attempted.
	assert.Len(t, stub.Calls, 1)
}

func TestBuild_XcodeProject(t *testing.T) {
	derived := t.TempDir()
	archiveDir := filepath.Join(derived, "Build", "Products", "Debug-iphonesimulator", "MyApp.doccarchive")
	require.NoError(t, os.MkdirAll(archiveDir, 0o755))

	stub := runner.NewStubRunner()
	stub.Respond("xcodebuild", &runner.Result{
		Stdout: `{"project":{"schemes":["MyApp","MyAppTests"]}}`,
	}, nil)

	desc := &project.Descriptor{
		Kind:        project.KindXcodeProject,
		Root:        "/repo",
		ProjectPath: "/repo/MyApp.xcodeproj",
		Name:        "MyApp",
	}
	b := New(stub, testToolchain(), buildCfg())

	archive, err := b.Build(context.Background(), desc, "", derived)
	require.NoError(t, err)

	assert.Equal(t, archiveDir, archive.Path)
	assert.Equal(t, "MyApp", archive.Scheme, "first listed scheme wins")
	assert.False(t, archive.StaticReady)

	// resolve deps, list schemes, docbuild
	require.Len(t, stub.Calls, 3)
	assert.Contains(t, stub.Calls[0].Args, "-resolvePackageDependencies")
	assert.Contains(t, stub.Calls[1].Args, "-list")
	assert.Contains(t, stub.Calls[2].Args, "docbuild")
	assert.Contains(t, stub.Calls[2].Args, config.DefaultDestination)
}

func TestBuild_XcodeProjectConfiguredSchemeSkipsListing(t *testing.T) {
	derived := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(derived, "MyLib.doccarchive"), 0o755))

	stub := runner.NewStubRunner()
	stub.Respond("xcodebuild", &runner.Result{}, nil)

	desc := &project.Descriptor{
		Kind:        project.KindXcodeProject,
		Root:        "/repo",
		ProjectPath: "/repo/MyApp.xcodeproj",
		Name:        "MyApp",
	}
	cfg := buildCfg()
	cfg.Scheme = "MyLib"
	b := New(stub, testToolchain(), cfg)

	archive, err := b.Build(context.Background(), desc, "", derived)
	require.NoError(t, err)
	assert.Equal(t, "MyLib", archive.Scheme)

	// No -list invocation when the scheme is configured.
	require.Len(t, stub.Calls, 2)
	for _, call := range stub.Calls {
		assert.NotContains(t, call.Args, "-list")
	}
}

func TestBuild_XcodeProjectNoSchemes(t *testing.T) {
	stub := runner.NewStubRunner()
	stub.Respond("xcodebuild", &runner.Result{Stdout: `{"project":{"schemes":[]}}`}, nil)

	desc := &project.Descriptor{
		Kind:        project.KindXcodeProject,
		Root:        "/repo",
		ProjectPath: "/repo/MyApp.xcodeproj",
		Name:        "MyApp",
	}
	b := New(stub, testToolchain(), buildCfg())

	_, err := b.Build(context.Background(), desc, "", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no build schemes")
}

func TestBuild_XcodeProjectMissingArchive(t *testing.T) {
	stub := runner.NewStubRunner()
	stub.Respond("xcodebuild", &runner.Result{Stdout: `{"project":{"schemes":["MyApp"]}}`}, nil)

	desc := &project.Descriptor{
		Kind:        project.KindXcodeProject,
		Root:        "/repo",
		ProjectPath: "/repo/MyApp.xcodeproj",
		Name:        "MyApp",
	}
	b := New(stub, testToolchain(), buildCfg())

	_, err := b.Build(context.Background(), desc, "", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no .doccarchive found")
}

func TestListSchemes_WorkspaceShape(t *testing.T) {
	stub := runner.NewStubRunner()
	stub.Respond("xcodebuild", &runner.Result{
		Stdout: `{"workspace":{"schemes":["First","Second"]}}`,
	}, nil)

	desc := &project.Descriptor{
		Kind:        project.KindXcodeProject,
		Root:        "/repo",
		ProjectPath: "/repo/MyApp.xcodeproj",
	}
	b := New(stub, testToolchain(), buildCfg())

	schemes, err := b.ListSchemes(context.Background(), desc)
	require.NoError(t, err)
	assert.Equal(t, []string{"First", "Second"}, schemes)
}
