// Package toolchain locates the external documentation toolchain (swift,
// xcodebuild, docc) and pins a toolchain version via DEVELOPER_DIR.
//
// A missing documentation compiler is a fatal precondition failure: the build
// stage would fail anyway, so the pipeline halts here with a clear error
// instead of a warning.
package toolchain

import (
	"fmt"
	"log/slog"
	"os/exec"

	"git.home.luguber.info/inful/doccpub/internal/logfields"
	"git.home.luguber.info/inful/doccpub/internal/project"
)

// Toolchain holds resolved tool paths plus the pinned developer directory.
type Toolchain struct {
	Swift      string
	Xcodebuild string
	Docc       string
	// DeveloperDir, when non-empty, is exported as DEVELOPER_DIR for every
	// tool invocation so all tools come from the same toolchain.
	DeveloperDir string
}

// MissingToolError indicates a required tool was not found on the PATH.
type MissingToolError struct {
	Tool string
	Err  error
}

func (e *MissingToolError) Error() string {
	return fmt.Sprintf("required tool %q not found on PATH: %v", e.Tool, e.Err)
}

func (e *MissingToolError) Unwrap() error { return e.Err }

// LookupFunc resolves a tool name to a path. Defaults to exec.LookPath;
// tests substitute their own.
type LookupFunc func(name string) (string, error)

// Locate resolves the tools required for the given project kind.
//
// Swift packages need swift and docc (the documentation plugin drives docc
// through swift, but we verify docc up front). Xcode projects need xcodebuild
// and docc.
func Locate(kind project.Kind, developerDir string, lookup LookupFunc) (*Toolchain, error) {
	if lookup == nil {
		lookup = exec.LookPath
	}

	tc := &Toolchain{DeveloperDir: developerDir}

	doccPath, err := lookup("docc")
	if err != nil {
		return nil, &MissingToolError{Tool: "docc", Err: err}
	}
	tc.Docc = doccPath

	switch kind {
	case project.KindSwiftPackage:
		swiftPath, err := lookup("swift")
		if err != nil {
			return nil, &MissingToolError{Tool: "swift", Err: err}
		}
		tc.Swift = swiftPath
	case project.KindXcodeProject:
		xcodebuildPath, err := lookup("xcodebuild")
		if err != nil {
			return nil, &MissingToolError{Tool: "xcodebuild", Err: err}
		}
		tc.Xcodebuild = xcodebuildPath
	default:
		return nil, fmt.Errorf("unsupported project kind %q", kind)
	}

	slog.Debug("Toolchain resolved",
		logfields.Tool("docc"),
		logfields.Path(tc.Docc),
		slog.String("developer_dir", developerDir))
	return tc, nil
}

// LocateDocc resolves only the documentation compiler. Used when an archive
// already exists and no build tool is needed.
func LocateDocc(developerDir string, lookup LookupFunc) (*Toolchain, error) {
	if lookup == nil {
		lookup = exec.LookPath
	}
	doccPath, err := lookup("docc")
	if err != nil {
		return nil, &MissingToolError{Tool: "docc", Err: err}
	}
	return &Toolchain{Docc: doccPath, DeveloperDir: developerDir}, nil
}

// Env returns environment entries every tool invocation should carry.
func (t *Toolchain) Env() []string {
	if t.DeveloperDir == "" {
		return nil
	}
	return []string{"DEVELOPER_DIR=" + t.DeveloperDir}
}
