// Package runner executes external build tools with output capture, working
// directory and environment control, and context cancellation. The pipeline
// runs under a stop-on-first-error discipline: a non-zero exit from any tool
// is surfaced as an error and never retried.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"git.home.luguber.info/inful/doccpub/internal/logfields"
)

// Command describes a single external tool invocation.
type Command struct {
	Program string
	Args    []string
	// Dir is the working directory ("" = inherit).
	Dir string
	// Env entries are appended to the current process environment.
	Env []string
}

// Result holds the captured output of a finished invocation.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// ExitError wraps a non-zero tool exit with enough context for operator logs.
type ExitError struct {
	Program  string
	Args     []string
	ExitCode int
	Stderr   string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s %s exited with code %d: %s",
		e.Program, strings.Join(e.Args, " "), e.ExitCode, strings.TrimSpace(e.Stderr))
}

// Runner executes commands. The production implementation shells out; tests
// substitute a stub so no toolchain is required.
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
}

// ExecRunner runs commands via os/exec.
type ExecRunner struct{}

// NewExecRunner creates a Runner backed by os/exec.
func NewExecRunner() *ExecRunner { return &ExecRunner{} }

// Run executes the command, capturing stdout and stderr separately.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) (*Result, error) {
	slog.Debug("Running command",
		logfields.Tool(cmd.Program),
		slog.String("args", strings.Join(cmd.Args, " ")),
		logfields.Path(cmd.Dir))

	execCmd := exec.CommandContext(ctx, cmd.Program, cmd.Args...)
	execCmd.Dir = cmd.Dir
	if len(cmd.Env) > 0 {
		execCmd.Env = append(os.Environ(), cmd.Env...)
	}

	var stdout, stderr bytes.Buffer
	execCmd.Stdout = &stdout
	execCmd.Stderr = &stderr

	start := time.Now()
	err := execCmd.Run()
	duration := time.Since(start)

	result := &Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: duration,
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, &ExitError{
				Program:  cmd.Program,
				Args:     cmd.Args,
				ExitCode: exitErr.ExitCode(),
				Stderr:   stderr.String(),
			}
		}
		return result, fmt.Errorf("failed to run %s: %w", cmd.Program, err)
	}

	slog.Debug("Command finished",
		logfields.Tool(cmd.Program),
		logfields.DurationMS(float64(duration.Milliseconds())))
	return result, nil
}
