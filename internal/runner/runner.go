// Package runner executes external commands for the scaffolder.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// ErrNotFound is returned when the executable cannot be found.
var ErrNotFound = errors.New("command not found")

// Result holds the captured output of a command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Options holds optional parameters for command execution.
type Options struct {
	Dir string // working directory (optional)
	// Stdout receives the command output instead of Result.Stdout when set.
	Stdout io.Writer
}

// ExitError is returned when a command exits with a non-zero status.
type ExitError struct {
	Command string
	Args    []string
	Code    int
	Stdout  string
	Stderr  string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with status %d", e.Command, e.Code)
}

// Output returns the captured stdout and stderr, labelled, for display.
func (e *ExitError) Output() string {
	var b strings.Builder
	if s := strings.TrimSpace(e.Stdout); s != "" {
		fmt.Fprintf(&b, "stdout:\n%s\n", s)
	}
	if s := strings.TrimSpace(e.Stderr); s != "" {
		fmt.Fprintf(&b, "stderr:\n%s\n", s)
	}
	return b.String()
}

// Runner is the interface for running external commands.
type Runner interface {
	// Run executes a command, waits for it and captures its output.
	// A non-zero exit is reported as *ExitError.
	Run(ctx context.Context, name string, args []string, opts Options) (Result, error)

	// Spawn starts a command with the terminal's stdio and returns without
	// waiting for it. Only failures to start are reported. The process runs
	// in its own process group so it outlives an interrupt of the caller.
	Spawn(ctx context.Context, name string, args []string, opts Options) error
}

// Exec is the os/exec implementation of Runner.
type Exec struct {
	logger *zap.Logger
}

// New creates a new Exec runner.
func New(logger *zap.Logger) *Exec {
	return &Exec{logger: logger}
}

// Run executes the command and captures stdout/stderr.
func (r *Exec) Run(ctx context.Context, name string, args []string, opts Options) (Result, error) {
	r.logger.Debug("running command",
		zap.String("name", name),
		zap.Strings("args", args),
		zap.String("dir", opts.Dir),
	)

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = opts.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	if opts.Stdout != nil {
		cmd.Stdout = opts.Stdout
	}
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		return result, r.wrap(ctx, name, args, err, &result)
	}

	r.logger.Debug("command succeeded", zap.String("name", name))
	return result, nil
}

// Spawn starts the command detached and releases it.
func (r *Exec) Spawn(ctx context.Context, name string, args []string, opts Options) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	r.logger.Debug("spawning command",
		zap.String("name", name),
		zap.Strings("args", args),
		zap.String("dir", opts.Dir),
	)

	// not bound to ctx: the spawned process must survive the caller
	cmd := exec.Command(name, args...)
	cmd.Dir = opts.Dir
	cmd.Stdout, cmd.Stderr = os.Stdout, os.Stderr
	detach(cmd)

	if err := cmd.Start(); err != nil {
		var result Result
		return r.wrap(ctx, name, args, err, &result)
	}

	r.logger.Debug("command spawned", zap.String("name", name), zap.Int("pid", cmd.Process.Pid))
	if err := cmd.Process.Release(); err != nil {
		r.logger.Debug("unable to release process", zap.Error(err))
	}
	return nil
}

func (r *Exec) wrap(ctx context.Context, name string, args []string, err error, result *Result) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s: %w", name, ctxErr)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		r.logger.Debug("command failed",
			zap.String("name", name),
			zap.Int("exit_code", result.ExitCode),
		)
		return &ExitError{
			Command: name,
			Args:    args,
			Code:    result.ExitCode,
			Stdout:  result.Stdout,
			Stderr:  result.Stderr,
		}
	}

	// exec.ErrNotFound covers PATH lookups, fs.ErrNotExist absolute paths
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s: %v", ErrNotFound, name, err)
	}

	return fmt.Errorf("failed to run %s: %w", name, err)
}
