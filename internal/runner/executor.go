package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Command is one external process invocation.
type Command struct {
	Path string   `json:"path"`
	Args []string `json:"args"`
	Dir  string   `json:"dir"`
}

func (c Command) String() string {
	return strings.Join(append([]string{c.Path}, c.Args...), " ")
}

// Executor runs a command to completion and reports its exit code. A non-nil
// error means the process could not be run at all.
type Executor interface {
	Run(ctx context.Context, c Command) (int, error)
}

// ProcessExecutor runs commands as child processes, passing their output
// through unmodified.
type ProcessExecutor struct {
	Stdout io.Writer
	Stderr io.Writer

	// env is appended to the inherited environment.
	env []string
}

// NewProcessExecutor streams child output to the supplied writers.
func NewProcessExecutor(stdout, stderr io.Writer) *ProcessExecutor {
	return &ProcessExecutor{Stdout: stdout, Stderr: stderr}
}

// Run blocks until the process exits.
func (e *ProcessExecutor) Run(ctx context.Context, c Command) (int, error) {
	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	cmd.Dir = c.Dir
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr
	if len(e.env) > 0 {
		cmd.Env = append(os.Environ(), e.env...)
	}

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() >= 0 {
		return exitErr.ExitCode(), nil
	}
	return -1, fmt.Errorf("run %s: %w", c.Path, err)
}
