package runner

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yourorg/lintpython/internal/config"
	"github.com/yourorg/lintpython/internal/linters"
)

// Process exit codes.
const (
	ExitOK            = 0
	ExitLintFailure   = 1
	ExitConfiguration = 2
	ExitInstallation  = 3
	ExitInternal      = 4
)

// InstallationError reports a failed package installation. Nothing is linted afterwards.
type InstallationError struct {
	Err      error
	Command  Command
	ExitCode int
}

func (e *InstallationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("install: command %q failed: %v", e.Command.String(), e.Err)
	}
	return fmt.Sprintf("install: command %q failed with return code %d", e.Command.String(), e.ExitCode)
}

func (e *InstallationError) Unwrap() error {
	return e.Err
}

// ToolFailure records a tool that reported violations or could not run.
type ToolFailure struct {
	Err      error
	Tool     linters.Tool
	ExitCode int
}

func (f ToolFailure) String() string {
	if f.Err != nil {
		return fmt.Sprintf("%s (%v)", f.Tool, f.Err)
	}
	return fmt.Sprintf("%s (exit %d)", f.Tool, f.ExitCode)
}

// LintError aggregates every failed tool of a run.
type LintError struct {
	Failures []ToolFailure
}

func (e *LintError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, f.String())
	}
	return "lint failed: " + strings.Join(parts, ", ")
}

// ExitCode maps a run error to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var (
		cfgErr     *config.ConfigurationError
		installErr *InstallationError
		lintErr    *LintError
	)
	switch {
	case errors.As(err, &cfgErr):
		return ExitConfiguration
	case errors.As(err, &installErr):
		return ExitInstallation
	case errors.As(err, &lintErr):
		return ExitLintFailure
	default:
		return ExitInternal
	}
}
