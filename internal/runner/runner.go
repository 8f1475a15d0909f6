// Package runner installs and invokes the external lint tools for a resolved configuration.
package runner

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/yourorg/lintpython/internal/config"
	"github.com/yourorg/lintpython/internal/linters"
)

// Result is the outcome of one tool invocation.
type Result struct {
	Err      error
	Tool     linters.Tool
	Command  Command
	Duration time.Duration
	ExitCode int
}

// Failed reports whether the tool reported violations or could not run.
func (r Result) Failed() bool {
	return r.Err != nil || r.ExitCode != 0
}

// Report summarizes a run.
type Report struct {
	Results   []Result
	Installed bool
}

// Failures lists the failed tools in invocation order.
func (rep Report) Failures() []ToolFailure {
	var out []ToolFailure
	for _, r := range rep.Results {
		if r.Failed() {
			out = append(out, ToolFailure{Tool: r.Tool, ExitCode: r.ExitCode, Err: r.Err})
		}
	}
	return out
}

// Runner drives one lint-python run. It never mutates its configuration.
type Runner struct {
	exec Executor
	log  *zap.Logger
	cfg  config.RunConfiguration
	now  func() time.Time
}

// New builds a runner for cfg. A nil logger discards log output.
func New(cfg config.RunConfiguration, exec Executor, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{cfg: cfg, exec: exec, log: log, now: time.Now}
}

// InstallCommand returns the pip invocation installing the pinned tools and extras.
func InstallCommand(cfg config.RunConfiguration) Command {
	args := append([]string{"-m", "pip", "install", "-U"}, cfg.Requirements()...)
	return Command{Path: cfg.Python, Args: args, Dir: cfg.WorkingDirectory}
}

// ToolCommand returns the invocation of tool against the configured source.
func ToolCommand(cfg config.RunConfiguration, tool linters.Tool) Command {
	args := append([]string{"-m", tool.Module()}, linters.Args(tool, cfg.Source, cfg.ToolOptions())...)
	return Command{Path: cfg.Python, Args: args, Dir: cfg.WorkingDirectory}
}

// Plan lists the commands a run would execute, in order.
func Plan(cfg config.RunConfiguration) []Command {
	var cmds []Command
	if cfg.InstallRequested {
		cmds = append(cmds, InstallCommand(cfg))
	}
	if cfg.InstallOnly {
		return cmds
	}
	for _, tool := range cfg.EnabledTools() {
		cmds = append(cmds, ToolCommand(cfg, tool))
	}
	return cmds
}

// Run installs when requested and then lints. The returned error is an
// *InstallationError, a *LintError, a cancellation error or nil; the report is always populated
// with whatever ran.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	var rep Report

	if r.cfg.InstallRequested {
		if err := r.Install(ctx); err != nil {
			return rep, err
		}
		rep.Installed = true
	}
	if r.cfg.InstallOnly {
		r.log.Info("Install-only run, skipping linting")
		return rep, nil
	}

	rep.Results = r.Lint(ctx)
	if err := ctx.Err(); err != nil {
		return rep, fmt.Errorf("run interrupted: %w", err)
	}
	if failures := rep.Failures(); len(failures) > 0 {
		return rep, &LintError{Failures: failures}
	}
	return rep, nil
}

// Install runs the package installer once with every requirement.
func (r *Runner) Install(ctx context.Context) error {
	cmd := InstallCommand(r.cfg)
	r.log.Info("Installing linters", zap.Strings("requirements", r.cfg.Requirements()))
	r.log.Debug("Running command", zap.Stringer("command", cmd))

	code, err := r.exec.Run(ctx, cmd)
	if err != nil || code != 0 {
		instErr := &InstallationError{Command: cmd, ExitCode: code, Err: err}
		r.log.Error("Command failed", zap.Stringer("command", cmd), zap.Int("code", code), zap.Error(err))
		return instErr
	}
	return nil
}

// Lint invokes every enabled tool in order. A failing tool never prevents the
// remaining tools from running; only cancellation of ctx stops the sequence.
func (r *Runner) Lint(ctx context.Context) []Result {
	tools := r.cfg.EnabledTools()
	results := make([]Result, 0, len(tools))
	for _, tool := range tools {
		if ctx.Err() != nil {
			break
		}
		results = append(results, r.runTool(ctx, tool))
	}
	return results
}

func (r *Runner) runTool(ctx context.Context, tool linters.Tool) Result {
	cmd := ToolCommand(r.cfg, tool)
	r.log.Info("Linting with "+string(tool), zap.Bool("check", r.cfg.CheckOnly && tool.Mutates()))
	r.log.Debug("Running command", zap.Stringer("command", cmd))

	start := r.now()
	code, err := r.exec.Run(ctx, cmd)
	res := Result{
		Tool:     tool,
		Command:  cmd,
		ExitCode: code,
		Err:      err,
		Duration: r.now().Sub(start),
	}
	if res.Failed() {
		r.log.Error("Command failed", zap.Stringer("command", cmd), zap.Int("code", code), zap.Error(err))
	}
	return res
}
