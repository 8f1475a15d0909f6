package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yourorg/lintpython/internal/config"
	"github.com/yourorg/lintpython/internal/linters"
	"github.com/yourorg/lintpython/internal/render"
	"github.com/yourorg/lintpython/internal/runner"
)

type planOptions struct {
	format string
}

//nolint:govet // fieldalignment: field order mirrors the table output.
type planOutput struct {
	Version           string           `json:"version"`
	WorkingDirectory  string           `json:"working_directory"`
	Source            string           `json:"source"`
	Python            string           `json:"python"`
	CheckOnly         bool             `json:"check"`
	Install           bool             `json:"install"`
	InstallOnly       bool             `json:"install_only"`
	Tools             map[string]bool  `json:"tools"`
	ExtraRequirements []string         `json:"extra_requirements"`
	MaxLineLength     int              `json:"max_line_length,omitempty"`
	Commands          []runner.Command `json:"commands"`
}

func newPlanCmd(globals *globalOptions, deps dependencies) *cobra.Command {
	opts := &planOptions{format: string(render.FormatTable)}

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the resolved configuration and the commands a run would execute",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, globals, deps)
		},
	}

	cmd.Flags().StringVar(&opts.format, "format", opts.format, "Output format: json|table")

	return cmd
}

func (opts *planOptions) run(cmd *cobra.Command, globals *globalOptions, deps dependencies) error {
	format, err := render.ParseFormat(opts.format)
	if err != nil {
		return &config.ConfigurationError{Origin: cliOrigin, Key: "format", Err: err}
	}

	cfg, err := resolveConfig(cmd, globals, deps)
	if err != nil {
		return err
	}

	out := buildPlanOutput(cfg)
	if format == render.FormatJSON {
		return render.JSON(cmd.OutOrStdout(), out)
	}
	return writePlanTable(cmd.OutOrStdout(), out)
}

func buildPlanOutput(cfg config.RunConfiguration) planOutput {
	tools := make(map[string]bool, len(linters.Order()))
	for _, t := range linters.Order() {
		tools[string(t)] = cfg.Enabled(t)
	}
	extras := cfg.ExtraRequirements
	if extras == nil {
		extras = []string{}
	}
	return planOutput{
		Version:           config.Version,
		WorkingDirectory:  cfg.WorkingDirectory,
		Source:            cfg.Source,
		Python:            cfg.Python,
		CheckOnly:         cfg.CheckOnly,
		Install:           cfg.InstallRequested,
		InstallOnly:       cfg.InstallOnly,
		Tools:             tools,
		ExtraRequirements: extras,
		MaxLineLength:     cfg.MaxLineLength,
		Commands:          runner.Plan(cfg),
	}
}

func writePlanTable(w io.Writer, out planOutput) error {
	enabled := make([]string, 0, len(out.Tools))
	for _, t := range linters.Order() {
		if out.Tools[string(t)] {
			enabled = append(enabled, string(t))
		}
	}

	pairs := [][2]string{
		{"version", out.Version},
		{"working directory", out.WorkingDirectory},
		{"source", out.Source},
		{"python", out.Python},
		{"check", strconv.FormatBool(out.CheckOnly)},
		{"install", strconv.FormatBool(out.Install)},
		{"install only", strconv.FormatBool(out.InstallOnly)},
		{"tools", strings.Join(enabled, " ")},
		{"extra requirements", strings.Join(out.ExtraRequirements, " ")},
	}
	if out.MaxLineLength > 0 {
		pairs = append(pairs, [2]string{"max line length", strconv.Itoa(out.MaxLineLength)})
	}
	if err := render.KeyValues(w, pairs); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return fmt.Errorf("write separator: %w", err)
	}

	rows := make([][]string, 0, len(out.Commands))
	for i, c := range out.Commands {
		rows = append(rows, []string{strconv.Itoa(i + 1), c.String()})
	}
	return render.Table(w, []string{"#", "COMMAND"}, rows)
}
