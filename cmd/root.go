package cmd

import (
	"context"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/yourorg/lintpython/internal/config"
	"github.com/yourorg/lintpython/internal/linters"
	"github.com/yourorg/lintpython/internal/logging"
	"github.com/yourorg/lintpython/internal/render"
	"github.com/yourorg/lintpython/internal/runner"
)

const cliOrigin = "command line"

type globalOptions struct {
	configFile string
	debug      bool
}

// dependencies holds the collaborators swapped out by tests.
type dependencies struct {
	newExecutor func(stdout, stderr io.Writer) runner.Executor
	loadEnv     func() (config.Settings, error)
}

func defaultDependencies() dependencies {
	return dependencies{
		newExecutor: func(stdout, stderr io.Writer) runner.Executor {
			return runner.NewProcessExecutor(stdout, stderr)
		},
		loadEnv: config.LoadEnv,
	}
}

// Execute runs the command hierarchy.
func Execute(ctx context.Context) error {
	root := newRootCmd(defaultDependencies())
	root.SetErr(os.Stderr)
	root.SetOut(os.Stdout)
	return root.ExecuteContext(ctx)
}

func newRootCmd(deps dependencies) *cobra.Command {
	globals := &globalOptions{}

	cmd := &cobra.Command{
		Use:           "lint-python",
		Short:         "Run isort, black, flake8 and mypy against a Python project",
		Version:       config.Version,
		Args:          noArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLint(cmd, globals, deps)
		},
	}

	flags := cmd.PersistentFlags()
	registerSettingsFlags(flags)
	flags.StringVar(&globals.configFile, "config", "", "Read settings from this file instead of "+config.ManifestName)
	flags.BoolVar(&globals.debug, "debug", false, "Enable debug logging")

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &config.ConfigurationError{Origin: cliOrigin, Err: err}
	})

	cmd.AddCommand(newPlanCmd(globals, deps))

	return cmd
}

// noArgs rejects positional arguments as command-line misuse.
func noArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.NoArgs(cmd, args); err != nil {
		return &config.ConfigurationError{Origin: cliOrigin, Err: err}
	}
	return nil
}

func registerSettingsFlags(flags *pflag.FlagSet) {
	flags.Bool(config.KeyCheck, false, "Perform only check and don't modify the files")
	flags.Bool(config.KeyInstall, false, "Install required linters before linting")
	flags.Bool(config.KeyInstallOnly, false, "Install required linters but don't perform linting")
	flags.Bool(config.KeyNoExtras, false, "Omit extra-requirements during installation")

	flags.String(config.KeySource, "", "Source directory to lint (default \".\")")
	flags.StringP(
		config.KeyWorkingDirectory,
		"C",
		"",
		"Run from this directory; "+config.ManifestName+" is discovered here",
	)
	flags.String(config.KeyExtraRequirements, "", "Space-separated extra packages installed with the linters")
	flags.String(config.KeyLintVersion, "", "Required lint-python version prefix")
	flags.Int(config.KeyMaxLineLength, 0, "Line length passed to isort, black and flake8 (0 keeps tool defaults)")
	flags.String(config.KeyPython, "", "Python interpreter used to run the tools (default \"python3\")")
	for _, tool := range linters.Order() {
		flags.Bool(tool.EnableKey(), true, "Run "+string(tool))
	}
}

// flagSettings builds the CLI layer from the flags the user actually set.
func flagSettings(flags *pflag.FlagSet) (config.Settings, error) {
	var firstErr error
	s := config.Settings{Origin: cliOrigin}
	flags.Visit(func(f *pflag.Flag) {
		if firstErr != nil || !config.IsKey(f.Name) {
			return
		}
		if err := s.Set(f.Name, f.Value.String()); err != nil {
			firstErr = &config.ConfigurationError{Origin: cliOrigin, Key: f.Name, Err: err}
		}
	})
	return s, firstErr
}

// resolveConfig merges manifest, environment and flags, in increasing precedence.
func resolveConfig(cmd *cobra.Command, globals *globalOptions, deps dependencies) (config.RunConfiguration, error) {
	cli, err := flagSettings(cmd.Flags())
	if err != nil {
		return config.RunConfiguration{}, err
	}
	env, err := deps.loadEnv()
	if err != nil {
		return config.RunConfiguration{}, err
	}

	dir := "."
	for _, layer := range []config.Settings{env, cli} {
		if layer.WorkingDirectory != nil && *layer.WorkingDirectory != "" {
			dir = *layer.WorkingDirectory
		}
	}

	var manifest config.Settings
	if globals.configFile != "" {
		manifest, err = config.LoadManifestFile(globals.configFile)
	} else {
		manifest, err = config.DiscoverManifest(dir)
	}
	if err != nil {
		return config.RunConfiguration{}, err
	}

	return config.Resolve(manifest, env, cli)
}

func runLint(cmd *cobra.Command, globals *globalOptions, deps dependencies) error {
	log := logging.New(cmd.ErrOrStderr(), globals.debug)
	defer func() {
		_ = log.Sync()
	}()

	cfg, err := resolveConfig(cmd, globals, deps)
	if err != nil {
		return err
	}
	log.Debug(
		"Resolved configuration",
		zap.String("dir", cfg.WorkingDirectory),
		zap.String("source", cfg.Source),
		zap.Stringers("tools", cfg.EnabledTools()),
		zap.Bool("check", cfg.CheckOnly),
		zap.Bool("install", cfg.InstallRequested),
	)

	exec := deps.newExecutor(cmd.OutOrStdout(), cmd.ErrOrStderr())
	rep, err := runner.New(cfg, exec, log).Run(cmd.Context())
	if len(rep.Results) > 0 {
		if sumErr := writeSummary(cmd.ErrOrStderr(), rep); sumErr != nil {
			log.Warn("Could not write summary", zap.Error(sumErr))
		}
	}
	return err
}

func writeSummary(w io.Writer, rep runner.Report) error {
	rows := make([][]string, 0, len(rep.Results))
	for _, res := range rep.Results {
		status := "ok"
		if res.Failed() {
			status = "failed"
		}
		rows = append(rows, []string{
			string(res.Tool),
			status,
			strconv.Itoa(res.ExitCode),
			res.Duration.Round(time.Millisecond).String(),
		})
	}
	return render.Table(w, []string{"TOOL", "RESULT", "EXIT", "DURATION"}, rows)
}
