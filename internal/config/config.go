// Package config resolves the lint-python run configuration from the project
// manifest, the environment and command-line overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/viper"

	"github.com/yourorg/lintpython/internal/linters"
)

const (
	// ManifestName is the project manifest searched in the working directory.
	ManifestName = "pyproject.toml"

	manifestTable = "tool.lint-python"
	envPrefix     = "LINT_PYTHON"
	defaultPython = "python3"
	defaultSource = "."
)

// EnvOrigin is the Origin of the layer built by LoadEnv.
const EnvOrigin = "environment"

// DiscoverManifest reads the lint-python table from the manifest in dir.
// A missing manifest or a manifest without the table yields an empty layer.
func DiscoverManifest(dir string) (Settings, error) {
	path := filepath.Join(dir, ManifestName)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Settings{}, nil
		}
		return Settings{}, configErr(path, "", fmt.Errorf("stat manifest: %w", err))
	}
	return readManifest(path, true)
}

// LoadManifestFile reads an explicitly named configuration file. Files named
// like the project manifest are read from their lint-python table; any other
// file in a viper-supported format is read from its top level.
func LoadManifestFile(path string) (Settings, error) {
	if _, err := os.Stat(path); err != nil {
		return Settings{}, configErr(path, "", fmt.Errorf("read config file: %w", err))
	}
	return readManifest(path, filepath.Base(path) == ManifestName)
}

func readManifest(path string, nested bool) (Settings, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Settings{}, configErr(path, "", fmt.Errorf("parse manifest: %w", err))
	}

	if nested {
		if !v.IsSet(manifestTable) {
			return Settings{}, nil
		}
		if _, ok := v.Get(manifestTable).(map[string]any); !ok {
			return Settings{}, configErr(path, manifestTable, errors.New("expected a table"))
		}
		v = v.Sub(manifestTable)
	}

	s := Settings{Origin: path}
	keys := v.AllKeys()
	sort.Strings(keys)
	for _, key := range keys {
		if !isManifestKey(key) {
			return Settings{}, configErr(path, key, errors.New("unknown key"))
		}
		if err := s.Set(key, v.Get(key)); err != nil {
			return Settings{}, configErr(path, key, err)
		}
	}
	return s, nil
}

// EnvName returns the environment variable consulted for key.
func EnvName(key string) string {
	return envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
}

// LoadEnv builds a layer from LINT_PYTHON_* variables. Empty variables are ignored.
func LoadEnv() (Settings, error) {
	v := viper.New()
	keys := append(ManifestKeys(), KeyWorkingDirectory)
	for _, key := range keys {
		if err := v.BindEnv(key, EnvName(key)); err != nil {
			return Settings{}, configErr(EnvOrigin, key, err)
		}
	}

	s := Settings{Origin: EnvOrigin}
	for _, key := range keys {
		if !v.IsSet(key) {
			continue
		}
		if err := s.Set(key, v.Get(key)); err != nil {
			return Settings{}, configErr(EnvOrigin, EnvName(key), err)
		}
	}
	return s, nil
}

// RunConfiguration is the fully resolved, read-only configuration of one run.
//
//nolint:govet // fieldalignment: grouped by concern.
type RunConfiguration struct {
	// Source is the analyzed directory as passed to the tools, relative to
	// WorkingDirectory unless given as an absolute path.
	Source            string
	WorkingDirectory  string
	Python            string
	LintVersion       string
	ExtraRequirements []string
	MaxLineLength     int

	CheckOnly        bool
	InstallRequested bool
	InstallOnly      bool
	WithExtras       bool

	tools map[linters.Tool]bool
	// versionOrigin is the Origin of the layer that set LintVersion.
	versionOrigin string
}

// Enabled reports whether tool runs in this configuration.
func (c RunConfiguration) Enabled(tool linters.Tool) bool {
	return c.tools[tool]
}

// EnabledTools returns the enabled tools in invocation order.
func (c RunConfiguration) EnabledTools() []linters.Tool {
	var out []linters.Tool
	for _, t := range linters.Order() {
		if c.tools[t] {
			out = append(out, t)
		}
	}
	return out
}

// SourcePath returns the absolute path of the source directory.
func (c RunConfiguration) SourcePath() string {
	if filepath.IsAbs(c.Source) {
		return c.Source
	}
	return filepath.Join(c.WorkingDirectory, c.Source)
}

// Requirements lists the package specifiers the installer receives.
func (c RunConfiguration) Requirements() []string {
	reqs := linters.Requirements()
	if c.WithExtras {
		reqs = append(reqs, c.ExtraRequirements...)
	}
	return reqs
}

// ToolOptions returns the argument-affecting options for the tools.
func (c RunConfiguration) ToolOptions() linters.Options {
	return linters.Options{CheckOnly: c.CheckOnly, MaxLineLength: c.MaxLineLength}
}

func defaults() RunConfiguration {
	tools := make(map[linters.Tool]bool, len(linters.Order()))
	for _, t := range linters.Order() {
		tools[t] = true
	}
	return RunConfiguration{
		Source:     defaultSource,
		Python:     defaultPython,
		WithExtras: true,
		tools:      tools,
	}
}

func (c *RunConfiguration) apply(s Settings) {
	if s.Source != nil {
		c.Source = *s.Source
	}
	for tool, enabled := range s.Tools {
		c.tools[tool] = enabled
	}
	if s.ExtraRequirements != nil {
		c.ExtraRequirements = append([]string(nil), s.ExtraRequirements...)
	}
	if s.LintVersion != nil {
		c.LintVersion = *s.LintVersion
		c.versionOrigin = s.Origin
	}
	if s.MaxLineLength != nil {
		c.MaxLineLength = *s.MaxLineLength
	}
	if s.Python != nil {
		c.Python = *s.Python
	}
	if s.CheckOnly != nil {
		c.CheckOnly = *s.CheckOnly
	}
	if s.Install != nil {
		c.InstallRequested = *s.Install
	}
	if s.InstallOnly != nil {
		c.InstallOnly = *s.InstallOnly
	}
	if s.WithExtras != nil {
		c.WithExtras = *s.WithExtras
	}
	if s.WorkingDirectory != nil {
		c.WorkingDirectory = *s.WorkingDirectory
	}
}

// Resolve merges defaults, the manifest layer and the overrides, later layers
// winning, and validates the result. Its only I/O is a stat of the working
// and source directories.
func Resolve(manifest Settings, overrides ...Settings) (RunConfiguration, error) {
	cfg := defaults()
	cfg.apply(manifest)
	for _, o := range overrides {
		cfg.apply(o)
	}

	if cfg.InstallOnly {
		cfg.InstallRequested = true
	}

	if err := cfg.resolveDirectories(); err != nil {
		return RunConfiguration{}, err
	}

	switch {
	case cfg.LintVersion != "":
		if err := CheckVersion(cfg.LintVersion); err != nil {
			return RunConfiguration{}, configErr(cfg.versionOrigin, KeyLintVersion, err)
		}
	case manifest.Origin != "":
		return RunConfiguration{}, configErr(
			manifest.Origin,
			KeyLintVersion,
			errors.New("required field is missing; pin at least the major version, e.g. \""+majorVersion()+"\""),
		)
	}

	if cfg.Python == "" {
		return RunConfiguration{}, configErr("", KeyPython, errors.New("interpreter cannot be empty"))
	}
	if cfg.MaxLineLength < 0 {
		return RunConfiguration{}, configErr("", KeyMaxLineLength, errors.New("must not be negative"))
	}

	return cfg, nil
}

func (c *RunConfiguration) resolveDirectories() error {
	wd := c.WorkingDirectory
	if wd == "" {
		wd = "."
	}
	abs, err := filepath.Abs(wd)
	if err != nil {
		return configErr("", KeyWorkingDirectory, fmt.Errorf("resolve path: %w", err))
	}
	if err := requireDir(abs); err != nil {
		return configErr("", KeyWorkingDirectory, err)
	}
	c.WorkingDirectory = abs

	if c.Source == "" {
		return configErr("", KeySource, errors.New("source cannot be empty"))
	}
	c.Source = filepath.Clean(c.Source)
	if err := requireDir(c.SourcePath()); err != nil {
		return configErr("", KeySource, err)
	}
	return nil
}

func requireDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("directory %q does not exist", path)
		}
		return fmt.Errorf("stat %q: %w", path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%q is not a directory", path)
	}
	return nil
}
