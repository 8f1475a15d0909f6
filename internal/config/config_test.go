package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/yourorg/lintpython/internal/config"
	"github.com/yourorg/lintpython/internal/linters"
)

func TestResolveDefaults(t *testing.T) {
	t.Parallel()

	root := setupProject(t, "")

	cfg, err := config.Resolve(config.Settings{}, config.Settings{WorkingDirectory: ptr(root)})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if cfg.Source != "." {
		t.Fatalf("Source = %q, want %q", cfg.Source, ".")
	}
	if cfg.Python != "python3" {
		t.Fatalf("Python = %q, want python3", cfg.Python)
	}
	if cfg.CheckOnly || cfg.InstallRequested || cfg.InstallOnly {
		t.Fatalf("unexpected run flags: %+v", cfg)
	}
	if !cfg.WithExtras {
		t.Fatalf("expected extras to be installed by default")
	}
	if diff := cmp.Diff(linters.Order(), cfg.EnabledTools()); diff != "" {
		t.Fatalf("EnabledTools mismatch (-want +got):\n%s", diff)
	}
}

func TestResolvePrecedence(t *testing.T) {
	t.Parallel()

	root := setupProject(t, "app", "lib")

	manifest := config.Settings{
		Origin:            "pyproject.toml",
		Source:            ptr("app"),
		LintVersion:       ptr("1"),
		ExtraRequirements: []string{"types-requests"},
		MaxLineLength:     ptr(100),
		Tools:             map[linters.Tool]bool{linters.Mypy: false, linters.Flake8: false},
	}
	env := config.Settings{
		MaxLineLength: ptr(110),
		Tools:         map[linters.Tool]bool{linters.Flake8: true},
	}
	cli := config.Settings{
		WorkingDirectory: ptr(root),
		Source:           ptr("lib"),
		MaxLineLength:    ptr(120),
		CheckOnly:        ptr(true),
	}

	cfg, err := config.Resolve(manifest, env, cli)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if cfg.Source != "lib" {
		t.Fatalf("Source = %q, want CLI value lib", cfg.Source)
	}
	if cfg.MaxLineLength != 120 {
		t.Fatalf("MaxLineLength = %d, want CLI value 120", cfg.MaxLineLength)
	}
	if !cfg.CheckOnly {
		t.Fatalf("expected CLI check-only to apply")
	}
	if cfg.Enabled(linters.Mypy) {
		t.Fatalf("expected manifest to disable mypy")
	}
	if !cfg.Enabled(linters.Flake8) {
		t.Fatalf("expected environment to re-enable flake8")
	}
	if diff := cmp.Diff([]string{"types-requests"}, cfg.ExtraRequirements); diff != "" {
		t.Fatalf("ExtraRequirements mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveManifestBeatsDefaults(t *testing.T) {
	t.Parallel()

	root := setupProject(t, "src")

	cfg, err := config.Resolve(
		config.Settings{Origin: "pyproject.toml", Source: ptr("src"), LintVersion: ptr("1.4"), Python: ptr("python3.12")},
		config.Settings{WorkingDirectory: ptr(root)},
	)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if cfg.Source != "src" || cfg.Python != "python3.12" {
		t.Fatalf("manifest values not applied: %+v", cfg)
	}
	if got, want := cfg.SourcePath(), filepath.Join(root, "src"); got != want {
		t.Fatalf("SourcePath = %q, want %q", got, want)
	}
}

func TestResolveInstallOnlyImpliesInstall(t *testing.T) {
	t.Parallel()

	root := setupProject(t, "")

	cfg, err := config.Resolve(config.Settings{}, config.Settings{
		WorkingDirectory: ptr(root),
		InstallOnly:      ptr(true),
		Install:          ptr(false),
	})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if !cfg.InstallRequested {
		t.Fatalf("expected install-only to imply install")
	}
}

func TestResolveRequirements(t *testing.T) {
	t.Parallel()

	root := setupProject(t, "")
	extras := []string{"types-PyYAML", "django-stubs==5.1.0"}

	cfg, err := config.Resolve(config.Settings{}, config.Settings{WorkingDirectory: ptr(root), ExtraRequirements: extras})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	want := append(linters.Requirements(), extras...)
	if diff := cmp.Diff(want, cfg.Requirements()); diff != "" {
		t.Fatalf("Requirements mismatch (-want +got):\n%s", diff)
	}

	noExtras, err := config.Resolve(config.Settings{}, config.Settings{
		WorkingDirectory:  ptr(root),
		ExtraRequirements: extras,
		WithExtras:        ptr(false),
	})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if diff := cmp.Diff(linters.Requirements(), noExtras.Requirements()); diff != "" {
		t.Fatalf("Requirements without extras mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveConfigurationErrors(t *testing.T) {
	t.Parallel()

	root := setupProject(t, "app")
	file := filepath.Join(root, "module.py")
	if err := os.WriteFile(file, []byte("x = 1\n"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	tests := []struct {
		name     string
		manifest config.Settings
		cli      config.Settings
		key      string
	}{
		{name: "missing source", cli: config.Settings{Source: ptr("missing")}, key: config.KeySource},
		{name: "source is a file", cli: config.Settings{Source: ptr("module.py")}, key: config.KeySource},
		{name: "empty source", cli: config.Settings{Source: ptr("")}, key: config.KeySource},
		{
			name:     "unsupported version",
			manifest: config.Settings{Origin: "pyproject.toml", LintVersion: ptr("0.9")},
			key:      config.KeyLintVersion,
		},
		{name: "missing version in manifest", manifest: config.Settings{Origin: "pyproject.toml"}, key: config.KeyLintVersion},
		{name: "negative line length", cli: config.Settings{MaxLineLength: ptr(-1)}, key: config.KeyMaxLineLength},
		{name: "empty interpreter", cli: config.Settings{Python: ptr("")}, key: config.KeyPython},
		{
			name: "missing working directory",
			cli:  config.Settings{WorkingDirectory: ptr(filepath.Join(root, "nope"))},
			key:  config.KeyWorkingDirectory,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cli := tc.cli
			if cli.WorkingDirectory == nil {
				cli.WorkingDirectory = ptr(root)
			}
			_, err := config.Resolve(tc.manifest, cli)
			var cfgErr *config.ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected ConfigurationError, got %v", err)
			}
			if cfgErr.Key != tc.key {
				t.Fatalf("ConfigurationError key = %q, want %q", cfgErr.Key, tc.key)
			}
		})
	}
}

func TestResolveVersionErrorNamesWinningLayer(t *testing.T) {
	t.Parallel()

	root := setupProject(t)
	manifest := config.Settings{Origin: "pyproject.toml", LintVersion: ptr("1")}

	tests := map[string]config.Settings{
		"command line":   {Origin: "command line", LintVersion: ptr("9"), WorkingDirectory: ptr(root)},
		config.EnvOrigin: {Origin: config.EnvOrigin, LintVersion: ptr("9"), WorkingDirectory: ptr(root)},
	}
	for origin, override := range tests {
		_, err := config.Resolve(manifest, override)
		var cfgErr *config.ConfigurationError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("%s: expected ConfigurationError, got %v", origin, err)
		}
		if cfgErr.Origin != origin || cfgErr.Key != config.KeyLintVersion {
			t.Fatalf("%s: error attributed to %q/%q", origin, cfgErr.Origin, cfgErr.Key)
		}
	}

	_, err := config.Resolve(config.Settings{Origin: "pyproject.toml", LintVersion: ptr("9")}, config.Settings{WorkingDirectory: ptr(root)})
	var cfgErr *config.ConfigurationError
	if !errors.As(err, &cfgErr) || cfgErr.Origin != "pyproject.toml" {
		t.Fatalf("manifest marker must be attributed to the manifest, got %v", err)
	}
}

func TestResolveAbsoluteSource(t *testing.T) {
	t.Parallel()

	root := setupProject(t, "app")
	other := t.TempDir()

	cfg, err := config.Resolve(config.Settings{}, config.Settings{WorkingDirectory: ptr(root), Source: ptr(other)})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if cfg.SourcePath() != other {
		t.Fatalf("SourcePath = %q, want %q", cfg.SourcePath(), other)
	}
}

func TestCheckVersion(t *testing.T) {
	t.Parallel()

	if config.Version != "1.4.0" {
		t.Skipf("markers below are written against 1.4.0, have %s", config.Version)
	}

	accepted := []string{"1", "v1", "1.4", "1.4.x", "~1.4", "1.x", ">=1", "1.4.0"}
	for _, v := range accepted {
		if err := config.CheckVersion(v); err != nil {
			t.Fatalf("CheckVersion(%q) returned error: %v", v, err)
		}
	}

	tests := map[string]string{
		"":              "cannot be empty",
		"0":             "version mismatch",
		"2":             "version mismatch",
		"1.3":           "version mismatch",
		"1.40":          "version mismatch",
		"99":            "version mismatch",
		"not-a-version": "malformed version",
	}
	for marker, want := range tests {
		err := config.CheckVersion(marker)
		if err == nil {
			t.Fatalf("CheckVersion(%q) expected error", marker)
		}
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("CheckVersion(%q) = %v, want error containing %q", marker, err, want)
		}
	}
}

func setupProject(t *testing.T, dirs ...string) string {
	t.Helper()

	root := t.TempDir()
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(filepath.Join(root, dir), 0o750); err != nil {
			t.Fatalf("create %s: %v", dir, err)
		}
	}
	return root
}

func ptr[T any](v T) *T {
	return &v
}
