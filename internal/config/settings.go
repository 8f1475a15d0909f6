package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cast"

	"github.com/yourorg/lintpython/internal/linters"
)

// Keys shared by the manifest table, environment variables and CLI flags.
const (
	KeySource            = "source"
	KeyExtraRequirements = "extra-requirements"
	KeyLintVersion       = "lint-version"
	KeyMaxLineLength     = "max-line-length"
	KeyPython            = "python"

	KeyCheck            = "check"
	KeyInstall          = "install"
	KeyInstallOnly      = "install-only"
	KeyNoExtras         = "no-extras"
	KeyWorkingDirectory = "working-directory"
)

// Settings is one partial configuration layer. Nil fields leave lower layers untouched.
//
//nolint:govet // fieldalignment: fields mirror the key table.
type Settings struct {
	// Origin names where the layer came from and is reported with errors about
	// its values. For the manifest layer a non-empty Origin means a lint-python
	// table was found.
	Origin string

	Source            *string
	Tools             map[linters.Tool]bool
	ExtraRequirements []string
	LintVersion       *string
	MaxLineLength     *int
	Python            *string

	CheckOnly        *bool
	Install          *bool
	InstallOnly      *bool
	WithExtras       *bool
	WorkingDirectory *string
}

// ManifestKeys lists the keys accepted inside the manifest table.
func ManifestKeys() []string {
	keys := []string{KeySource, KeyExtraRequirements, KeyLintVersion, KeyMaxLineLength, KeyPython}
	for _, t := range linters.Order() {
		keys = append(keys, t.EnableKey())
	}
	return keys
}

// Keys lists every key a Settings layer can carry.
func Keys() []string {
	return append(ManifestKeys(), KeyCheck, KeyInstall, KeyInstallOnly, KeyNoExtras, KeyWorkingDirectory)
}

// IsKey reports whether key names a setting.
func IsKey(key string) bool {
	for _, k := range Keys() {
		if k == key {
			return true
		}
	}
	return false
}

func isManifestKey(key string) bool {
	for _, k := range ManifestKeys() {
		if k == key {
			return true
		}
	}
	return false
}

// Set decodes raw into the field named by key. Strings such as "false" or
// "120" are accepted wherever a bool or int is expected.
func (s *Settings) Set(key string, raw any) error {
	switch key {
	case KeySource:
		return setString(&s.Source, raw)
	case KeyLintVersion:
		return setString(&s.LintVersion, raw)
	case KeyPython:
		return setString(&s.Python, raw)
	case KeyWorkingDirectory:
		return setString(&s.WorkingDirectory, raw)
	case KeyExtraRequirements:
		reqs, err := cast.ToStringSliceE(raw)
		if err != nil {
			return fmt.Errorf("expected space-separated string or list: %w", err)
		}
		s.ExtraRequirements = splitRequirements(reqs)
		return nil
	case KeyMaxLineLength:
		n, err := cast.ToIntE(raw)
		if err != nil {
			return fmt.Errorf("expected integer: %w", err)
		}
		s.MaxLineLength = &n
		return nil
	case KeyCheck:
		return setBool(&s.CheckOnly, raw, false)
	case KeyInstall:
		return setBool(&s.Install, raw, false)
	case KeyInstallOnly:
		return setBool(&s.InstallOnly, raw, false)
	case KeyNoExtras:
		return setBool(&s.WithExtras, raw, true)
	}

	tool, ok := linters.FromEnableKey(key)
	if !ok {
		return errors.New("unknown key")
	}
	enabled, err := cast.ToBoolE(raw)
	if err != nil {
		return fmt.Errorf("expected boolean: %w", err)
	}
	if s.Tools == nil {
		s.Tools = make(map[linters.Tool]bool, len(linters.Order()))
	}
	s.Tools[tool] = enabled
	return nil
}

func setString(dst **string, raw any) error {
	str, err := cast.ToStringE(raw)
	if err != nil {
		return fmt.Errorf("expected string: %w", err)
	}
	str = strings.TrimSpace(str)
	*dst = &str
	return nil
}

func setBool(dst **bool, raw any, invert bool) error {
	b, err := cast.ToBoolE(raw)
	if err != nil {
		return fmt.Errorf("expected boolean: %w", err)
	}
	if invert {
		b = !b
	}
	*dst = &b
	return nil
}

// splitRequirements flattens entries that themselves hold several specifiers.
func splitRequirements(in []string) []string {
	out := make([]string, 0, len(in))
	for _, entry := range in {
		out = append(out, strings.Fields(entry)...)
	}
	return out
}
