// Package linters describes the external Python analysis tools driven by lint-python.
package linters

import (
	"strconv"
	"strings"
)

// Tool identifies one of the supported external tools.
type Tool string

const (
	ISort  Tool = "isort"
	Black  Tool = "black"
	Flake8 Tool = "flake8"
	Mypy   Tool = "mypy"
)

const enableKeyPrefix = "use-"

// pinned holds the package specifiers installed by --install, in invocation order.
var pinned = map[Tool]string{
	ISort:  "isort==5.13.2",
	Black:  "black==24.10.0",
	Flake8: "flake8==7.1.1",
	Mypy:   "mypy==1.13.0",
}

// Order returns every tool in its fixed invocation order.
func Order() []Tool {
	return []Tool{ISort, Black, Flake8, Mypy}
}

func (t Tool) String() string {
	return string(t)
}

// Module is the Python module name passed to `python -m`.
func (t Tool) Module() string {
	return string(t)
}

// EnableKey is the manifest key and CLI flag toggling the tool.
func (t Tool) EnableKey() string {
	return enableKeyPrefix + string(t)
}

// Requirement returns the pinned package specifier for the tool.
func (t Tool) Requirement() string {
	return pinned[t]
}

// FromEnableKey maps a key such as "use-mypy" back to its tool.
func FromEnableKey(key string) (Tool, bool) {
	name, ok := strings.CutPrefix(key, enableKeyPrefix)
	if !ok {
		return "", false
	}
	for _, t := range Order() {
		if string(t) == name {
			return t, true
		}
	}
	return "", false
}

// Requirements lists the pinned specifiers of every tool.
func Requirements() []string {
	reqs := make([]string, 0, len(pinned))
	for _, t := range Order() {
		reqs = append(reqs, t.Requirement())
	}
	return reqs
}

// Options carries the run-wide settings that affect tool arguments.
type Options struct {
	CheckOnly     bool
	MaxLineLength int
}

// Args builds the argument list for the tool, ending with the source path.
func Args(t Tool, source string, opts Options) []string {
	var args []string
	switch t {
	case ISort, Black:
		if opts.MaxLineLength > 0 {
			args = append(args, "--line-length", strconv.Itoa(opts.MaxLineLength))
		}
		if opts.CheckOnly {
			args = append(args, "--check")
		}
	case Flake8:
		if opts.MaxLineLength > 0 {
			args = append(args, "--max-line-length", strconv.Itoa(opts.MaxLineLength))
		}
	case Mypy:
	}
	return append(args, source)
}

// Mutates reports whether the tool rewrites files unless run in check mode.
func (t Tool) Mutates() bool {
	return t == ISort || t == Black
}
