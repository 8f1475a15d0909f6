// Package cmd wires the cobra-based CLI for lint-python.
//
// The root command lints the project; `plan` prints what a run would do.
// Settings come from pyproject.toml, LINT_PYTHON_* variables and flags, in
// increasing precedence.
package cmd
