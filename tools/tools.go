//go:build tools

package tools

// This file pins the Go linters and formatters run against lint-python itself.
import (
	_ "github.com/golangci/golangci-lint/cmd/golangci-lint"
	_ "mvdan.cc/gofumpt"
)
