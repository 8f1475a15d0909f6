package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Version is the lint-python release matched against the lint-version marker.
const Version = "1.4.0"

var current = semver.MustParse(Version)

func majorVersion() string {
	return fmt.Sprint(current.Major())
}

// CheckVersion reports whether Version satisfies the lint-version marker.
// The marker is a semver constraint: "1" accepts 1.x.y, "1.4" accepts 1.4.x,
// and ranges such as "~1.4" or ">=1" work as well.
func CheckVersion(required string) error {
	marker := strings.TrimSpace(required)
	if marker == "" {
		return errors.New("version marker cannot be empty")
	}
	c, err := semver.NewConstraint(marker)
	if err != nil {
		return fmt.Errorf("malformed version %q: %w", required, err)
	}
	if !c.Check(current) {
		return fmt.Errorf("version mismatch: lint-python is v%s but %s is required", Version, marker)
	}
	return nil
}
