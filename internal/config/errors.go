package config

import "fmt"

// ConfigurationError reports an invalid or missing setting. It is fatal and
// raised before any external process starts.
type ConfigurationError struct {
	Err    error
	Origin string
	Key    string
}

func (e *ConfigurationError) Error() string {
	msg := "configuration"
	if e.Origin != "" {
		msg += " " + e.Origin
	}
	if e.Key != "" {
		msg += fmt.Sprintf(": %q", e.Key)
	}
	return fmt.Sprintf("%s: %v", msg, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

func configErr(origin, key string, err error) error {
	return &ConfigurationError{Origin: origin, Key: key, Err: err}
}
