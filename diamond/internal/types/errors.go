package types

import (
	"errors"
	"fmt"
)

var (
	ErrConfig   = errors.New("invalid configuration")
	ErrConflict = errors.New("signature conflict")
)

// ConfigError reports an invalid configuration value or an unreadable input.
type ConfigError struct {
	Field string
	Value string
	Err   error
}

func NewConfigError(field, value string, err error) *ConfigError {
	return &ConfigError{Field: field, Value: value, Err: err}
}

func (e *ConfigError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %s: %v", ErrConfig, e.Field, e.Err)
	}
	return fmt.Sprintf("%s: %s %q: %v", ErrConfig, e.Field, e.Value, e.Err)
}

func (e *ConfigError) Unwrap() []error {
	return []error{ErrConfig, e.Err}
}
