package config

import "errors"

// Common errors returned by the config package.
var (
	// ErrInvalidValue is returned when a configuration value is out of range
	// or not one of the allowed choices.
	ErrInvalidValue = errors.New("invalid configuration value")
	// ErrMissingValue is returned when a required configuration value is absent.
	ErrMissingValue = errors.New("missing configuration value")
)
