package llm

import (
	"errors"
	"fmt"
)

// Error types for classifying gateway errors.

// TransientError represents a temporary error that may succeed on retry.
type TransientError struct {
	err error
}

func (e *TransientError) Error() string {
	return e.err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.err
}

// NewTransientError wraps an error as transient (retryable).
func NewTransientError(err error) error {
	return &TransientError{err: err}
}

// FatalError represents a permanent error that should not be retried.
type FatalError struct {
	err error
}

func (e *FatalError) Error() string {
	return e.err.Error()
}

func (e *FatalError) Unwrap() error {
	return e.err
}

// NewFatalError wraps an error as fatal (non-retryable).
func NewFatalError(err error) error {
	return &FatalError{err: err}
}

// ConfigError reports missing or invalid gateway configuration, detected
// before any call is attempted. Never retried.
type ConfigError struct {
	// Env is the missing credential's environment variable, if that is
	// what failed.
	Env string

	// Detail describes any other configuration problem.
	Detail string
}

func (e *ConfigError) Error() string {
	if e.Env != "" {
		return fmt.Sprintf("missing required credential: %s is not set", e.Env)
	}
	return e.Detail
}

// IsTransient returns true if the error is transient and should be retried.
func IsTransient(err error) bool {
	var transient *TransientError
	return errors.As(err, &transient)
}

// IsFatal returns true if the error is fatal and should not be retried.
func IsFatal(err error) bool {
	var fatal *FatalError
	return errors.As(err, &fatal)
}

// IsConfig returns true if the error is a configuration error.
func IsConfig(err error) bool {
	var cfg *ConfigError
	return errors.As(err, &cfg)
}
