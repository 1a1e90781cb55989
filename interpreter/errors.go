package interpreter

import "errors"

// ConfigurationMissingError reports an absent gateway credential or other
// fatal misconfiguration, detected before any external call. It is a
// system-level failure: reported with technical detail, never retried.
type ConfigurationMissingError struct {
	Err error
}

func (e *ConfigurationMissingError) Error() string {
	return "model gateway configuration missing: " + e.Err.Error()
}

func (e *ConfigurationMissingError) Unwrap() error {
	return e.Err
}

// UpstreamUnavailableError reports that the external model could not be
// reached or answered with a non-success status, after the retry policy
// was exhausted. Also a system-level failure.
type UpstreamUnavailableError struct {
	Err error
}

func (e *UpstreamUnavailableError) Error() string {
	return "model service unavailable: " + e.Err.Error()
}

func (e *UpstreamUnavailableError) Unwrap() error {
	return e.Err
}

// IsConfigurationMissing reports whether err is a configuration failure.
func IsConfigurationMissing(err error) bool {
	var cfg *ConfigurationMissingError
	return errors.As(err, &cfg)
}

// IsUpstreamUnavailable reports whether err is an upstream failure.
func IsUpstreamUnavailable(err error) bool {
	var up *UpstreamUnavailableError
	return errors.As(err, &up)
}
