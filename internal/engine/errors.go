package engine

import (
	"errors"
	"fmt"
)

var (
	ErrConfiguration     = errors.New("invalid backtest configuration")
	ErrPriceData         = errors.New("price data unavailable")
	ErrInvariantViolated = errors.New("portfolio invariant violated")
)

// ConfigurationError is returned before any simulation state exists.
type ConfigurationError struct {
	Field  string
	Reason string
	Err    error
}

func newConfigError(field, reason string, err error) *ConfigurationError {
	return &ConfigurationError{Field: field, Reason: reason, Err: err}
}

func (e *ConfigurationError) Error() string {
	msg := fmt.Sprintf("configuration: %s: %s", e.Field, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}
