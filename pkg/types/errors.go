package types

import (
	"errors"
	"fmt"
)

// ConfigurationError is returned when the list setup is used in the wrong order,
// like registering the reserved parameter names twice.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string {
	return e.Msg
}

// ValidationError is returned for malformed input at setup time.
type ValidationError struct {
	Msg string
	Err error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// HistoryError wraps a failure of the session history mechanism. It is never fatal.
type HistoryError struct {
	Op  string
	URL string
	Err error
}

func (e *HistoryError) Error() string {
	return fmt.Sprintf("history %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *HistoryError) Unwrap() error {
	return e.Err
}

var ErrQuotaExceeded = errors.New("history state quota exceeded")

func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
