package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent error conditions in the scan pipeline.
// They can be checked with errors.Is.
var (
	// ErrEmptyValue is returned when a scan carries no credential value.
	ErrEmptyValue = errors.New("scankiosk: empty scan value")

	// ErrBusy is returned when a scan arrives while another one is being
	// validated, shown, or cooling down. The scan is dropped.
	ErrBusy = errors.New("scankiosk: arbitrator busy")

	// ErrUnknownChannel is returned for a channel outside the defined set.
	ErrUnknownChannel = errors.New("scankiosk: unknown channel")

	// ErrAlreadyRunning is returned when Start() is called on a running kiosk.
	ErrAlreadyRunning = errors.New("scankiosk: already running")

	// ErrNotRunning is returned when Stop() is called on a stopped kiosk.
	ErrNotRunning = errors.New("scankiosk: not running")

	// ErrShutdownTimeout is returned when graceful shutdown times out.
	ErrShutdownTimeout = errors.New("scankiosk: shutdown timeout")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("scankiosk: invalid configuration")

	// ErrDeviceUnavailable is returned when an input device cannot be opened.
	ErrDeviceUnavailable = errors.New("scankiosk: device unavailable")
)

// ValidationError describes why a validation call produced no usable outcome.
type ValidationError struct {
	Kind       FailureKind
	StatusCode int
	Err        error
}

func (e *ValidationError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("%s (status %d): %v", e.Kind, e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s (status %d)", e.Kind, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return string(e.Kind)
	}
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// FailureFromError converts any validation error into a history failure.
// Errors that are not a *ValidationError are classified as transport failures.
func FailureFromError(err error) *Failure {
	var ve *ValidationError
	if errors.As(err, &ve) {
		f := &Failure{Kind: ve.Kind, StatusCode: ve.StatusCode}
		if ve.Err != nil {
			f.Message = ve.Err.Error()
		} else {
			f.Message = string(ve.Kind)
		}
		return f
	}
	return &Failure{Kind: FailureTransport, Message: err.Error()}
}
