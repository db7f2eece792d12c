package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure modes callers branch on. Everything else is
// wrapped context around one of these.
var (
	// ErrInsufficientData indicates a calculation was asked to run on fewer
	// observations than its minimum.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrMissingColumn indicates a required panel column is absent.
	ErrMissingColumn = errors.New("missing column")

	// ErrLookaheadViolation indicates a configuration that would let a signal
	// explain a return dated at or before the signal observation.
	ErrLookaheadViolation = errors.New("lookahead violation")

	// ErrNotConverged indicates a numerical routine failed to converge.
	ErrNotConverged = errors.New("optimization did not converge")

	// ErrInvalidConfig indicates configuration failed validation.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// DataError carries the operation and subject of a data-quality failure so
// batch runs can report which symbol or column was at fault.
type DataError struct {
	Op      string // operation being performed, e.g. "compute breakpoints"
	Subject string // symbol, column, or file the error relates to
	Err     error
}

// Error implements the error interface.
func (e *DataError) Error() string {
	if e.Subject != "" {
		return fmt.Sprintf("%s (%s): %v", e.Op, e.Subject, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap exposes the underlying error for errors.Is/As.
func (e *DataError) Unwrap() error {
	return e.Err
}

// NewDataError wraps err with operation and subject context.
func NewDataError(op, subject string, err error) *DataError {
	return &DataError{Op: op, Subject: subject, Err: err}
}

// IsInsufficientData reports whether err wraps ErrInsufficientData.
func IsInsufficientData(err error) bool {
	return errors.Is(err, ErrInsufficientData)
}
