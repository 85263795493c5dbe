package bas

import (
	"errors"
	"fmt"
)

// ErrMalformedSourceData is returned when the top-level input to an adapter is
// not shaped like the source at all. It is distinct from legitimately empty
// data, which normalizes to a zero summary without error.
var ErrMalformedSourceData = errors.New("malformed source data")

// NormalizationError wraps errors with the adapter operation that failed.
type NormalizationError struct {
	// Op is the operation that failed (e.g. "NormalizeXeroBAS", "DecodeMYOBTransactions").
	Op string

	// Source is the platform the data came from.
	Source Source

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *NormalizationError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("bas: %s (%s) failed: %s: %v", e.Op, e.Source, e.Details, e.Err)
	}
	return fmt.Sprintf("bas: %s (%s) failed: %v", e.Op, e.Source, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *NormalizationError) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling.
func (e *NormalizationError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewNormalizationError creates a new NormalizationError.
func NewNormalizationError(op string, source Source, err error, details string) *NormalizationError {
	return &NormalizationError{
		Op:      op,
		Source:  source,
		Err:     err,
		Details: details,
	}
}

// WrapNormalizationError wraps an error as a NormalizationError if it isn't already one.
func WrapNormalizationError(op string, source Source, err error, details string) error {
	if err == nil {
		return nil
	}

	var normErr *NormalizationError
	if errors.As(err, &normErr) {
		return err
	}

	return NewNormalizationError(op, source, err, details)
}

func malformed(op string, source Source, details string) error {
	return NewNormalizationError(op, source, ErrMalformedSourceData, details)
}
