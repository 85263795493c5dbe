package snapshot

import (
	"errors"
	"fmt"

	"compliance/internal/bas"
)

// ErrPeriodUnreadable is matched by every sync failure. Its text is what a
// bookkeeper is shown instead of a zeroed summary.
var ErrPeriodUnreadable = errors.New("unable to read data for this period")

// ErrInvalidConnectionID is returned by FileSource for ids that are not a
// plain file name.
var ErrInvalidConnectionID = errors.New("invalid connection id")

var errNotConnected = errors.New("platform is not connected")

// SyncError describes a failed sync for one connection and period.
type SyncError struct {
	Op           string
	Source       bas.Source
	ConnectionID string
	Period       string
	Err          error
}

func (e *SyncError) Error() string {
	msg := fmt.Sprintf("snapshot: %s %s", ErrPeriodUnreadable, e.Source.DisplayName())
	if e.ConnectionID != "" {
		msg += " " + e.ConnectionID
	}
	if e.Period != "" {
		msg += " (" + e.Period + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

func (e *SyncError) Is(target error) bool {
	return target == ErrPeriodUnreadable
}
