package domain

import (
	"strings"

	"github.com/cockroachdb/errors"
)

var (
	ErrNotFound               = errors.New("not found")
	ErrConflict               = errors.New("conflict")
	ErrInvalidInput           = errors.New("invalid input")
	ErrNetwork                = errors.New("network error")
	ErrStale                  = errors.New("stale result")
	ErrSelectionLimitExceeded = errors.New("seat selection limit exceeded")
	ErrShowtimeUnavailable    = errors.New("showtime unavailable")
	ErrShowtimeNotInTheatre   = errors.New("showtime does not belong to the selected theatre")
	ErrEmptySelection         = errors.New("please select at least one seat")
	ErrInvalidSession         = errors.New("invalid booking session")
	ErrSessionNotFound        = errors.New("booking session not found")
	ErrAlreadyConfirmed       = errors.New("booking already confirmed")
	ErrBookingFailed          = errors.New("booking failed")
	ErrBookingTimeout         = errors.New("booking timed out")
)

// ValidationError lists required customer fields that were left empty.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Missing, ", ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NetworkError is a failed call to a remote collaborator. It matches
// ErrNetwork and still unwraps to the transport cause.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

func (e *NetworkError) Is(target error) bool {
	return target == ErrNetwork
}

// BookingError is a failed confirmation. It matches ErrBookingTimeout when
// the booking service did not answer in time, ErrBookingFailed otherwise.
type BookingError struct {
	Timeout bool
	Err     error
}

func (e *BookingError) Error() string {
	return "confirm booking: " + e.Err.Error()
}

func (e *BookingError) Unwrap() error {
	return e.Err
}

func (e *BookingError) Is(target error) bool {
	if e.Timeout {
		return target == ErrBookingTimeout
	}
	return target == ErrBookingFailed
}
