// internal/app/scheduling/errors.go
package scheduling

import (
	"errors"
	"fmt"
	"strings"
)

// Kind groups scheduling errors by how a caller should react to them.
type Kind int

const (
	// KindUnknown is reported for errors that did not come from this package.
	KindUnknown Kind = iota
	// KindValidation: the proposed range was rejected; reset the selection and retry.
	KindValidation
	// KindLookup: a referenced user, code or reservation was missing; nothing changed.
	KindLookup
	// KindPersistence: the in-memory change stands but the record store write failed.
	KindPersistence
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindLookup:
		return "lookup"
	case KindPersistence:
		return "persistence"
	default:
		return "unknown"
	}
}

// Error is a classified scheduling failure. The package exposes one value per
// condition, so callers compare with errors.Is.
type Error struct {
	Kind Kind
	Code string
	msg  string
}

func (e *Error) Error() string { return e.msg }

func newError(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, msg: msg}
}

// Validation errors.
var (
	ErrRangeTooShort = newError(KindValidation, "range_too_short", "a reservation must span at least two days")
	ErrRangeInverted = newError(KindValidation, "range_inverted", "end date is before start date")
	ErrDateInPast    = newError(KindValidation, "date_in_past", "the range includes days that have already passed")
	ErrRangeOverlap  = newError(KindValidation, "range_overlap", "the range includes days that are already reserved")
)

// Lookup errors.
var (
	ErrSecretCodeRequired   = newError(KindLookup, "secret_code_required", "a secret code is required")
	ErrUserNotFound         = newError(KindLookup, "user_not_found", "no other user has that secret code")
	ErrNoOwnReservation     = newError(KindLookup, "no_own_reservation", "you have no reservations to swap")
	ErrPeerHasNoReservation = newError(KindLookup, "peer_has_no_reservation", "the other user has no reservations to swap")
	ErrUnknownActor         = newError(KindLookup, "unknown_actor", "the acting user is not in the directory")
	ErrNotReserved          = newError(KindLookup, "not_reserved", "that day is not reserved")
	ErrNotAdmin             = newError(KindLookup, "not_admin", "only admins can view this report")
	ErrMissingIdentity      = newError(KindLookup, "missing_identity", "identity has no user id")
)

// InvertedRangeError is returned by Validate when the end of the range lies
// before its start. RestartFrom is the day the caller should anchor a new
// selection on. It matches ErrRangeInverted under errors.Is.
type InvertedRangeError struct {
	RestartFrom string
}

func (e *InvertedRangeError) Error() string {
	return ErrRangeInverted.Error() + "; restart selection from " + e.RestartFrom
}

func (e *InvertedRangeError) Unwrap() error { return ErrRangeInverted }

// OverlapError lists the already-reserved days that blocked a range. It
// matches ErrRangeOverlap under errors.Is.
type OverlapError struct {
	Days []string
}

func (e *OverlapError) Error() string {
	return ErrRangeOverlap.Error() + ": " + strings.Join(e.Days, ", ")
}

func (e *OverlapError) Unwrap() error { return ErrRangeOverlap }

// PersistenceError reports a failed record store write. The mutation that
// preceded it has already been applied in memory and is not rolled back.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// KindOf classifies err. Nil errors are KindUnknown.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return KindPersistence
	}
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindUnknown
}

// CodeOf returns the stable machine-readable code for err, or "" when err is
// not a scheduling error.
func CodeOf(err error) string {
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return "persistence_failed"
	}
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}
