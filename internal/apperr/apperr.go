// Package apperr defines the application's error taxonomy.  Domain, service
// and repository code return *Error values tagged with a Kind; the HTTP layer
// owns a single translation table from Kind to status code.  This replaces
// per-type error branching in handlers with one lookup at the boundary.
package apperr

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind classifies an error for boundary translation.  New kinds should only
// be added when a client needs to distinguish the failure mode.
type Kind int

const (
	// KindInternal covers infrastructure failures (database, broker).  The
	// boundary must not leak details for this kind.
	KindInternal Kind = iota
	// KindNotFound means a referenced entity does not exist.
	KindNotFound
	// KindInvalidInput means the caller supplied malformed construction
	// arguments (negative money, non-chronological time range, blank
	// required strings, capacity <= 0).
	KindInvalidInput
	// KindBookingConflict means the requested room/time window overlaps an
	// existing blocking reservation.
	KindBookingConflict
	// KindInvalidOperation means a state-machine precondition was violated.
	KindInvalidOperation
	// KindGatewayFailure means the external payment gateway call errored or
	// timed out.  The payment has already been defensively failed when this
	// kind propagates out of payment processing.
	KindGatewayFailure
	// KindAmountMismatch means a payment's amount diverged from its
	// reservation's total.  Indicates tampering or a stale calculation; not
	// recoverable by the client.
	KindAmountMismatch
	// KindConflict covers business-rule conflicts outside booking overlap,
	// such as creating a second payment for a reservation.
	KindConflict
	// KindForbidden means the caller is authenticated but does not own the
	// resource.
	KindForbidden
	// KindUnauthorized means the caller is not authenticated.
	KindUnauthorized
)

// Error is the structured error carried across layers.  Fields beyond Kind
// and message are populated only where they are meaningful (Entity for
// not-found, Op/Current/Required for state violations, ConflictID for
// booking conflicts).
type Error struct {
	Kind       Kind
	Entity     string
	Op         string
	Current    string
	Required   string
	ConflictID uuid.UUID
	msg        string
	err        error
}

func (e *Error) Error() string {
	if e.err != nil {
		return e.msg + ": " + e.err.Error()
	}
	return e.msg
}

func (e *Error) Unwrap() error { return e.err }

// KindOf extracts the Kind from any error in err's chain.  Unclassified
// errors report KindInternal so infrastructure failures stay opaque.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// NotFound reports that the named entity with the given id is absent.
func NotFound(entity string, id uuid.UUID) *Error {
	return &Error{
		Kind:   KindNotFound,
		Entity: entity,
		msg:    fmt.Sprintf("%s with ID %q was not found", entity, id),
	}
}

// InvalidInput reports malformed construction arguments.
func InvalidInput(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidInput, msg: fmt.Sprintf(format, args...)}
}

// BookingConflict reports an overlapping reservation for roomID over
// [start, end).  conflictID may be uuid.Nil when the conflicting reservation
// cannot be determined.
func BookingConflict(roomID uuid.UUID, start, end time.Time, conflictID uuid.UUID) *Error {
	return &Error{
		Kind:       KindBookingConflict,
		ConflictID: conflictID,
		msg: fmt.Sprintf("room %s is already booked between %s and %s",
			roomID, start.UTC().Format(time.RFC3339), end.UTC().Format(time.RFC3339)),
	}
}

// InvalidOperation reports a state-machine precondition violation.  The
// message names the operation, the current status and the required status so
// the boundary can surface an actionable client error.
func InvalidOperation(op, current, required string) *Error {
	return &Error{
		Kind:     KindInvalidOperation,
		Op:       op,
		Current:  current,
		Required: required,
		msg:      fmt.Sprintf("cannot %s: status is %s, requires %s", op, current, required),
	}
}

// GatewayFailure wraps an external payment gateway error.
func GatewayFailure(op string, err error) *Error {
	return &Error{Kind: KindGatewayFailure, Op: op, msg: "payment gateway " + op + " failed", err: err}
}

// AmountMismatch reports a payment whose amount no longer equals its
// reservation's total.
func AmountMismatch(paymentID uuid.UUID, paymentCents, reservationCents int64) *Error {
	return &Error{
		Kind: KindAmountMismatch,
		msg: fmt.Sprintf("payment %s amount %d does not match reservation total %d",
			paymentID, paymentCents, reservationCents),
	}
}

// Conflict reports a business-rule conflict identified by rule.
func Conflict(rule, format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Op: rule, msg: fmt.Sprintf(format, args...)}
}

// Forbidden reports an ownership violation.
func Forbidden(format string, args ...any) *Error {
	return &Error{Kind: KindForbidden, msg: fmt.Sprintf(format, args...)}
}

// Internal wraps an infrastructure error so callers can still classify it.
func Internal(op string, err error) *Error {
	return &Error{Kind: KindInternal, Op: op, msg: op + " failed", err: err}
}
