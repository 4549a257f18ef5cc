package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies an engine error for callers deciding whether to retry
type ErrorKind string

const (
	KindValidation     ErrorKind = "validation"
	KindConflict       ErrorKind = "conflict"
	KindReconciliation ErrorKind = "reconciliation"
	KindTransient      ErrorKind = "transient"
	KindNotFound       ErrorKind = "not_found"
	KindForbidden      ErrorKind = "forbidden"
)

// Kind sentinels. Every *Error unwraps to exactly one of them.
var (
	ErrValidation        = errors.New("validation error")
	ErrConflict          = errors.New("conflict")
	ErrReconciliation    = errors.New("reconciliation error")
	ErrExternalTransient = errors.New("external service unavailable")
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
)

// Reason sentinels
var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrInvalidSlot           = errors.New("time is not an allowed slot")
	ErrPastTime              = errors.New("time is in the past")
	ErrRescheduleTooLate     = errors.New("reschedule notice is too short")
	ErrInvalidTiming         = errors.New("invalid timing")
	ErrSlotTaken             = errors.New("slot already taken")
	ErrInvalidTransition     = errors.New("transition not allowed from current status")
	ErrAlreadyInProgress     = errors.New("professional already has a booking in progress")
	ErrAlreadyEvaluated      = errors.New("booking already evaluated")
	ErrBookingBusy           = errors.New("another operation on this booking is in flight")
	ErrGuardUnavailable      = errors.New("in-flight guard unavailable")
	ErrNoProfessional        = errors.New("no professional available")
	ErrBookingNotFound       = errors.New("booking not found")
	ErrProfessionalNotFound  = errors.New("professional not found")
	ErrUnknownToken          = errors.New("unknown payment token")
	ErrIntentDiscarded       = errors.New("payment intent discarded")
	ErrMalformedConfirmation = errors.New("malformed payment confirmation")
	ErrPaymentFailed         = errors.New("payment failed")
	ErrGatewayUnavailable    = errors.New("payment gateway unavailable")
	ErrDirectoryUnavailable  = errors.New("directory service unavailable")
	ErrAccessDenied          = errors.New("access denied")
)

// Error is the typed error returned by every engine operation.
// BookingID and Status describe the conflicting current state when known.
type Error struct {
	Kind      ErrorKind
	Op        string
	Reason    error
	BookingID int64
	Status    BookingStatus
	Detail    string
	Err       error
}

func (e *Error) Error() string {
	var sb strings.Builder
	if e.Op != "" {
		sb.WriteString(e.Op)
		sb.WriteString(": ")
	}
	if e.Reason != nil {
		sb.WriteString(e.Reason.Error())
	} else {
		sb.WriteString(e.Kind.sentinel().Error())
	}
	if e.BookingID != 0 {
		fmt.Fprintf(&sb, " (booking=%d", e.BookingID)
		if e.Status != "" {
			fmt.Fprintf(&sb, ", status=%s", e.Status)
		}
		sb.WriteString(")")
	} else if e.Status != "" {
		fmt.Fprintf(&sb, " (status=%s)", e.Status)
	}
	if e.Detail != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Detail)
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *Error) Unwrap() []error {
	errs := []error{e.Kind.sentinel()}
	if e.Reason != nil {
		errs = append(errs, e.Reason)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindValidation:
		return ErrValidation
	case KindConflict:
		return ErrConflict
	case KindReconciliation:
		return ErrReconciliation
	case KindTransient:
		return ErrExternalTransient
	case KindForbidden:
		return ErrForbidden
	default:
		return ErrNotFound
	}
}

// NewValidationError rejects malformed input before any state is touched
func NewValidationError(op string, reason error, detail string) *Error {
	return &Error{Kind: KindValidation, Op: op, Reason: reason, Detail: detail}
}

// NewConflictError reports a violated precondition together with the conflicting state
func NewConflictError(op string, reason error, bookingID int64, status BookingStatus) *Error {
	return &Error{Kind: KindConflict, Op: op, Reason: reason, BookingID: bookingID, Status: status}
}

// NewNotFoundError reports a missing booking or professional
func NewNotFoundError(op string, reason error, detail string) *Error {
	return &Error{Kind: KindNotFound, Op: op, Reason: reason, Detail: detail}
}

// NewForbiddenError rejects a caller who is not a party of the booking with the required role
func NewForbiddenError(op string, reason error, bookingID, userID int64) *Error {
	return &Error{Kind: KindForbidden, Op: op, Reason: reason, BookingID: bookingID, Detail: fmt.Sprintf("user=%d", userID)}
}

// NewReconciliationError rejects a payment confirmation that cannot be bound to an intent
func NewReconciliationError(op string, reason error, detail string) *Error {
	return &Error{Kind: KindReconciliation, Op: op, Reason: reason, Detail: detail}
}

// NewTransientError wraps a failure of an external dependency; the only retryable kind
func NewTransientError(op string, reason error, err error) *Error {
	return &Error{Kind: KindTransient, Op: op, Reason: reason, Err: err}
}

// AsError extracts the typed engine error from err
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the kind of err, or an empty kind for untyped errors
func KindOf(err error) ErrorKind {
	if e, ok := AsError(err); ok {
		return e.Kind
	}
	return ""
}
