package services

import "fmt"

// Error kinds. Controllers map these to HTTP status codes, so every failure
// leaving the engine carries a kind plus the offending field or quantity.
const (
	KindValidation             = "ValidationError"
	KindInvalidQuantity        = "InvalidQuantity"
	KindInsufficientStock      = "InsufficientStock"
	KindInvalidStateTransition = "InvalidStateTransition"
	KindConcurrencyConflict    = "ConcurrencyConflict"
	KindNotFound               = "NotFound"
	KindPartialFailure         = "PartialFailure"
	KindMissingReason          = "MissingReason"
)

// Error is the structured failure type for all engine operations.
type Error struct {
	Kind    string `json:"kind"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches on kind so callers can use errors.Is against the sentinels below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinels for errors.Is checks.
var (
	ErrValidation             = &Error{Kind: KindValidation}
	ErrInvalidQuantity        = &Error{Kind: KindInvalidQuantity}
	ErrInsufficientStock      = &Error{Kind: KindInsufficientStock}
	ErrInvalidStateTransition = &Error{Kind: KindInvalidStateTransition}
	ErrConcurrencyConflict    = &Error{Kind: KindConcurrencyConflict}
	ErrNotFound               = &Error{Kind: KindNotFound}
	ErrPartialFailure         = &Error{Kind: KindPartialFailure}
	ErrMissingReason          = &Error{Kind: KindMissingReason}
)

func newError(kind, field, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Field: field, Message: fmt.Sprintf(format, args...)}
}

func validationError(field, format string, args ...interface{}) *Error {
	return newError(KindValidation, field, format, args...)
}

func notFoundError(field, format string, args ...interface{}) *Error {
	return newError(KindNotFound, field, format, args...)
}
