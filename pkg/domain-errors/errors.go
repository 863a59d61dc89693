// Package domainerrors is the typed failure taxonomy shared by every service.
//
// Services return *Error values only; the HTTP boundary maps Code to a status
// code one-to-one (see pkg/platform/httputil). Stores never build these
// directly: they return pkg/platform/sentinel errors that services translate.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a failure. Several codes collapse to the same transport
// status; they stay distinct so logs and tests can tell them apart.
type Code string

const (
	CodeBadRequest         Code = "bad_request"
	CodeValidation         Code = "validation_error"
	CodeInvalidInput       Code = "invalid_input"
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeInvariantViolation Code = "invariant_violation"
	CodeTooManyRequests    Code = "too_many_requests"
	CodeTimeout            Code = "timeout"
	CodeUnavailable        Code = "unavailable"
	CodeInternal           Code = "internal_error"
)

// Reason narrows a Conflict so callers can distinguish a full event from a
// duplicate registration without parsing messages.
type Reason string

const (
	ReasonDuplicate       Reason = "duplicate"
	ReasonFull            Reason = "full"
	ReasonNotRegistered   Reason = "not-registered"
	ReasonWorkloadCap     Reason = "workload-cap"
	ReasonConcurrentWrite Reason = "concurrent-write"
	ReasonInvalidState    Reason = "invalid-state"
)

// Error is a domain failure with a stable code and a client-safe message.
type Error struct {
	Code    Code
	Message string
	Reason  Reason
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// WithReason sets the reason on e and returns it.
func (e *Error) WithReason(r Reason) *Error {
	e.Reason = r
	return e
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an Error without an underlying cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying cause.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// Conflict creates a CodeConflict error carrying a reason.
func Conflict(reason Reason, message string) *Error {
	return &Error{Code: CodeConflict, Message: message, Reason: reason}
}

// As extracts the outermost *Error in the chain.
func As(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// HasCode reports whether any *Error in the chain carries code.
func HasCode(err error, code Code) bool {
	for err != nil {
		var de *Error
		if !errors.As(err, &de) {
			return false
		}
		if de.Code == code {
			return true
		}
		err = de.Err
	}
	return false
}

// ReasonOf returns the conflict reason of the outermost *Error, if any.
func ReasonOf(err error) Reason {
	if de, ok := As(err); ok {
		return de.Reason
	}
	return ""
}

// Is is errors.Is, re-exported so callers need a single import.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// IsBadRequest groups the input-validation family.
func (c Code) IsBadRequest() bool {
	switch c {
	case CodeBadRequest, CodeValidation, CodeInvalidInput:
		return true
	}
	return false
}
