package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeInvalid      ErrorCode = "INVALID"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeInternal     ErrorCode = "INTERNAL"
)

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain errors.
var (
	ErrUserNotFound       = NewError(ErrCodeNotFound, "user not found")
	ErrTenantNotFound     = NewError(ErrCodeNotFound, "application not found")
	ErrInvalidCredentials = NewError(ErrCodeUnauthorized, "your password does not match our records")
	ErrTenantMismatch     = NewError(ErrCodeUnauthorized, "you do not have access to this application")
	ErrRoleUnknown        = NewError(ErrCodeNotFound, "role is not defined for this application")
	ErrRoleNotAssigned    = NewError(ErrCodeUnauthorized, "no approved role for this account")
	ErrTicketInvalid      = NewError(ErrCodeUnauthorized, "session ticket is invalid or revoked")
	ErrDuplicateUser      = NewError(ErrCodeConflict, "a user with this email already exists")
	ErrInvalidPayload     = NewError(ErrCodeInvalid, "invalid payload")
	ErrMalformedRequest   = NewError(ErrCodeInvalid, "missing parameters")
)

// AccessWindowError is the denial produced by access-window evaluation.
// Reason distinguishes a login before the window opens from one after it
// closes; Bound carries the violated edge for the user-facing message.
type AccessWindowError struct {
	Reason WindowDecision
	Bound  time.Time
}

func (e *AccessWindowError) Error() string {
	if e.Reason == WindowTooEarly {
		return fmt.Sprintf("you are not authorized for use until %s", e.Bound.Format("January 2, 2006"))
	}
	return fmt.Sprintf("you were only authorized for use until %s", e.Bound.Format("January 2, 2006"))
}

// Code lets AccessWindowError participate in transport status mapping.
func (e *AccessWindowError) Code() ErrorCode { return ErrCodeUnauthorized }

// DownstreamError is a negative response from the GIS token endpoint, distinct
// from a local credential failure so operators can tell the two apart.
type DownstreamError struct {
	Message string
}

func (e *DownstreamError) Error() string {
	if e.Message == "" {
		return "the map server rejected the token request"
	}
	return e.Message
}

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	if code == ErrCodeUnauthorized {
		var wErr *AccessWindowError
		var tErr *DownstreamError
		if errors.As(err, &wErr) || errors.As(err, &tErr) {
			return true
		}
	}
	return false
}
