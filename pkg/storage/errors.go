package storage

import (
	"errors"
	"fmt"
)

// Error codes classifying backend failures.
const (
	CodeInvalidRequest   = "invalid_request"
	CodePermissionDenied = "permission_denied"
	CodeNotFound         = "not_found"
	CodeConflict         = "conflict"
	CodeConnection       = "connection_error"
	CodeTimeout          = "timeout"
	CodeInternal         = "internal_error"
)

// Error is a classified backend failure.
type Error struct {
	Code    string `json:"code"`
	Op      string `json:"op"`
	Path    string `json:"path"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("storage: %s %s: %s", e.Op, e.Path, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("storage: %s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("storage: %s %s: %s", e.Op, e.Path, e.Code)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether the failure is transient.
func (e *Error) Retryable() bool {
	return e.Code == CodeConnection || e.Code == CodeTimeout
}

// NewError creates a classified storage error.
func NewError(code, op, path string, err error) *Error {
	return &Error{Code: code, Op: op, Path: path, Err: err}
}

// IsNotFound reports whether err is a storage error with CodeNotFound.
func IsNotFound(err error) bool { return hasCode(err, CodeNotFound) }

// IsConflict reports whether err is a storage error with CodeConflict.
func IsConflict(err error) bool { return hasCode(err, CodeConflict) }

// IsRetryable reports whether err is a transient storage error.
func IsRetryable(err error) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Retryable()
	}
	return false
}

func hasCode(err error, code string) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}
