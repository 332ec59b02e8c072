package library

import "fmt"

// Code is a machine-readable error code.
type Code string

const (
	CodeValidation      Code = "VALIDATION"
	CodeAuthentication  Code = "AUTHENTICATION"
	CodeNotFound        Code = "NOT_FOUND"
	CodeAlreadyReturned Code = "ALREADY_RETURNED"
)

// Error is the domain error type. Callers match on kind with errors.Is
// against the sentinels below.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string { return e.Message }

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

var (
	ErrValidation      = &Error{Code: CodeValidation, Message: "validation failed"}
	ErrAuthentication  = &Error{Code: CodeAuthentication, Message: "authentication failed"}
	ErrNotFound        = &Error{Code: CodeNotFound, Message: "not found"}
	ErrAlreadyReturned = &Error{Code: CodeAlreadyReturned, Message: "loan already returned"}
)

func validationf(format string, args ...any) error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

func notFoundf(format string, args ...any) error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}
