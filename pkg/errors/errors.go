package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors. Missing referenced entities surface as 400 with the
// exact legacy messages the web client matches on, not as 404.
var (
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "Validation fails")
	ErrStudentNotFound    = New("STUDENT_NOT_FOUND", http.StatusBadRequest, "Student not exists")
	ErrPlanNotFound       = New("PLAN_NOT_FOUND", http.StatusBadRequest, "Plan not exists")
	ErrEnrollmentNotFound = New("ENROLLMENT_NOT_FOUND", http.StatusBadRequest, "Enrollment not exists")
	ErrHelpOrderNotFound  = New("HELP_ORDER_NOT_FOUND", http.StatusBadRequest, "Help-Orders not found")
	ErrUserNotFound       = New("USER_NOT_FOUND", http.StatusBadRequest, "User not exists")
	ErrDuplicatedEmail    = New("DUPLICATED_EMAIL", http.StatusBadRequest, "Email already in use")
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "invalid email or password")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrCacheMiss          = New("CACHE_MISS", http.StatusNotFound, "cache miss")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
