package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for the domain. Handlers translate these into the uniform
// response envelope; services return them (possibly wrapped) so callers can
// test with errors.Is.
var (
	ErrValidation            = errors.New("validation failed")
	ErrAuthentication        = errors.New("authentication failed")
	ErrPermissionDenied      = errors.New("permission denied")
	ErrNotFound              = errors.New("resource not found")
	ErrAlreadyDeleted        = errors.New("record is already deleted")
	ErrAlreadyActive         = errors.New("record is already active")
	ErrReferentialBlock      = errors.New("record is referenced by active dependents")
	ErrCooldownActive        = errors.New("a code was issued recently, try again later")
	ErrInvalidToken          = errors.New("invalid token")
	ErrInvalidOrExpired      = errors.New("invalid or expired token")
	ErrSelfActionForbidden   = errors.New("admins cannot delete their own account")
	ErrUnknownReference      = errors.New("referenced record does not exist")
	ErrAccountDisabled       = errors.New("account is disabled")
	ErrEmailUnverified       = errors.New("email address is not verified")
	ErrAccountDeletedByAdmin = errors.New("account was deleted by an administrator")
	ErrConflict              = errors.New("record already exists")
)

// Validation builds a field-level validation error that still matches
// ErrValidation under errors.Is.
func Validation(field, msg string) error {
	return &FieldError{Field: field, Msg: msg}
}

type FieldError struct {
	Field string
	Msg   string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

func (e *FieldError) Unwrap() error { return ErrValidation }

// ReferentialBlockCount carries the number of active dependents that block a
// deactivation.
func ReferentialBlockCount(kind string, count int64) error {
	return fmt.Errorf("%w: %d active %s(s) reference this record", ErrReferentialBlock, count, kind)
}

// Status maps a domain error to its HTTP status code.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAuthentication), errors.Is(err, ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, ErrCooldownActive):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrAlreadyDeleted),
		errors.Is(err, ErrAlreadyActive),
		errors.Is(err, ErrReferentialBlock),
		errors.Is(err, ErrInvalidOrExpired),
		errors.Is(err, ErrSelfActionForbidden),
		errors.Is(err, ErrUnknownReference),
		errors.Is(err, ErrAccountDisabled),
		errors.Is(err, ErrEmailUnverified),
		errors.Is(err, ErrAccountDeletedByAdmin),
		errors.Is(err, ErrConflict):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Message returns the top-level message for the error envelope. Internal
// errors get a generic message so details never leak to clients.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "Validation failed"
	case errors.Is(err, ErrAuthentication):
		return "Authentication failed"
	case errors.Is(err, ErrPermissionDenied):
		return "Permission denied"
	case errors.Is(err, ErrNotFound):
		return "Resource not found"
	case Status(err) == http.StatusInternalServerError:
		return "Internal server error"
	}
	return err.Error()
}
