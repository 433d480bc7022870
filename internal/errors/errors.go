package errors

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

const (
	ErrCodeNotFound      = "not_found"
	ErrCodeAlreadyExists = "already_exists"
	ErrCodeValidation    = "validation_error"
	ErrCodeRateLimited   = "rate_limited"
	ErrCodeDatabase      = "database_error"
	ErrCodeStorage       = "storage_error"
	ErrCodeSystemError   = "system_error"
)

// Sentinels every error leaving a package is marked with
var (
	ErrNotFound      = new(ErrCodeNotFound, "resource not found")
	ErrAlreadyExists = new(ErrCodeAlreadyExists, "resource already exists")
	ErrValidation    = new(ErrCodeValidation, "validation error")
	ErrRateLimited   = new(ErrCodeRateLimited, "rate limited")
	ErrDatabase      = new(ErrCodeDatabase, "database error")
	ErrStorage       = new(ErrCodeStorage, "object storage error")
	ErrSystem        = new(ErrCodeSystemError, "system error")
)

// statusCodes is checked in order, the first matching sentinel wins
var statusCodes = []struct {
	err    error
	status int
}{
	{ErrNotFound, http.StatusNotFound},
	{ErrAlreadyExists, http.StatusConflict},
	{ErrValidation, http.StatusBadRequest},
	{ErrRateLimited, http.StatusTooManyRequests},
	{ErrDatabase, http.StatusInternalServerError},
	{ErrStorage, http.StatusInternalServerError},
	{ErrSystem, http.StatusInternalServerError},
}

// InternalError is a sentinel identified by its code
type InternalError struct {
	Code    string
	Message string
	Err     error
}

func (e *InternalError) Error() string {
	if e.Err == nil {
		return e.DisplayError()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Err.Error())
}

func (e *InternalError) DisplayError() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

func (e *InternalError) Is(target error) bool {
	if target == nil {
		return false
	}

	t, ok := target.(*InternalError)
	if !ok {
		return errors.Is(e.Err, target)
	}

	return e.Code == t.Code
}

func new(code string, message string) *InternalError {
	return &InternalError{
		Code:    code,
		Message: message,
	}
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsSystem reports unexpected failures such as a recovered engine panic
func IsSystem(err error) bool {
	return errors.Is(err, ErrSystem)
}

// HTTPStatusFromErr maps a marked error to its response status. Unmarked errors are 500.
func HTTPStatusFromErr(err error) int {
	for _, sc := range statusCodes {
		if errors.Is(err, sc.err) {
			return sc.status
		}
	}
	return http.StatusInternalServerError
}
