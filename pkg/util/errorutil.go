package util

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

// NewNotFound reports a missing entity. Reactive handlers treat it as a
// silent no-op; direct commands surface it to the caller.
func NewNotFound(resource string) error {
	return NewDomainError("NOT_FOUND", fmt.Sprintf("%s not found", resource), http.StatusNotFound, nil)
}

// NewNotAuthorized reports a principal lacking the required manager or
// allow-list membership. No state change accompanies it.
func NewNotAuthorized(message string) error {
	return NewDomainError("NOT_AUTHORIZED", message, http.StatusForbidden, nil)
}

// NewInvalidState reports an operation rejected by the current entity state.
func NewInvalidState(message string) error {
	return NewDomainError("INVALID_STATE", message, http.StatusConflict, nil)
}

func NewUnauthenticated(message string) error {
	return NewDomainError("UNAUTHENTICATED", message, http.StatusUnauthorized, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, pgx.ErrNoRows) {
		if de, ok := NewNotFound("resource").(*DomainError); ok {
			return de
		}
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func hasCode(err error, code string) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr) && domainErr.Code == code
}

// IsNotFound reports whether the error is a NOT_FOUND domain error.
func IsNotFound(err error) bool {
	return hasCode(err, "NOT_FOUND") || errors.Is(err, pgx.ErrNoRows)
}

// IsNotAuthorized reports whether the error is a NOT_AUTHORIZED domain error.
func IsNotAuthorized(err error) bool {
	return hasCode(err, "NOT_AUTHORIZED")
}

// IsInvalidState reports whether the error is an INVALID_STATE domain error.
func IsInvalidState(err error) bool {
	return hasCode(err, "INVALID_STATE")
}
