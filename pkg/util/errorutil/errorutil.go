package errorutil

import (
	"errors"
	"fmt"
	"net/http"
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

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError("FORBIDDEN", message, http.StatusForbidden, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewUnknownPriority flags a ticket whose priority has no policy entry.
// Treated as a data-integrity error, never silently defaulted.
func NewUnknownPriority(priority string) error {
	return NewDomainError("UNKNOWN_PRIORITY",
		fmt.Sprintf("priority %q has no SLA policy entry", priority),
		http.StatusUnprocessableEntity,
		map[string]any{"priority": priority})
}

// NewInvalidTicket flags a malformed ticket record (missing timestamps etc).
func NewInvalidTicket(ticketID, reason string) error {
	return NewDomainError("INVALID_TICKET",
		fmt.Sprintf("ticket %s: %s", ticketID, reason),
		http.StatusUnprocessableEntity,
		map[string]any{"ticket_id": ticketID, "reason": reason})
}

// NewIllegalTransition rejects a status change with a specific reason so
// the caller can explain the refusal.
func NewIllegalTransition(reason string, details map[string]any) error {
	return NewDomainError("ILLEGAL_TRANSITION", reason, http.StatusConflict, details)
}

// NewAlreadyClosed signals an idempotent no-op close, not a hard failure.
func NewAlreadyClosed(ticketID string) error {
	return NewDomainError("ALREADY_CLOSED",
		"ticket is already closed",
		http.StatusOK,
		map[string]any{"ticket_id": ticketID})
}

// NewConfigurationError reports a fatal startup misconfiguration.
func NewConfigurationError(message string, err error) error {
	return &DomainError{
		Code:       "CONFIGURATION_ERROR",
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// IsCode reports whether err carries the given domain error code.
func IsCode(err error, code string) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// IsAlreadyClosed reports whether err is the idempotent close signal.
func IsAlreadyClosed(err error) bool {
	return IsCode(err, "ALREADY_CLOSED")
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
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}
