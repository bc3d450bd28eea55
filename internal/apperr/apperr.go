// Package apperr defines the typed failures the service layer raises and
// the stable machine-readable codes the HTTP boundary maps them to.
package apperr

import "net/http"

// Error is a domain failure carrying an HTTP status hint. Handlers map it
// with errors.As; anything else surfaces as a generic INTERNAL 500 so raw
// store error text never reaches a response body.
type Error struct {
	Code    string
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func CapitalNotConfigured() *Error {
	return &Error{
		Code:    "CAPITAL_NOT_CONFIGURED",
		Status:  http.StatusConflict,
		Message: "Configure your capital at /api/settings/capital before working with transactions.",
	}
}

func NotFound(message string) *Error {
	return &Error{Code: "NOT_FOUND", Status: http.StatusNotFound, Message: message}
}

func InvalidDate() *Error {
	return &Error{
		Code:    "INVALID_DATE",
		Status:  http.StatusUnprocessableEntity,
		Message: "date must be ISO-8601",
	}
}

func BadCursor() *Error {
	return &Error{Code: "BAD_CURSOR", Status: http.StatusBadRequest, Message: "cursor is malformed"}
}

func PeriodicityRequired() *Error {
	return &Error{
		Code:    "PERIODICITY_REQUIRED_ON_CREATE",
		Status:  http.StatusUnprocessableEntity,
		Message: "When creating capital for the first time you must send 'periodicity' (monthly|biweekly|weekly).",
	}
}

func ConfirmationRequired() *Error {
	return &Error{
		Code:    "CONFIRMATION_REQUIRED",
		Status:  http.StatusUnprocessableEntity,
		Message: `Send { "confirm": "DELETE" } in body`,
	}
}

// FieldError is a single per-field validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates field failures for a 422 response.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	return "validation failed: " + e.Fields[0].Field + " " + e.Fields[0].Message
}
