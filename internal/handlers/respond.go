package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"capital-tracker/internal/apperr"
)

type errorBody struct {
	Code    string              `json:"code"`
	Message string              `json:"message,omitempty"`
	Fields  []apperr.FieldError `json:"fields,omitempty"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeErrorCode(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorEnvelope{Error: errorBody{Code: code, Message: message}})
}

func writeValidationError(w http.ResponseWriter, verr *apperr.ValidationError) {
	writeJSON(w, http.StatusUnprocessableEntity, errorEnvelope{
		Error: errorBody{Code: "VALIDATION_ERROR", Fields: verr.Fields},
	})
}

// writeServiceError maps typed domain failures to their status and code.
// Anything untyped is an internal failure; its text stays in the log.
func writeServiceError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var domainErr *apperr.Error
	if errors.As(err, &domainErr) {
		writeErrorCode(w, domainErr.Status, domainErr.Code, domainErr.Message)
		return
	}

	var verr *apperr.ValidationError
	if errors.As(err, &verr) {
		writeValidationError(w, verr)
		return
	}

	logger.Error().Err(err).Msg("Internal failure")
	writeErrorCode(w, http.StatusInternalServerError, "INTERNAL", "An internal error occurred")
}
