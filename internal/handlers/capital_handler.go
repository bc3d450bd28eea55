package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"capital-tracker/internal/middleware"
	"capital-tracker/internal/models"
)

// CapitalStore is what the capital handler needs from the capital service.
type CapitalStore interface {
	Get(uid string) (*models.Capital, error)
	TopUp(uid string, req *models.TopUpRequest) (*models.TopUpResult, error)
	Reset(uid, confirm string) (*models.ResetResult, error)
}

type CapitalHandler struct {
	service CapitalStore
	logger  zerolog.Logger
}

func NewCapitalHandler(service CapitalStore, logger zerolog.Logger) *CapitalHandler {
	return &CapitalHandler{
		service: service,
		logger:  logger,
	}
}

func (h *CapitalHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.GetUID(r)
	if !ok {
		writeErrorCode(w, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated")
		return
	}

	capital, err := h.service.Get(uid)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	view := models.CapitalView{Exists: capital != nil}
	if capital != nil {
		view.Amount = &capital.Amount
		view.Periodicity = &capital.Periodicity
		view.UpdatedAt = &capital.UpdatedAt
	}

	writeJSON(w, http.StatusOK, view)
}

// TopUp answers 201 when the capital record was created on this call and
// 200 when an existing one was incremented.
func (h *CapitalHandler) TopUp(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.GetUID(r)
	if !ok {
		writeErrorCode(w, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated")
		return
	}

	var req models.TopUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorCode(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body")
		return
	}
	if verr := req.Validate(); verr != nil {
		writeValidationError(w, verr)
		return
	}

	result, err := h.service.TopUp(uid, &req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	status := http.StatusOK
	if result.Meta.Created {
		status = http.StatusCreated
	}
	writeJSON(w, status, result)
}

func (h *CapitalHandler) Reset(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.GetUID(r)
	if !ok {
		writeErrorCode(w, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated")
		return
	}

	var req models.ResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorCode(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body")
		return
	}

	result, err := h.service.Reset(uid, req.Confirm)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
