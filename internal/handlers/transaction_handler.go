package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"capital-tracker/internal/middleware"
	"capital-tracker/internal/models"
)

// LedgerService is what the transaction handler needs from the coordinator.
type LedgerService interface {
	Create(uid string, req *models.CreateTransactionRequest) (*models.Transaction, error)
	Patch(uid, id string, req *models.PatchTransactionRequest) (*models.Transaction, error)
	Delete(uid, id string) (*models.DeleteResult, error)
	GetByID(uid, id string) (*models.Transaction, error)
	List(uid string, params models.ListParams) (*models.ListResult, error)
}

type TransactionHandler struct {
	service LedgerService
	logger  zerolog.Logger
}

func NewTransactionHandler(service LedgerService, logger zerolog.Logger) *TransactionHandler {
	return &TransactionHandler{
		service: service,
		logger:  logger,
	}
}

func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.GetUID(r)
	if !ok {
		writeErrorCode(w, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated")
		return
	}

	var req models.CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorCode(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body")
		return
	}
	if verr := req.Validate(); verr != nil {
		writeValidationError(w, verr)
		return
	}

	transaction, err := h.service.Create(uid, &req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, transaction)
}

func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.GetUID(r)
	if !ok {
		writeErrorCode(w, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated")
		return
	}

	query := r.URL.Query()
	params := models.ListParams{
		Type:     query.Get("type"),
		Category: query.Get("category"),
		From:     query.Get("from"),
		To:       query.Get("to"),
		Cursor:   query.Get("cursor"),
	}
	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			params.Limit = limit
		}
	}
	if verr := params.Validate(); verr != nil {
		writeValidationError(w, verr)
		return
	}

	result, err := h.service.List(uid, params)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.GetUID(r)
	if !ok {
		writeErrorCode(w, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated")
		return
	}

	transaction, err := h.service.GetByID(uid, mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, transaction)
}

func (h *TransactionHandler) Patch(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.GetUID(r)
	if !ok {
		writeErrorCode(w, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated")
		return
	}

	var req models.PatchTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorCode(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body")
		return
	}
	if verr := req.Validate(); verr != nil {
		writeValidationError(w, verr)
		return
	}

	transaction, err := h.service.Patch(uid, mux.Vars(r)["id"], &req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, transaction)
}

func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.GetUID(r)
	if !ok {
		writeErrorCode(w, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated")
		return
	}

	result, err := h.service.Delete(uid, mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
