package handlers

import (
	"errors"
	"net/http"

	"github.com/koonliang/stocktracker/internal/api/middleware"
	"github.com/koonliang/stocktracker/internal/api/request"
	"github.com/koonliang/stocktracker/internal/api/response"
	"github.com/koonliang/stocktracker/internal/apperrors"
	"github.com/koonliang/stocktracker/internal/service"
)

// CsvImportHandler handles HTTP requests for the CSV import pipeline:
// header mapping suggestions, row-level preview, and batch execution.
type CsvImportHandler struct {
	csvImportService *service.CsvImportService
}

// NewCsvImportHandler creates a new CsvImportHandler with the provided service dependency.
func NewCsvImportHandler(csvImportService *service.CsvImportService) *CsvImportHandler {
	return &CsvImportHandler{
		csvImportService: csvImportService,
	}
}

// SuggestMappings handles POST requests to fuzzy-match CSV headers against
// the standard ledger fields.
//
// Endpoint: POST /api/transactions/import/suggest-mappings
// Request Body: CsvMappingSuggestionRequest (headers)
// Response: 200 OK with CsvMappingSuggestion
// Error: 400 Bad Request if the request body is invalid
func (h *CsvImportHandler) SuggestMappings(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CsvMappingSuggestionRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	suggestion := h.csvImportService.SuggestMappings(req.Headers)
	response.RespondJSON(w, http.StatusOK, suggestion)
}

// PreviewImport handles POST requests to validate import rows without
// writing anything, bucketing them into valid and invalid.
//
// Endpoint: POST /api/transactions/import/preview
// Request Body: CsvImportRequest (rows, fieldMappings)
// Response: 200 OK with CsvImportPreview
// Error: 400 Bad Request if the row cap is exceeded or required mappings are missing
func (h *CsvImportHandler) PreviewImport(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CsvImportRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	preview, err := h.csvImportService.PreviewImport(req)
	if err != nil {
		respondImportError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, preview)
}

// ExecuteImport handles POST requests to import validated rows. Each valid
// row is written through the manual-create pipeline; failures are reported
// per row without aborting the batch.
//
// Endpoint: POST /api/transactions/import/execute
// Request Body: CsvImportRequest (rows, fieldMappings)
// Response: 200 OK with CsvImportResult
// Error: 400 Bad Request if the row cap is exceeded or required mappings are missing
func (h *CsvImportHandler) ExecuteImport(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	req, err := parseJSON[request.CsvImportRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.csvImportService.ExecuteImport(r.Context(), userID, req)
	if err != nil {
		respondImportError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, result)
}

func respondImportError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperrors.ErrTooManyRows),
		errors.Is(err, apperrors.ErrMissingRequiredMappings):
		response.RespondError(w, http.StatusBadRequest, err.Error(), "")
	default:
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToImportTransactions.Error(), err.Error())
	}
}
