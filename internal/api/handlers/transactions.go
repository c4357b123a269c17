package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/koonliang/stocktracker/internal/api/middleware"
	"github.com/koonliang/stocktracker/internal/api/request"
	"github.com/koonliang/stocktracker/internal/api/response"
	"github.com/koonliang/stocktracker/internal/apperrors"
	"github.com/koonliang/stocktracker/internal/service"
)

// TransactionHandler handles HTTP requests for ledger endpoints.
// It serves as the HTTP layer adapter, parsing requests and delegating
// business logic to the transactionService.
type TransactionHandler struct {
	transactionService *service.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler with the provided service dependency.
func NewTransactionHandler(transactionService *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
	}
}

// AllTransactions handles GET requests to retrieve the user's full ledger,
// newest first.
//
// Endpoint: GET /api/transactions
// Response: 200 OK with array of Transaction
// Error: 500 Internal Server Error if retrieval fails
func (h *TransactionHandler) AllTransactions(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	transactions, err := h.transactionService.GetTransactions(userID)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveTransactions.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, transactions)
}

// GetTransaction handles GET requests to retrieve a single transaction by ID.
//
// Endpoint: GET /api/transactions/{uuid}
// Response: 200 OK with Transaction
// Error: 400 Bad Request if transaction ID is invalid (validated by middleware)
// Error: 404 Not Found if transaction not found
// Error: 500 Internal Server Error if retrieval fails
func (h *TransactionHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	transactionID := chi.URLParam(r, "uuid")

	transaction, err := h.transactionService.GetTransaction(userID, transactionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrTransactionNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrTransactionNotFound.Error(), "")
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveTransaction.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, transaction)
}

// CreateTransaction handles POST requests to record a new buy or sell.
// The ticker is verified against the market data provider and sells are
// checked against the sell guard before anything is written.
//
// Endpoint: POST /api/transactions
// Request Body: TransactionRequest (type, symbol, transactionDate, shares, pricePerShare, brokerFee, notes)
// Response: 201 Created with Transaction
// Error: 400 Bad Request if validation, ticker verification, or the sell guard fails
// Error: 500 Internal Server Error if the write fails
func (h *TransactionHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	req, err := parseJSON[request.TransactionRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	transaction, err := h.transactionService.CreateTransaction(r.Context(), userID, req)
	if err != nil {
		respondTransactionError(w, err, apperrors.ErrFailedToRetrieveTransaction)
		return
	}

	response.RespondJSON(w, http.StatusCreated, transaction)
}

// UpdateTransaction handles PUT requests to rewrite an existing transaction.
// The same validation and guards apply as on create; affected holdings are
// rebuilt, including the old symbol's when the symbol changes.
//
// Endpoint: PUT /api/transactions/{uuid}
// Request Body: TransactionRequest
// Response: 200 OK with the updated Transaction
// Error: 400 Bad Request if validation, ticker verification, or the sell guard fails
// Error: 404 Not Found if transaction not found
// Error: 500 Internal Server Error if the write fails
func (h *TransactionHandler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	transactionID := chi.URLParam(r, "uuid")

	req, err := parseJSON[request.TransactionRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	transaction, err := h.transactionService.UpdateTransaction(r.Context(), userID, transactionID, req)
	if err != nil {
		respondTransactionError(w, err, apperrors.ErrFailedToRetrieveTransaction)
		return
	}

	response.RespondJSON(w, http.StatusOK, transaction)
}

// DeleteTransaction handles DELETE requests to remove a transaction and
// rebuild its symbol's holding.
//
// Endpoint: DELETE /api/transactions/{uuid}
// Response: 204 No Content
// Error: 404 Not Found if transaction not found
// Error: 500 Internal Server Error if the delete fails
func (h *TransactionHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	transactionID := chi.URLParam(r, "uuid")

	if err := h.transactionService.DeleteTransaction(userID, transactionID); err != nil {
		if errors.Is(err, apperrors.ErrTransactionNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrTransactionNotFound.Error(), "")
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveTransaction.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}

// ValidateTicker handles GET requests to probe a ticker symbol against the
// market data provider without writing anything.
//
// Endpoint: GET /api/transactions/validate-ticker/{symbol}
// Response: 200 OK with TickerValidation (valid flag, company name or error message)
func (h *TransactionHandler) ValidateTicker(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	result := h.transactionService.ValidateTicker(r.Context(), symbol)
	response.RespondJSON(w, http.StatusOK, result)
}

// ExportTransactions handles GET requests to download the ledger as CSV,
// newest first.
//
// Endpoint: GET /api/transactions/export
// Response: 200 OK with text/csv attachment
// Error: 500 Internal Server Error if export fails
func (h *TransactionHandler) ExportTransactions(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	csv, err := h.transactionService.ExportCSV(userID)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToExportTransactions.Error(), err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="transactions.csv"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(csv)); err != nil {
		return
	}
}
