package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/koonliang/stocktracker/internal/apperrors"
	"github.com/koonliang/stocktracker/internal/api/response"
	"github.com/koonliang/stocktracker/internal/validation"
)

// respondJSON sends a JSON response with the given status code
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			http.Error(w, "encoding error", http.StatusInternalServerError)
		}
	}
}

// parseJSON decodes the request body into a value of type T.
func parseJSON[T any](r *http.Request) (T, error) {
	var v T
	err := json.NewDecoder(r.Body).Decode(&v)
	return v, err
}

// respondTransactionError maps ledger-write failures onto HTTP statuses.
// Validation failures, guard violations, and unknown tickers are client
// errors; missing rows are 404; anything else is a server error reported
// with the given fallback message.
func respondTransactionError(w http.ResponseWriter, err error, fallback error) {
	var vErr *validation.Error
	switch {
	case errors.As(err, &vErr):
		response.RespondError(w, http.StatusBadRequest, "validation failed", vErr.Fields)
	case errors.Is(err, apperrors.ErrInvalidTicker),
		errors.Is(err, apperrors.ErrNoBuyTransactions),
		errors.Is(err, apperrors.ErrSellBeforeFirstBuy),
		errors.Is(err, apperrors.ErrInsufficientShares):
		response.RespondError(w, http.StatusBadRequest, err.Error(), "")
	case errors.Is(err, apperrors.ErrTransactionNotFound):
		response.RespondError(w, http.StatusNotFound, apperrors.ErrTransactionNotFound.Error(), "")
	default:
		response.RespondError(w, http.StatusInternalServerError, fallback.Error(), err.Error())
	}
}
