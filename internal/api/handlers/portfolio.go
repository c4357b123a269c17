package handlers

import (
	"errors"
	"net/http"

	"github.com/koonliang/stocktracker/internal/api/middleware"
	"github.com/koonliang/stocktracker/internal/api/response"
	"github.com/koonliang/stocktracker/internal/apperrors"
	"github.com/koonliang/stocktracker/internal/service"
)

// PortfolioHandler handles HTTP requests for portfolio valuation and
// performance history endpoints.
type PortfolioHandler struct {
	portfolioService   *service.PortfolioService
	performanceService *service.PerformanceService
}

// NewPortfolioHandler creates a new PortfolioHandler with the provided service dependencies.
func NewPortfolioHandler(
	portfolioService *service.PortfolioService,
	performanceService *service.PerformanceService,
) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioService:   portfolioService,
		performanceService: performanceService,
	}
}

// Portfolio handles GET requests for the current portfolio snapshot.
// Returns every holding with live prices, returns, weights, and sparklines,
// plus aggregate totals and annualized yield.
//
// Endpoint: GET /api/portfolio
// Response: 200 OK with PortfolioResponse
// Error: 500 Internal Server Error if retrieval fails
func (h *PortfolioHandler) Portfolio(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	portfolio, err := h.portfolioService.GetPortfolio(r.Context(), userID)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToGetPortfolio.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, portfolio)
}

// Performance handles GET requests for the reconstructed portfolio value
// history over a named range.
//
// Endpoint: GET /api/portfolio/performance?range={1d|7d|1mo|3mo|ytd|1y|2y|5y|10y|max|all}
// Response: 200 OK with array of PerformancePoint
// Error: 400 Bad Request if the range token is unknown
// Error: 500 Internal Server Error if reconstruction fails
func (h *PortfolioHandler) Performance(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	rng := r.URL.Query().Get("range")
	if rng == "" {
		rng = "all"
	}

	points, err := h.performanceService.GetPerformanceHistory(r.Context(), userID, rng)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidRange) {
			response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidRange.Error(), rng)
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToGetPerformance.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, points)
}
