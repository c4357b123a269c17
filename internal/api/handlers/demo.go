package handlers

import (
	"net/http"

	"github.com/koonliang/stocktracker/internal/api/response"
	"github.com/koonliang/stocktracker/internal/apperrors"
	"github.com/koonliang/stocktracker/internal/service"
)

// DemoHandler handles HTTP requests for demo account provisioning.
type DemoHandler struct {
	demoService *service.DemoService
}

// NewDemoHandler creates a new DemoHandler with the provided service dependency.
func NewDemoHandler(demoService *service.DemoService) *DemoHandler {
	return &DemoHandler{
		demoService: demoService,
	}
}

// CreateDemoAccount handles POST requests to provision a fresh demo account
// seeded with sample transactions and derived holdings. The returned user
// ID is what the client sends in X-User-ID on subsequent requests.
//
// Endpoint: POST /api/demo
// Response: 201 Created with User
// Error: 500 Internal Server Error if provisioning fails
func (h *DemoHandler) CreateDemoAccount(w http.ResponseWriter, r *http.Request) {
	user, err := h.demoService.CreateDemoAccount()
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToCreateDemoAccount.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusCreated, user)
}
