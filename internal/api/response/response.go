// Package response provides helpers for writing consistent JSON responses,
// including the structured error shape shared by every handler.
package response

import (
	"encoding/json"
	"log"
	"net/http"
)

// ErrorResponse is the error body returned by every endpoint. Details carries
// optional context such as the underlying error string or a field error map.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

// RespondJSON writes data as a JSON response with the given status code.
// A nil data writes the status code alone, which is how 204 No Content is
// sent. Encoding failures are logged; the status line is already on the wire
// at that point, so there is nothing else to do.
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode JSON response: %v", err)
	}
}

// RespondError writes a structured error response. The message is the
// user-facing description; details may be an error string, a field error map,
// or empty. An empty string details is dropped so clients never see
// "details": "".
//
// Example:
//
//	response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
//	response.RespondError(w, http.StatusNotFound, "resource not found", "")
func RespondError(w http.ResponseWriter, status int, message string, details interface{}) {
	if s, ok := details.(string); ok && s == "" {
		details = nil
	}
	RespondJSON(w, status, ErrorResponse{
		Error:   message,
		Details: details,
	})
}
