package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/koonliang/stocktracker/internal/api/middleware"
	"github.com/koonliang/stocktracker/internal/testutil"
)

func TestRequireUser(t *testing.T) {
	t.Run("rejects request without identity header", func(t *testing.T) {
		handlerCalled := false
		testHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			handlerCalled = true
			w.WriteHeader(http.StatusOK)
		})

		mw := middleware.RequireUser(testHandler)

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		w := httptest.NewRecorder()
		mw.ServeHTTP(w, req)

		if handlerCalled {
			t.Error("Expected request not to complete.")
		}
		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", w.Code)
		}

		var response map[string]string
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if response["error"] != "user identity required" {
			t.Errorf("Expected 'user identity required' error, got '%s'", response["error"])
		}
	})

	t.Run("rejects request with malformed identity header", func(t *testing.T) {
		handlerCalled := false
		testHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			handlerCalled = true
			w.WriteHeader(http.StatusOK)
		})

		mw := middleware.RequireUser(testHandler)

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("X-User-ID", "not-a-uuid")
		w := httptest.NewRecorder()
		mw.ServeHTTP(w, req)

		if handlerCalled {
			t.Error("Expected request not to complete.")
		}
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}

		var response map[string]string
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if response["error"] != "invalid user ID format" {
			t.Errorf("Expected 'invalid user ID format' error, got '%s'", response["error"])
		}
	})

	t.Run("stores the user ID on the request context", func(t *testing.T) {
		userID := testutil.MakeID()
		var seenUserID string
		testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seenUserID = middleware.UserID(r.Context())
			w.WriteHeader(http.StatusOK)
		})

		mw := middleware.RequireUser(testHandler)

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("X-User-ID", userID)
		w := httptest.NewRecorder()
		mw.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d", w.Code)
		}
		if seenUserID != userID {
			t.Errorf("Expected context user ID %s, got %s", userID, seenUserID)
		}
	})
}

func TestUserID(t *testing.T) {
	t.Run("returns empty string when middleware did not run", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)

		if got := middleware.UserID(req.Context()); got != "" {
			t.Errorf("Expected empty user ID, got %s", got)
		}
	})
}
