package middleware_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/koonliang/stocktracker/internal/api/middleware"
	"github.com/koonliang/stocktracker/internal/testutil"
)

func serveWithUUIDParam(uuid string) (*httptest.ResponseRecorder, *bool) {
	handlerCalled := false
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		handlerCalled = true
		w.WriteHeader(http.StatusOK)
	})

	mw := middleware.ValidateUUIDMiddleware(next)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("uuid", uuid)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	w := httptest.NewRecorder()
	mw.ServeHTTP(w, req)
	return w, &handlerCalled
}

func TestValidateUUIDMiddleware(t *testing.T) {
	t.Run("passes through valid UUID", func(t *testing.T) {
		w, handlerCalled := serveWithUUIDParam(testutil.MakeID())

		if !*handlerCalled {
			t.Error("Expected next handler to be called")
		}
		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d", w.Code)
		}
	})

	t.Run("rejects malformed or missing UUID", func(t *testing.T) {
		for _, uuid := range []string{"invalid-id", "550e8400-e29b-41d4", ""} {
			w, handlerCalled := serveWithUUIDParam(uuid)

			if *handlerCalled {
				t.Errorf("Expected next handler NOT to be called for %q", uuid)
			}
			if w.Code != http.StatusBadRequest {
				t.Errorf("Expected 400 for %q, got %d", uuid, w.Code)
			}

			var response map[string]string
			//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
			json.NewDecoder(w.Body).Decode(&response)

			if response["error"] == "" {
				t.Errorf("Expected an error message for %q", uuid)
			}
		}
	})
}
