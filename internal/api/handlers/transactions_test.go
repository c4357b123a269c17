package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/koonliang/stocktracker/internal/api/middleware"
	"github.com/koonliang/stocktracker/internal/model"
	"github.com/koonliang/stocktracker/internal/testutil"
)

// serveAuthed runs a handler behind the user identity middleware, the way it
// is mounted in the router.
func serveAuthed(h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	middleware.RequireUser(h).ServeHTTP(w, req)
	return w
}

func transactionBody(t *testing.T, txType, symbol, date, shares, price string) *bytes.Reader {
	t.Helper()

	body, err := json.Marshal(map[string]string{
		"type":            txType,
		"symbol":          symbol,
		"transactionDate": date,
		"shares":          shares,
		"pricePerShare":   price,
	})
	if err != nil {
		t.Fatalf("Failed to marshal request body: %v", err)
	}
	return bytes.NewReader(body)
}

func TestTransactionHandler_AllTransactions(t *testing.T) {
	t.Run("returns the ledger for the authenticated user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := NewTransactionHandler(testutil.NewTestTransactionService(t, db, testutil.NewMockMarketClient()))
		user := testutil.CreateUser(t, db)
		testutil.NewTransaction(user.ID).Build(t, db)

		req := testutil.NewAuthenticatedRequest(http.MethodGet, "/api/transactions", user.ID, nil)
		w := serveAuthed(handler.AllTransactions, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var transactions []model.Transaction
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&transactions)

		if len(transactions) != 1 {
			t.Errorf("Expected 1 transaction, got %d", len(transactions))
		}
	})

	t.Run("missing identity header is rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := NewTransactionHandler(testutil.NewTestTransactionService(t, db, testutil.NewMockMarketClient()))

		req := httptest.NewRequest(http.MethodGet, "/api/transactions", nil)
		w := serveAuthed(handler.AllTransactions, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("malformed identity header is rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := NewTransactionHandler(testutil.NewTestTransactionService(t, db, testutil.NewMockMarketClient()))

		req := testutil.NewAuthenticatedRequest(http.MethodGet, "/api/transactions", "not-a-uuid", nil)
		w := serveAuthed(handler.AllTransactions, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("users only see their own rows", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := NewTransactionHandler(testutil.NewTestTransactionService(t, db, testutil.NewMockMarketClient()))
		owner := testutil.CreateUser(t, db)
		other := testutil.CreateUser(t, db)
		testutil.NewTransaction(owner.ID).Build(t, db)

		req := testutil.NewAuthenticatedRequest(http.MethodGet, "/api/transactions", other.ID, nil)
		w := serveAuthed(handler.AllTransactions, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var transactions []model.Transaction
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&transactions)

		if len(transactions) != 0 {
			t.Errorf("Expected no transactions for the other user, got %d", len(transactions))
		}
	})
}

func TestTransactionHandler_CreateTransaction(t *testing.T) {
	t.Run("creates a transaction and returns 201", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		market := testutil.NewMockMarketClient().WithFullQuote("AAPL", "Apple Inc.", 150.0, 148.0)
		handler := NewTransactionHandler(testutil.NewTestTransactionService(t, db, market))
		user := testutil.CreateUser(t, db)

		req := testutil.NewAuthenticatedRequest(http.MethodPost, "/api/transactions", user.ID,
			transactionBody(t, "BUY", "AAPL", "2025-01-02", "10", "100.00"))
		w := serveAuthed(handler.CreateTransaction, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}

		var created model.Transaction
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&created)

		if created.Symbol != "AAPL" {
			t.Errorf("Expected symbol AAPL, got %q", created.Symbol)
		}
		testutil.AssertRowCount(t, db, "transaction", 1)
		testutil.AssertRowCount(t, db, "holding", 1)
	})

	t.Run("unknown ticker returns 400", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := NewTransactionHandler(testutil.NewTestTransactionService(t, db, testutil.NewMockMarketClient()))
		user := testutil.CreateUser(t, db)

		req := testutil.NewAuthenticatedRequest(http.MethodPost, "/api/transactions", user.ID,
			transactionBody(t, "BUY", "ZZZZ", "2025-01-02", "10", "100.00"))
		w := serveAuthed(handler.CreateTransaction, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("validation failure returns field details", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		market := testutil.NewMockMarketClient().WithFullQuote("AAPL", "Apple Inc.", 150.0, 148.0)
		handler := NewTransactionHandler(testutil.NewTestTransactionService(t, db, market))
		user := testutil.CreateUser(t, db)

		req := testutil.NewAuthenticatedRequest(http.MethodPost, "/api/transactions", user.ID,
			transactionBody(t, "BUY", "AAPL", "2025-01-02", "0", "100.00"))
		w := serveAuthed(handler.CreateTransaction, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
		if !strings.Contains(w.Body.String(), "shares") {
			t.Errorf("Expected shares field in error details, got %s", w.Body.String())
		}
	})

	t.Run("malformed JSON returns 400", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := NewTransactionHandler(testutil.NewTestTransactionService(t, db, testutil.NewMockMarketClient()))
		user := testutil.CreateUser(t, db)

		req := testutil.NewAuthenticatedRequest(http.MethodPost, "/api/transactions", user.ID,
			bytes.NewReader([]byte("{not json")))
		w := serveAuthed(handler.CreateTransaction, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("sell without prior buy returns 400", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		market := testutil.NewMockMarketClient().WithFullQuote("AAPL", "Apple Inc.", 150.0, 148.0)
		handler := NewTransactionHandler(testutil.NewTestTransactionService(t, db, market))
		user := testutil.CreateUser(t, db)

		req := testutil.NewAuthenticatedRequest(http.MethodPost, "/api/transactions", user.ID,
			transactionBody(t, "SELL", "AAPL", "2025-01-02", "5", "120.00"))
		w := serveAuthed(handler.CreateTransaction, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestTransactionHandler_GetTransaction(t *testing.T) {
	t.Run("unknown id returns 404", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := NewTransactionHandler(testutil.NewTestTransactionService(t, db, testutil.NewMockMarketClient()))
		user := testutil.CreateUser(t, db)

		unknown := testutil.MakeID()
		req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/transactions/"+unknown, map[string]string{"uuid": unknown})
		req.Header.Set("X-User-ID", user.ID)
		w := serveAuthed(handler.GetTransaction, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns the transaction for its owner", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := NewTransactionHandler(testutil.NewTestTransactionService(t, db, testutil.NewMockMarketClient()))
		user := testutil.CreateUser(t, db)
		tx := testutil.NewTransaction(user.ID).Build(t, db)

		req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/transactions/"+tx.ID, map[string]string{"uuid": tx.ID})
		req.Header.Set("X-User-ID", user.ID)
		w := serveAuthed(handler.GetTransaction, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var got model.Transaction
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&got)

		if got.ID != tx.ID {
			t.Errorf("Expected transaction %s, got %s", tx.ID, got.ID)
		}
	})
}

func TestTransactionHandler_DeleteTransaction(t *testing.T) {
	t.Run("deletes and returns 204", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := NewTransactionHandler(testutil.NewTestTransactionService(t, db, testutil.NewMockMarketClient()))
		user := testutil.CreateUser(t, db)
		tx := testutil.NewTransaction(user.ID).Build(t, db)

		req := testutil.NewRequestWithURLParams(http.MethodDelete, "/api/transactions/"+tx.ID, map[string]string{"uuid": tx.ID})
		req.Header.Set("X-User-ID", user.ID)
		w := serveAuthed(handler.DeleteTransaction, req)

		if w.Code != http.StatusNoContent {
			t.Errorf("Expected 204, got %d: %s", w.Code, w.Body.String())
		}
		testutil.AssertRowCount(t, db, "transaction", 0)
	})
}

func TestTransactionHandler_ValidateTicker(t *testing.T) {
	t.Run("always returns 200 with the validation outcome", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		market := testutil.NewMockMarketClient().WithFullQuote("AAPL", "Apple Inc.", 150.0, 148.0)
		handler := NewTransactionHandler(testutil.NewTestTransactionService(t, db, market))

		for symbol, wantValid := range map[string]bool{"AAPL": true, "ZZZZ": false} {
			req := testutil.NewRequestWithURLParams(http.MethodGet,
				"/api/transactions/validate-ticker/"+symbol, map[string]string{"symbol": symbol})
			w := httptest.NewRecorder()

			handler.ValidateTicker(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("Expected 200 for %s, got %d", symbol, w.Code)
			}

			var result model.TickerValidation
			//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
			json.NewDecoder(w.Body).Decode(&result)

			if result.Valid != wantValid {
				t.Errorf("Expected valid=%v for %s, got %v", wantValid, symbol, result.Valid)
			}
		}
	})
}

func TestTransactionHandler_ExportTransactions(t *testing.T) {
	t.Run("serves a CSV attachment", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := NewTransactionHandler(testutil.NewTestTransactionService(t, db, testutil.NewMockMarketClient()))
		user := testutil.CreateUser(t, db)
		testutil.NewTransaction(user.ID).Build(t, db)

		req := testutil.NewAuthenticatedRequest(http.MethodGet, "/api/transactions/export", user.ID, nil)
		w := serveAuthed(handler.ExportTransactions, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}
		if ct := w.Header().Get("Content-Type"); ct != "text/csv" {
			t.Errorf("Expected text/csv, got %q", ct)
		}
		if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "transactions.csv") {
			t.Errorf("Expected attachment disposition, got %q", cd)
		}
		if !strings.HasPrefix(w.Body.String(), "Type,Symbol,Company Name,") {
			t.Errorf("Expected CSV header, got %q", w.Body.String())
		}
	})
}
