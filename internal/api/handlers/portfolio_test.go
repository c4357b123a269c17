package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/koonliang/stocktracker/internal/model"
	"github.com/koonliang/stocktracker/internal/testutil"
)

func TestPortfolioHandler_Portfolio(t *testing.T) {
	t.Run("returns zeroed snapshot for empty accounts", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := NewPortfolioHandler(
			testutil.NewTestPortfolioService(t, db, testutil.NewMockMarketClient()),
			testutil.NewTestPerformanceService(t, db, testutil.NewMockMarketClient()),
		)
		user := testutil.CreateUser(t, db)

		req := testutil.NewAuthenticatedRequest(http.MethodGet, "/api/portfolio", user.ID, nil)
		w := serveAuthed(handler.Portfolio, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var portfolio model.PortfolioResponse
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&portfolio)

		if portfolio.Holdings == nil || len(portfolio.Holdings) != 0 {
			t.Errorf("Expected empty holdings array, got %v", portfolio.Holdings)
		}
		if !portfolio.TotalValue.IsZero() {
			t.Errorf("Expected zero total value, got %s", portfolio.TotalValue)
		}
	})

	t.Run("values holdings at live prices", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		market := testutil.NewMockMarketClient().WithFullQuote("AAPL", "Apple Inc.", 150.0, 148.0)
		handler := NewPortfolioHandler(
			testutil.NewTestPortfolioService(t, db, market),
			testutil.NewTestPerformanceService(t, db, market),
		)
		user := testutil.CreateUser(t, db)
		testutil.NewTransaction(user.ID).WithSymbol("AAPL").WithShares("10").WithPrice("100.00").Build(t, db)
		testutil.RecalculateHoldings(t, db, user.ID, "AAPL")

		req := testutil.NewAuthenticatedRequest(http.MethodGet, "/api/portfolio", user.ID, nil)
		w := serveAuthed(handler.Portfolio, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var portfolio model.PortfolioResponse
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&portfolio)

		if len(portfolio.Holdings) != 1 {
			t.Fatalf("Expected 1 holding, got %d", len(portfolio.Holdings))
		}
		if portfolio.Holdings[0].CurrentValue.StringFixed(2) != "1500.00" {
			t.Errorf("Expected current value 1500.00, got %s", portfolio.Holdings[0].CurrentValue)
		}
		if portfolio.TotalValue.StringFixed(2) != "1500.00" {
			t.Errorf("Expected total value 1500.00, got %s", portfolio.TotalValue)
		}
	})

	t.Run("requires authentication", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := NewPortfolioHandler(
			testutil.NewTestPortfolioService(t, db, testutil.NewMockMarketClient()),
			testutil.NewTestPerformanceService(t, db, testutil.NewMockMarketClient()),
		)

		req := testutil.NewAuthenticatedRequest(http.MethodGet, "/api/portfolio", "", nil)
		req.Header.Del("X-User-ID")
		w := serveAuthed(handler.Portfolio, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", w.Code)
		}
	})
}

func TestPortfolioHandler_Performance(t *testing.T) {
	t.Run("defaults to the all range", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		market := testutil.NewMockMarketClient().
			WithFullQuote("AAPL", "Apple Inc.", 150.0, 148.0).
			WithSeries("AAPL", testutil.MakeSeries(time.Now().AddDate(0, 0, -3), 100, 110, 105))
		handler := NewPortfolioHandler(
			testutil.NewTestPortfolioService(t, db, market),
			testutil.NewTestPerformanceService(t, db, market),
		)
		user := testutil.CreateUser(t, db)
		testutil.NewTransaction(user.ID).WithSymbol("AAPL").WithShares("10").WithPrice("100.00").
			WithDate(time.Now().AddDate(0, 0, -3)).Build(t, db)
		testutil.RecalculateHoldings(t, db, user.ID, "AAPL")

		req := testutil.NewAuthenticatedRequest(http.MethodGet, "/api/portfolio/performance", user.ID, nil)
		w := serveAuthed(handler.Performance, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var points []model.PerformancePoint
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&points)

		if len(points) == 0 {
			t.Fatal("Expected at least one performance point")
		}
		if points[0].TotalValue.StringFixed(2) != "1000.00" {
			t.Errorf("Expected first point value 1000.00, got %s", points[0].TotalValue)
		}
	})

	t.Run("unknown range returns 400", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := NewPortfolioHandler(
			testutil.NewTestPortfolioService(t, db, testutil.NewMockMarketClient()),
			testutil.NewTestPerformanceService(t, db, testutil.NewMockMarketClient()),
		)
		user := testutil.CreateUser(t, db)

		req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/portfolio/performance",
			map[string]string{"range": "6mo"})
		req.Header.Set("X-User-ID", user.ID)
		w := serveAuthed(handler.Performance, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})
}
