package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/koonliang/stocktracker/internal/apperrors"
	"github.com/koonliang/stocktracker/internal/testutil"
)

// TestPerformanceService_GetPerformanceHistory tests the ledger replay that
// reconstructs daily portfolio values from historical prices.
//
// WHY: The performance chart is rebuilt from scratch on every request. The
// replay must value each date with the shares actually held then, exclude
// today's incomplete session, and skip dates before the portfolio existed.
func TestPerformanceService_GetPerformanceHistory(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects an unknown range", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPerformanceService(t, db, testutil.NewMockMarketClient())
		user := testutil.CreateUser(t, db)

		// Execute
		_, err := svc.GetPerformanceHistory(ctx, user.ID, "6mo")

		// Assert
		if !errors.Is(err, apperrors.ErrInvalidRange) {
			t.Errorf("Expected ErrInvalidRange, got %v", err)
		}
	})

	t.Run("no holdings yields an empty series", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPerformanceService(t, db, testutil.NewMockMarketClient())
		user := testutil.CreateUser(t, db)

		// Execute
		points, err := svc.GetPerformanceHistory(ctx, user.ID, "1y")

		// Assert
		if err != nil {
			t.Fatalf("GetPerformanceHistory() returned unexpected error: %v", err)
		}
		if len(points) != 0 {
			t.Errorf("Expected empty series, got %d points", len(points))
		}
	})

	t.Run("replays the ledger against daily closes", func(t *testing.T) {
		// Setup: one buy of 10 shares at the second series date. The first
		// date predates the position, the last date is today.
		db := testutil.SetupTestDB(t)
		today := time.Now().UTC().Truncate(24 * time.Hour)
		day0 := today.AddDate(0, 0, -4)

		market := testutil.NewMockMarketClient().
			WithSeries("AAPL", testutil.MakeSeries(day0, 90.0, 100.0, 110.0, 105.0, 999.0))
		svc := testutil.NewTestPerformanceService(t, db, market)
		holdingSvc := testutil.NewTestHoldingService(t, db)
		user := testutil.CreateUser(t, db)

		testutil.NewTransaction(user.ID).WithSymbol("AAPL").
			WithDate(day0.AddDate(0, 0, 1)).WithShares("10").WithPrice("100.00").Build(t, db)
		if err := holdingSvc.Recalculate(user.ID, "AAPL"); err != nil {
			t.Fatalf("Recalculate() returned unexpected error: %v", err)
		}

		// Execute
		points, err := svc.GetPerformanceHistory(ctx, user.ID, "7d")

		// Assert
		if err != nil {
			t.Fatalf("GetPerformanceHistory() returned unexpected error: %v", err)
		}

		// day0 has no shares yet and is omitted; today is excluded
		if len(points) != 3 {
			t.Fatalf("Expected 3 points, got %d", len(points))
		}

		wantDates := []string{
			day0.AddDate(0, 0, 1).Format("2006-01-02"),
			day0.AddDate(0, 0, 2).Format("2006-01-02"),
			day0.AddDate(0, 0, 3).Format("2006-01-02"),
		}
		for i, want := range wantDates {
			if points[i].Date != want {
				t.Errorf("Point %d: expected date %s, got %s", i, want, points[i].Date)
			}
		}

		if !points[0].TotalValue.Equal(decimal.RequireFromString("1000")) {
			t.Errorf("Expected first value 1000, got %s", points[0].TotalValue)
		}
		if !points[0].DailyChange.IsZero() || !points[0].DailyChangePercent.IsZero() {
			t.Errorf("Expected zero change on first point, got %s / %s", points[0].DailyChange, points[0].DailyChangePercent)
		}

		if !points[1].TotalValue.Equal(decimal.RequireFromString("1100")) {
			t.Errorf("Expected second value 1100, got %s", points[1].TotalValue)
		}
		if !points[1].DailyChange.Equal(decimal.RequireFromString("100")) {
			t.Errorf("Expected second change 100, got %s", points[1].DailyChange)
		}
		if !points[1].DailyChangePercent.Equal(decimal.RequireFromString("10")) {
			t.Errorf("Expected second change percent 10, got %s", points[1].DailyChangePercent)
		}

		if !points[2].TotalValue.Equal(decimal.RequireFromString("1050")) {
			t.Errorf("Expected third value 1050, got %s", points[2].TotalValue)
		}
		if !points[2].DailyChange.Equal(decimal.RequireFromString("-50")) {
			t.Errorf("Expected third change -50, got %s", points[2].DailyChange)
		}
		if !points[2].DailyChangePercent.Equal(decimal.RequireFromString("-4.5455")) {
			t.Errorf("Expected third change percent -4.5455, got %s", points[2].DailyChangePercent)
		}
	})

	t.Run("sells reduce the shares used for later dates", func(t *testing.T) {
		// Setup: buy 10, sell 4 two days later
		db := testutil.SetupTestDB(t)
		today := time.Now().UTC().Truncate(24 * time.Hour)
		day0 := today.AddDate(0, 0, -3)

		market := testutil.NewMockMarketClient().
			WithSeries("AAPL", testutil.MakeSeries(day0, 100.0, 100.0, 100.0))
		svc := testutil.NewTestPerformanceService(t, db, market)
		holdingSvc := testutil.NewTestHoldingService(t, db)
		user := testutil.CreateUser(t, db)

		testutil.NewTransaction(user.ID).WithSymbol("AAPL").WithDate(day0).WithShares("10").WithPrice("100.00").Build(t, db)
		testutil.NewTransaction(user.ID).Sell().WithSymbol("AAPL").WithDate(day0.AddDate(0, 0, 2)).WithShares("4").WithPrice("100.00").Build(t, db)
		if err := holdingSvc.Recalculate(user.ID, "AAPL"); err != nil {
			t.Fatalf("Recalculate() returned unexpected error: %v", err)
		}

		// Execute
		points, err := svc.GetPerformanceHistory(ctx, user.ID, "7d")

		// Assert
		if err != nil {
			t.Fatalf("GetPerformanceHistory() returned unexpected error: %v", err)
		}
		if len(points) != 3 {
			t.Fatalf("Expected 3 points, got %d", len(points))
		}

		if !points[1].TotalValue.Equal(decimal.RequireFromString("1000")) {
			t.Errorf("Expected 1000 before the sell, got %s", points[1].TotalValue)
		}
		if !points[2].TotalValue.Equal(decimal.RequireFromString("600")) {
			t.Errorf("Expected 600 after selling 4 shares, got %s", points[2].TotalValue)
		}
	})

	t.Run("dates with no price for a symbol skip that symbol", func(t *testing.T) {
		// Setup: two symbols, MSFT missing the middle date
		db := testutil.SetupTestDB(t)
		today := time.Now().UTC().Truncate(24 * time.Hour)
		day0 := today.AddDate(0, 0, -3)

		msftSeries := testutil.MakeSeries(day0, 200.0, 0, 210.0)
		// Drop the middle point entirely rather than serving a zero close
		msftSeries = append(msftSeries[:1], msftSeries[2:]...)

		market := testutil.NewMockMarketClient().
			WithSeries("AAPL", testutil.MakeSeries(day0, 100.0, 100.0, 100.0)).
			WithSeries("MSFT", msftSeries)
		svc := testutil.NewTestPerformanceService(t, db, market)
		holdingSvc := testutil.NewTestHoldingService(t, db)
		user := testutil.CreateUser(t, db)

		testutil.NewTransaction(user.ID).WithSymbol("AAPL").WithDate(day0).WithShares("10").WithPrice("100.00").Build(t, db)
		testutil.NewTransaction(user.ID).WithSymbol("MSFT").WithDate(day0).WithShares("5").WithPrice("200.00").Build(t, db)
		if err := holdingSvc.RecalculateAll(user.ID); err != nil {
			t.Fatalf("RecalculateAll() returned unexpected error: %v", err)
		}

		// Execute
		points, err := svc.GetPerformanceHistory(ctx, user.ID, "7d")

		// Assert
		if err != nil {
			t.Fatalf("GetPerformanceHistory() returned unexpected error: %v", err)
		}
		if len(points) != 3 {
			t.Fatalf("Expected 3 points, got %d", len(points))
		}

		// day0: 10*100 + 5*200; day1: AAPL only; day2: 10*100 + 5*210
		if !points[0].TotalValue.Equal(decimal.RequireFromString("2000")) {
			t.Errorf("Expected 2000 on first date, got %s", points[0].TotalValue)
		}
		if !points[1].TotalValue.Equal(decimal.RequireFromString("1000")) {
			t.Errorf("Expected 1000 on the date MSFT has no close, got %s", points[1].TotalValue)
		}
		if !points[2].TotalValue.Equal(decimal.RequireFromString("2050")) {
			t.Errorf("Expected 2050 on last date, got %s", points[2].TotalValue)
		}
	})

	t.Run("falls back to fixed share counts when the ledger is empty", func(t *testing.T) {
		// Setup: a holding row with no backing transactions
		db := testutil.SetupTestDB(t)
		today := time.Now().UTC().Truncate(24 * time.Hour)
		day0 := today.AddDate(0, 0, -2)

		market := testutil.NewMockMarketClient().
			WithSeries("AAPL", testutil.MakeSeries(day0, 110.0))
		svc := testutil.NewTestPerformanceService(t, db, market)
		user := testutil.CreateUser(t, db)

		now := time.Now().UTC().Format(time.RFC3339)
		_, err := db.Exec(
			`INSERT INTO holding (id, user_id, symbol, company_name, shares, average_cost, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			testutil.MakeID(), user.ID, "AAPL", "Apple Inc.", "10", "100", now, now,
		)
		if err != nil {
			t.Fatalf("Failed to insert holding: %v", err)
		}

		// Execute
		points, err := svc.GetPerformanceHistory(ctx, user.ID, "7d")

		// Assert
		if err != nil {
			t.Fatalf("GetPerformanceHistory() returned unexpected error: %v", err)
		}
		if len(points) != 1 {
			t.Fatalf("Expected 1 point, got %d", len(points))
		}
		if !points[0].TotalValue.Equal(decimal.RequireFromString("1100")) {
			t.Errorf("Expected 1100 from fixed share counts, got %s", points[0].TotalValue)
		}
	})
}
