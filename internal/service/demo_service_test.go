package service_test

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/koonliang/stocktracker/internal/testutil"
)

// TestDemoService_CreateDemoAccount tests demo account provisioning.
//
// WHY: Demo accounts are the first thing a prospective user sees. The seeded
// ledger must produce fully derived holdings through the same recalculation
// path as real data, or the demo shows numbers the product can't reproduce.
func TestDemoService_CreateDemoAccount(t *testing.T) {
	t.Run("seeds a ledger and derives holdings", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestDemoService(t, db, 24*time.Hour)

		// Execute
		user, err := svc.CreateDemoAccount()

		// Assert
		if err != nil {
			t.Fatalf("CreateDemoAccount() returned unexpected error: %v", err)
		}

		if !user.IsDemo {
			t.Error("Expected a demo user")
		}
		if !strings.HasPrefix(user.Email, "demo-") || !strings.HasSuffix(user.Email, "@stocktracker.demo") {
			t.Errorf("Unexpected demo email format: %s", user.Email)
		}

		testutil.AssertRowCount(t, db, "transaction", 10)
		testutil.AssertRowCount(t, db, "holding", 6)

		// Spot-check a position with a partial sell: 60 AAPL bought, 10 sold
		holdingSvc := testutil.NewTestHoldingService(t, db)
		aapl, err := holdingSvc.GetHolding(user.ID, "AAPL")
		if err != nil {
			t.Fatalf("GetHolding() returned unexpected error: %v", err)
		}
		if !aapl.Shares.Equal(decimal.RequireFromString("50")) {
			t.Errorf("Expected 50 AAPL shares, got %s", aapl.Shares)
		}
		if !aapl.AverageCost.Equal(decimal.RequireFromString("142.50")) {
			t.Errorf("Expected average cost 142.50, got %s", aapl.AverageCost)
		}
	})

	t.Run("accounts are independent", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestDemoService(t, db, 24*time.Hour)

		// Execute
		first, err := svc.CreateDemoAccount()
		if err != nil {
			t.Fatalf("CreateDemoAccount() returned unexpected error: %v", err)
		}
		second, err := svc.CreateDemoAccount()
		if err != nil {
			t.Fatalf("CreateDemoAccount() returned unexpected error: %v", err)
		}

		// Assert
		if first.Email == second.Email {
			t.Error("Expected unique emails per demo account")
		}
		testutil.AssertRowCount(t, db, "user", 2)
		testutil.AssertRowCount(t, db, "transaction", 20)
		testutil.AssertRowCount(t, db, "holding", 12)
	})
}

// TestDemoService_CleanupExpired tests the scheduled reaping of old demo
// accounts.
//
// WHY: Demo accounts accumulate unbounded without cleanup. The reaper must
// remove an expired account's holdings, transactions, and user row while
// leaving fresh demo accounts and real users untouched.
func TestDemoService_CleanupExpired(t *testing.T) {
	t.Run("removes expired demo accounts completely", func(t *testing.T) {
		// Setup: one demo account aged past the TTL, one fresh
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestDemoService(t, db, time.Hour)

		expired, err := svc.CreateDemoAccount()
		if err != nil {
			t.Fatalf("CreateDemoAccount() returned unexpected error: %v", err)
		}
		if _, err := svc.CreateDemoAccount(); err != nil {
			t.Fatalf("CreateDemoAccount() returned unexpected error: %v", err)
		}

		aged := time.Now().UTC().Add(-2 * time.Hour).Format(time.RFC3339)
		if _, err := db.Exec(`UPDATE user SET created_at = ? WHERE id = ?`, aged, expired.ID); err != nil {
			t.Fatalf("Failed to age demo account: %v", err)
		}

		// Execute
		deleted, err := svc.CleanupExpired()

		// Assert
		if err != nil {
			t.Fatalf("CleanupExpired() returned unexpected error: %v", err)
		}
		if deleted != 1 {
			t.Errorf("Expected 1 account deleted, got %d", deleted)
		}

		testutil.AssertRowCount(t, db, "user", 1)
		testutil.AssertRowCount(t, db, "transaction", 10)
		testutil.AssertRowCount(t, db, "holding", 6)
	})

	t.Run("real users are never reaped", func(t *testing.T) {
		// Setup: a real user older than the TTL
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestDemoService(t, db, time.Hour)
		user := testutil.CreateUser(t, db)

		aged := time.Now().UTC().Add(-48 * time.Hour).Format(time.RFC3339)
		if _, err := db.Exec(`UPDATE user SET created_at = ? WHERE id = ?`, aged, user.ID); err != nil {
			t.Fatalf("Failed to age user: %v", err)
		}

		// Execute
		deleted, err := svc.CleanupExpired()

		// Assert
		if err != nil {
			t.Fatalf("CleanupExpired() returned unexpected error: %v", err)
		}
		if deleted != 0 {
			t.Errorf("Expected no deletions, got %d", deleted)
		}
		testutil.AssertRowCount(t, db, "user", 1)
	})

	t.Run("nothing to clean is not an error", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestDemoService(t, db, time.Hour)

		// Execute
		deleted, err := svc.CleanupExpired()

		// Assert
		if err != nil {
			t.Fatalf("CleanupExpired() returned unexpected error: %v", err)
		}
		if deleted != 0 {
			t.Errorf("Expected 0 deletions, got %d", deleted)
		}
	})
}
