package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/koonliang/stocktracker/internal/repository"
	"github.com/koonliang/stocktracker/internal/service"
	"github.com/koonliang/stocktracker/internal/yahoo"
)

func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()

	return service.NewSystemService(db)
}

func NewTestHoldingService(t *testing.T, db *sql.DB) *service.HoldingService {
	t.Helper()

	holdingRepo := repository.NewHoldingRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)

	return service.NewHoldingService(
		holdingRepo,
		transactionRepo,
	)
}

func NewTestTransactionService(t *testing.T, db *sql.DB, marketData yahoo.Client) *service.TransactionService {
	t.Helper()

	transactionRepo := repository.NewTransactionRepository(db)
	holdingService := NewTestHoldingService(t, db)

	return service.NewTransactionService(
		transactionRepo,
		holdingService,
		marketData,
	)
}

func NewTestPortfolioService(t *testing.T, db *sql.DB, marketData yahoo.Client) *service.PortfolioService {
	t.Helper()

	holdingRepo := repository.NewHoldingRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)

	return service.NewPortfolioService(
		holdingRepo,
		transactionRepo,
		marketData,
	)
}

func NewTestPerformanceService(t *testing.T, db *sql.DB, marketData yahoo.Client) *service.PerformanceService {
	t.Helper()

	holdingRepo := repository.NewHoldingRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)

	return service.NewPerformanceService(
		holdingRepo,
		transactionRepo,
		marketData,
	)
}

func NewTestCsvImportService(t *testing.T, db *sql.DB, marketData yahoo.Client) *service.CsvImportService {
	t.Helper()

	return service.NewCsvImportService(
		NewTestTransactionService(t, db, marketData),
	)
}

// RecalculateHoldings replays the ledger for a symbol so tests that seed
// transactions directly still get a derived holding row.
func RecalculateHoldings(t *testing.T, db *sql.DB, userID, symbol string) {
	t.Helper()

	if err := NewTestHoldingService(t, db).Recalculate(userID, symbol); err != nil {
		t.Fatalf("Failed to recalculate holdings for %s: %v", symbol, err)
	}
}

func NewTestDemoService(t *testing.T, db *sql.DB, ttl time.Duration) *service.DemoService {
	t.Helper()

	userRepo := repository.NewUserRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	holdingRepo := repository.NewHoldingRepository(db)
	holdingService := NewTestHoldingService(t, db)

	return service.NewDemoService(
		userRepo,
		transactionRepo,
		holdingRepo,
		holdingService,
		ttl,
	)
}
