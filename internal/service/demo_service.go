package service

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/koonliang/stocktracker/internal/model"
	"github.com/koonliang/stocktracker/internal/repository"
)

// DemoService creates throwaway demo accounts seeded with a sample ledger
// and tears them down after they expire. Seed rows are written directly to
// the repository since the symbols and prices are fixed, then holdings are
// rebuilt through the normal recalculation path.
type DemoService struct {
	userRepo        *repository.UserRepository
	transactionRepo *repository.TransactionRepository
	holdingRepo     *repository.HoldingRepository
	holdingService  *HoldingService
	ttl             time.Duration
}

// NewDemoService creates a new DemoService with the provided dependencies.
// ttl is how long a demo account lives before the cleanup job removes it.
func NewDemoService(
	userRepo *repository.UserRepository,
	transactionRepo *repository.TransactionRepository,
	holdingRepo *repository.HoldingRepository,
	holdingService *HoldingService,
	ttl time.Duration,
) *DemoService {
	return &DemoService{
		userRepo:        userRepo,
		transactionRepo: transactionRepo,
		holdingRepo:     holdingRepo,
		holdingService:  holdingService,
		ttl:             ttl,
	}
}

type demoSeed struct {
	txType  model.TransactionType
	symbol  string
	company string
	dayOff  int
	shares  string
	price   string
}

// demoSeeds is the sample ledger every demo account starts with. Day
// offsets are relative to 90 days before account creation.
var demoSeeds = []demoSeed{
	{model.TransactionTypeBuy, "AAPL", "Apple Inc.", 0, "60", "142.50"},
	{model.TransactionTypeSell, "AAPL", "Apple Inc.", 30, "10", "150.00"},
	{model.TransactionTypeBuy, "MSFT", "Microsoft Corporation", 5, "30", "285.00"},
	{model.TransactionTypeSell, "MSFT", "Microsoft Corporation", 35, "5", "320.00"},
	{model.TransactionTypeBuy, "GOOGL", "Alphabet Inc.", 10, "10", "125.30"},
	{model.TransactionTypeBuy, "TSLA", "Tesla, Inc.", 15, "20", "248.00"},
	{model.TransactionTypeSell, "TSLA", "Tesla, Inc.", 45, "5", "265.00"},
	{model.TransactionTypeBuy, "NVDA", "NVIDIA Corporation", 20, "20", "450.00"},
	{model.TransactionTypeBuy, "AMZN", "Amazon.com, Inc.", 25, "40", "135.00"},
	{model.TransactionTypeSell, "AMZN", "Amazon.com, Inc.", 55, "10", "145.00"},
}

// CreateDemoAccount creates a fresh demo user with a seeded 90-day ledger
// and fully derived holdings. Every call produces an independent account
// with a unique throwaway email.
func (s *DemoService) CreateDemoAccount() (model.User, error) {
	now := time.Now().UTC()

	user := model.User{
		ID:        uuid.New().String(),
		Name:      "Demo User",
		Email:     fmt.Sprintf("demo-%s@stocktracker.demo", uuid.New().String()),
		IsDemo:    true,
		CreatedAt: now,
	}

	if err := s.userRepo.Create(user); err != nil {
		return model.User{}, err
	}
	log.Printf("Created demo account with email: %s", user.Email)

	baseDate := now.AddDate(0, 0, -90).Truncate(24 * time.Hour)
	for _, seed := range demoSeeds {
		shares := decimal.RequireFromString(seed.shares)
		price := decimal.RequireFromString(seed.price)

		t := model.Transaction{
			ID:              uuid.New().String(),
			UserID:          user.ID,
			Type:            seed.txType,
			Symbol:          seed.symbol,
			CompanyName:     seed.company,
			TransactionDate: baseDate.AddDate(0, 0, seed.dayOff),
			Shares:          shares,
			PricePerShare:   price,
			BrokerFee:       decimal.Zero,
			Notes:           "Demo seed data",
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		t.CalculateTotalAmount()

		if err := s.transactionRepo.Create(t); err != nil {
			return model.User{}, err
		}
	}
	log.Printf("Seeded %d demo transactions for user %s", len(demoSeeds), user.ID)

	if err := s.holdingService.RecalculateAll(user.ID); err != nil {
		return model.User{}, err
	}

	return user, nil
}

// CleanupExpired removes demo accounts older than the configured TTL.
// Deletion order is holdings, transactions, then the user, matching the
// schema's foreign keys. One account failing to delete does not stop the
// rest; failures are logged and the account is retried on the next run.
//
// Returns the number of accounts deleted.
func (s *DemoService) CleanupExpired() (int, error) {
	cutoff := time.Now().UTC().Add(-s.ttl)

	expired, err := s.userRepo.ListExpiredDemo(cutoff)
	if err != nil {
		return 0, err
	}
	if len(expired) == 0 {
		return 0, nil
	}

	log.Printf("Found %d demo accounts to clean up", len(expired))

	deleted := 0
	for _, user := range expired {
		if err := s.deleteDemoAccount(user); err != nil {
			log.Printf("Failed to delete demo account %s: %v", user.Email, err)
			continue
		}
		log.Printf("Deleted demo account: %s (created at: %s)", user.Email, user.CreatedAt.Format(time.RFC3339))
		deleted++
	}

	return deleted, nil
}

func (s *DemoService) deleteDemoAccount(user model.User) error {
	if err := s.holdingRepo.DeleteByUser(user.ID); err != nil {
		return err
	}
	if err := s.transactionRepo.DeleteByUser(user.ID); err != nil {
		return err
	}
	return s.userRepo.Delete(user.ID)
}
