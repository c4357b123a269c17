package service

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/koonliang/stocktracker/internal/apperrors"
	"github.com/koonliang/stocktracker/internal/model"
	"github.com/koonliang/stocktracker/internal/repository"
)

// holdingStore is the slice of holding persistence the recalculation writes
// through. Satisfied by repository.HoldingRepository.
type holdingStore interface {
	GetByUserAndSymbol(userID, symbol string) (model.Holding, error)
	ListByUser(userID string) ([]model.Holding, error)
	Insert(h model.Holding) error
	Update(h model.Holding) (int64, error)
	DeleteByUserAndSymbol(userID, symbol string) error
}

// HoldingService rebuilds the derived holding rows from the transaction
// ledger. The ledger is the single source of truth; holdings are a cache
// that is recomputed in full for a symbol after every ledger mutation,
// which makes the recalculation idempotent by construction.
type HoldingService struct {
	holdingRepo     holdingStore
	transactionRepo *repository.TransactionRepository
}

// NewHoldingService creates a new HoldingService with the provided repository dependencies.
func NewHoldingService(
	holdingRepo *repository.HoldingRepository,
	transactionRepo *repository.TransactionRepository,
) *HoldingService {
	return &HoldingService{
		holdingRepo:     holdingRepo,
		transactionRepo: transactionRepo,
	}
}

// Recalculate replays a user's full ledger for one symbol and writes the
// resulting position using the weighted average cost method.
//
// The replay walks the ledger in chronological order keeping a running
// share count and cost pool:
//   - BUY adds its shares and its share cost (excluding broker fee) to the pool
//   - SELL removes shares at the pool's current average cost, computed at
//     four decimal places; sells against an empty pool are skipped
//
// If the ledger is empty or the replay ends at zero or negative shares, the
// holding row is deleted. Otherwise the holding is upserted with the final
// average cost rounded to cents and the company name taken from the most
// recent transaction.
func (s *HoldingService) Recalculate(userID, symbol string) error {
	ledger, err := s.transactionRepo.ListByUserAndSymbol(userID, symbol)
	if err != nil {
		return err
	}

	if len(ledger) == 0 {
		return s.holdingRepo.DeleteByUserAndSymbol(userID, symbol)
	}

	totalShares := decimal.Zero
	totalCost := decimal.Zero

	for _, t := range ledger {
		switch t.Type {
		case model.TransactionTypeBuy:
			totalShares = totalShares.Add(t.Shares)
			totalCost = totalCost.Add(t.Shares.Mul(t.PricePerShare))
		case model.TransactionTypeSell:
			if !totalShares.IsPositive() {
				// Sell against an empty pool leaves the position unchanged.
				continue
			}
			avgCostAtSale := totalCost.DivRound(totalShares, RateScale)
			costReduction := t.Shares.Mul(avgCostAtSale)
			totalShares = totalShares.Sub(t.Shares)
			totalCost = totalCost.Sub(costReduction)
		}
	}

	if !totalShares.IsPositive() {
		return s.holdingRepo.DeleteByUserAndSymbol(userID, symbol)
	}

	now := time.Now().UTC()
	holding := model.Holding{
		ID:          uuid.New().String(),
		UserID:      userID,
		Symbol:      symbol,
		CompanyName: ledger[len(ledger)-1].CompanyName,
		Shares:      totalShares,
		AverageCost: totalCost.DivRound(totalShares, MoneyScale),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	return s.upsertHolding(holding)
}

// upsertHolding writes a holding row, tolerating one concurrent insert race.
// Update first; if no row exists, insert. If the insert loses a race against
// another recalculation (unique constraint on user and symbol), retry the
// update exactly once before declaring the data inconsistent.
func (s *HoldingService) upsertHolding(holding model.Holding) error {
	rows, err := s.holdingRepo.Update(holding)
	if err != nil {
		return err
	}
	if rows > 0 {
		return nil
	}

	err = s.holdingRepo.Insert(holding)
	if err == nil {
		return nil
	}
	if !repository.IsUniqueViolation(err) {
		return err
	}

	rows, err = s.holdingRepo.Update(holding)
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("%w: holding for symbol %s vanished during upsert", apperrors.ErrDataInconsistency, holding.Symbol)
	}

	return nil
}

// RecalculateAll rebuilds every holding for a user, one symbol at a time.
// Symbols whose ledger nets out to zero have their holding rows removed.
// A failing symbol is logged and does not stop the remaining symbols; an
// aggregate error reports which symbols could not be rebuilt.
func (s *HoldingService) RecalculateAll(userID string) error {
	symbols, err := s.transactionRepo.DistinctSymbols(userID)
	if err != nil {
		return err
	}

	var failed []string
	for _, symbol := range symbols {
		if err := s.Recalculate(userID, symbol); err != nil {
			log.Printf("Failed to recalculate holding %s for user %s: %v", symbol, userID, err)
			failed = append(failed, symbol)
		}
	}

	if len(failed) > 0 {
		return fmt.Errorf("failed to recalculate %d of %d symbols: %s",
			len(failed), len(symbols), strings.Join(failed, ", "))
	}

	return nil
}

// GetHolding retrieves a user's current position for one symbol.
func (s *HoldingService) GetHolding(userID, symbol string) (model.Holding, error) {
	holding, err := s.holdingRepo.GetByUserAndSymbol(userID, symbol)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Holding{}, apperrors.ErrHoldingNotFound
	}
	if err != nil {
		return model.Holding{}, err
	}
	return holding, nil
}

// GetHoldings retrieves all of a user's current positions, sorted by symbol.
func (s *HoldingService) GetHoldings(userID string) ([]model.Holding, error) {
	return s.holdingRepo.ListByUser(userID)
}
