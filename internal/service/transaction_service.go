package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/koonliang/stocktracker/internal/apperrors"
	"github.com/koonliang/stocktracker/internal/api/request"
	"github.com/koonliang/stocktracker/internal/model"
	"github.com/koonliang/stocktracker/internal/repository"
	"github.com/koonliang/stocktracker/internal/validation"
	"github.com/koonliang/stocktracker/internal/yahoo"
)

// TransactionService handles the buy/sell ledger business logic. Every write
// goes through the same pipeline: validate the request, verify the ticker
// against live market data, enforce the sell guard, persist the row, then
// rebuild the affected holding from the full ledger.
type TransactionService struct {
	transactionRepo *repository.TransactionRepository
	holdingService  *HoldingService
	marketData      yahoo.Client
}

// NewTransactionService creates a new TransactionService with the provided dependencies.
func NewTransactionService(
	transactionRepo *repository.TransactionRepository,
	holdingService *HoldingService,
	marketData yahoo.Client,
) *TransactionService {
	return &TransactionService{
		transactionRepo: transactionRepo,
		holdingService:  holdingService,
		marketData:      marketData,
	}
}

// GetTransactions retrieves a user's full ledger, newest first.
func (s *TransactionService) GetTransactions(userID string) ([]model.Transaction, error) {
	return s.transactionRepo.ListByUser(userID)
}

// GetTransaction retrieves a single transaction owned by the user.
func (s *TransactionService) GetTransaction(userID, transactionID string) (model.Transaction, error) {
	t, err := s.transactionRepo.GetByIDAndUser(transactionID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Transaction{}, apperrors.ErrTransactionNotFound
	}
	if err != nil {
		return model.Transaction{}, err
	}
	return t, nil
}

// CreateTransaction validates and records a new buy or sell.
//
// The pipeline:
//  1. Field validation (type, symbol format, date, positive amounts)
//  2. Ticker verification against the market data provider; the provider's
//     company name is stored on the row
//  3. For sells, the sell guard: a prior BUY must exist, the sell date may
//     not precede the first BUY, and the net position must cover the shares
//  4. Persist and rebuild the symbol's holding
func (s *TransactionService) CreateTransaction(ctx context.Context, userID string, req request.TransactionRequest) (model.Transaction, error) {
	if err := validation.ValidateTransactionRequest(req); err != nil {
		return model.Transaction{}, err
	}

	txType := model.TransactionType(strings.ToUpper(strings.TrimSpace(req.Type)))
	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	date, _ := time.Parse("2006-01-02", req.TransactionDate)

	quote, err := s.marketData.GetQuote(ctx, symbol)
	if err != nil {
		return model.Transaction{}, apperrors.ErrInvalidTicker
	}

	if txType == model.TransactionTypeSell {
		if err := s.checkSellAllowed(userID, symbol, date, req.Shares); err != nil {
			return model.Transaction{}, err
		}
	}

	now := time.Now().UTC()
	t := model.Transaction{
		ID:              uuid.New().String(),
		UserID:          userID,
		Type:            txType,
		Symbol:          symbol,
		CompanyName:     quote.CompanyName,
		TransactionDate: date,
		Shares:          req.Shares,
		PricePerShare:   req.PricePerShare,
		BrokerFee:       req.BrokerFee,
		Notes:           req.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	t.CalculateTotalAmount()

	if err := s.transactionRepo.Create(t); err != nil {
		return model.Transaction{}, err
	}

	if err := s.holdingService.Recalculate(userID, symbol); err != nil {
		return model.Transaction{}, err
	}

	return t, nil
}

// UpdateTransaction rewrites an existing ledger row and rebuilds the
// affected holdings. The same validation, ticker verification, and sell
// guard apply as on create. When the symbol changes, both the old and the
// new symbol's holdings are rebuilt.
func (s *TransactionService) UpdateTransaction(ctx context.Context, userID, transactionID string, req request.TransactionRequest) (model.Transaction, error) {
	existing, err := s.GetTransaction(userID, transactionID)
	if err != nil {
		return model.Transaction{}, err
	}

	if err := validation.ValidateTransactionRequest(req); err != nil {
		return model.Transaction{}, err
	}

	txType := model.TransactionType(strings.ToUpper(strings.TrimSpace(req.Type)))
	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	date, _ := time.Parse("2006-01-02", req.TransactionDate)

	quote, err := s.marketData.GetQuote(ctx, symbol)
	if err != nil {
		return model.Transaction{}, apperrors.ErrInvalidTicker
	}

	if txType == model.TransactionTypeSell {
		if err := s.checkSellAllowed(userID, symbol, date, req.Shares); err != nil {
			return model.Transaction{}, err
		}
	}

	t := existing
	t.Type = txType
	t.Symbol = symbol
	t.CompanyName = quote.CompanyName
	t.TransactionDate = date
	t.Shares = req.Shares
	t.PricePerShare = req.PricePerShare
	t.BrokerFee = req.BrokerFee
	t.Notes = req.Notes
	t.CalculateTotalAmount()
	t.UpdatedAt = time.Now().UTC()

	rows, err := s.transactionRepo.Update(t)
	if err != nil {
		return model.Transaction{}, err
	}
	if rows == 0 {
		return model.Transaction{}, apperrors.ErrTransactionNotFound
	}

	if err := s.holdingService.Recalculate(userID, symbol); err != nil {
		return model.Transaction{}, err
	}
	if existing.Symbol != symbol {
		if err := s.holdingService.Recalculate(userID, existing.Symbol); err != nil {
			return model.Transaction{}, err
		}
	}

	return t, nil
}

// DeleteTransaction removes a ledger row and rebuilds its symbol's holding.
func (s *TransactionService) DeleteTransaction(userID, transactionID string) error {
	existing, err := s.GetTransaction(userID, transactionID)
	if err != nil {
		return err
	}

	rows, err := s.transactionRepo.Delete(transactionID, userID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperrors.ErrTransactionNotFound
	}

	return s.holdingService.Recalculate(userID, existing.Symbol)
}

// ValidateTicker checks a symbol against the market data provider without
// writing anything. An unresolvable symbol yields Valid: false rather than
// an error, so clients can probe tickers while filling out a form.
func (s *TransactionService) ValidateTicker(ctx context.Context, symbol string) model.TickerValidation {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	quote, err := s.marketData.GetQuote(ctx, symbol)
	if err != nil {
		return model.TickerValidation{
			Valid:        false,
			Symbol:       symbol,
			ErrorMessage: "symbol not found",
		}
	}

	return model.TickerValidation{
		Valid:       true,
		Symbol:      symbol,
		CompanyName: quote.CompanyName,
	}
}

// checkSellAllowed enforces the sell guard for a prospective sell:
// the user must have bought the symbol before, the sell may not be dated
// before the first buy, and the ledger's net position must cover the
// shares being sold.
func (s *TransactionService) checkSellAllowed(userID, symbol string, sellDate time.Time, shares decimal.Decimal) error {
	earliestBuy := s.transactionRepo.EarliestBuyDate(userID, symbol)
	if earliestBuy.IsZero() {
		return apperrors.ErrNoBuyTransactions
	}
	if sellDate.Before(earliestBuy) {
		return apperrors.ErrSellBeforeFirstBuy
	}

	ledger, err := s.transactionRepo.ListByUserAndSymbol(userID, symbol)
	if err != nil {
		return err
	}

	net := decimal.Zero
	for _, t := range ledger {
		net = net.Add(t.SignedShares())
	}

	if net.LessThan(shares) {
		return apperrors.ErrInsufficientShares
	}

	return nil
}

// ExportCSV renders a user's full ledger as CSV, newest first. Free-text
// fields (company name and notes) are quoted with internal quotes doubled;
// all other fields are written bare.
func (s *TransactionService) ExportCSV(userID string) (string, error) {
	transactions, err := s.transactionRepo.ListByUser(userID)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("Type,Symbol,Company Name,Date,Shares,Price Per Share,Broker Fee,Total Amount,Notes\n")

	for _, t := range transactions {
		b.WriteString(string(t.Type))
		b.WriteByte(',')
		b.WriteString(t.Symbol)
		b.WriteByte(',')
		b.WriteString(quoteCsvField(t.CompanyName))
		b.WriteByte(',')
		b.WriteString(t.TransactionDate.Format("2006-01-02"))
		b.WriteByte(',')
		b.WriteString(t.Shares.String())
		b.WriteByte(',')
		b.WriteString(t.PricePerShare.String())
		b.WriteByte(',')
		b.WriteString(t.BrokerFee.String())
		b.WriteByte(',')
		b.WriteString(t.TotalAmount.String())
		b.WriteByte(',')
		b.WriteString(quoteCsvField(t.Notes))
		b.WriteByte('\n')
	}

	return b.String(), nil
}

// quoteCsvField wraps a free-text field in double quotes, doubling any
// embedded quotes.
func quoteCsvField(value string) string {
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}
