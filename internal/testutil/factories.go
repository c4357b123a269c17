package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/koonliang/stocktracker/internal/model"
)

// MakeID generates a fresh UUID string for test entities.
func MakeID() string {
	return uuid.New().String()
}

// CreateUser creates a regular user row and returns it.
//
// Example usage:
//
//	user := testutil.CreateUser(t, db)
func CreateUser(t *testing.T, db *sql.DB) model.User {
	t.Helper()

	user := model.User{
		ID:        MakeID(),
		Name:      "Test User",
		Email:     MakeID() + "@example.com",
		IsDemo:    false,
		CreatedAt: time.Now().UTC(),
	}

	query := `INSERT INTO user (id, name, email, is_demo, created_at) VALUES (?, ?, ?, ?, ?)`
	_, err := db.Exec(query, user.ID, user.Name, user.Email, user.IsDemo, user.CreatedAt.Format(time.RFC3339))
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// TransactionBuilder provides a fluent interface for creating test ledger
// entries.
//
// Example usage:
//
//	// Simple buy with defaults
//	tx := testutil.NewTransaction(user.ID).Build(t, db)
//
//	// Customized sell
//	tx := testutil.NewTransaction(user.ID).
//	    Sell().
//	    WithSymbol("MSFT").
//	    WithShares("5").
//	    WithPrice("320.00").
//	    WithDate(date).
//	    Build(t, db)
type TransactionBuilder struct {
	ID            string
	UserID        string
	Type          model.TransactionType
	Symbol        string
	CompanyName   string
	Date          time.Time
	Shares        string
	PricePerShare string
	BrokerFee     string
	Notes         string
}

// NewTransaction creates a TransactionBuilder with sensible defaults:
// a BUY of 10 AAPL shares at 100.00 dated yesterday.
func NewTransaction(userID string) *TransactionBuilder {
	return &TransactionBuilder{
		ID:            MakeID(),
		UserID:        userID,
		Type:          model.TransactionTypeBuy,
		Symbol:        "AAPL",
		CompanyName:   "Apple Inc.",
		Date:          time.Now().UTC().AddDate(0, 0, -1).Truncate(24 * time.Hour),
		Shares:        "10",
		PricePerShare: "100.00",
		BrokerFee:     "0",
	}
}

// Buy marks the transaction as a purchase.
func (b *TransactionBuilder) Buy() *TransactionBuilder {
	b.Type = model.TransactionTypeBuy
	return b
}

// Sell marks the transaction as a sale.
func (b *TransactionBuilder) Sell() *TransactionBuilder {
	b.Type = model.TransactionTypeSell
	return b
}

// WithSymbol sets a custom symbol and a matching company name.
func (b *TransactionBuilder) WithSymbol(symbol string) *TransactionBuilder {
	b.Symbol = symbol
	b.CompanyName = symbol + " Inc."
	return b
}

// WithCompanyName sets a custom company name.
func (b *TransactionBuilder) WithCompanyName(name string) *TransactionBuilder {
	b.CompanyName = name
	return b
}

// WithDate sets a custom transaction date.
func (b *TransactionBuilder) WithDate(date time.Time) *TransactionBuilder {
	b.Date = date
	return b
}

// WithShares sets a custom share quantity.
func (b *TransactionBuilder) WithShares(shares string) *TransactionBuilder {
	b.Shares = shares
	return b
}

// WithPrice sets a custom price per share.
func (b *TransactionBuilder) WithPrice(price string) *TransactionBuilder {
	b.PricePerShare = price
	return b
}

// WithFee sets a custom broker fee.
func (b *TransactionBuilder) WithFee(fee string) *TransactionBuilder {
	b.BrokerFee = fee
	return b
}

// WithNotes sets custom notes.
func (b *TransactionBuilder) WithNotes(notes string) *TransactionBuilder {
	b.Notes = notes
	return b
}

// Build creates the transaction in the database and returns it.
func (b *TransactionBuilder) Build(t *testing.T, db *sql.DB) model.Transaction {
	t.Helper()

	now := time.Now().UTC()
	tx := model.Transaction{
		ID:              b.ID,
		UserID:          b.UserID,
		Type:            b.Type,
		Symbol:          b.Symbol,
		CompanyName:     b.CompanyName,
		TransactionDate: b.Date,
		Shares:          decimal.RequireFromString(b.Shares),
		PricePerShare:   decimal.RequireFromString(b.PricePerShare),
		BrokerFee:       decimal.RequireFromString(b.BrokerFee),
		Notes:           b.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	tx.CalculateTotalAmount()

	query := `
		INSERT INTO "transaction" (
			id, user_id, type, symbol, company_name, transaction_date,
			shares, price_per_share, broker_fee, total_amount, notes,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query,
		tx.ID,
		tx.UserID,
		string(tx.Type),
		tx.Symbol,
		tx.CompanyName,
		tx.TransactionDate.Format("2006-01-02"),
		tx.Shares.String(),
		tx.PricePerShare.String(),
		tx.BrokerFee.String(),
		tx.TotalAmount.String(),
		tx.Notes,
		tx.CreatedAt.Format(time.RFC3339),
		tx.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		t.Fatalf("Failed to create test transaction: %v", err)
	}

	return tx
}
