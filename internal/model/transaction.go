package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the direction of a ledger entry. Shares are always stored
// positive; the type carries the sign.
type TransactionType string

const (
	TransactionTypeBuy  TransactionType = "BUY"
	TransactionTypeSell TransactionType = "SELL"
)

// Transaction is a single buy or sell ledger entry owned by a user.
// TotalAmount is derived and must be recomputed whenever shares, price or fee
// change; CalculateTotalAmount keeps the invariant
// totalAmount = shares*pricePerShare + brokerFee.
type Transaction struct {
	ID              string          `json:"id"`
	UserID          string          `json:"-"`
	Type            TransactionType `json:"type"`
	Symbol          string          `json:"symbol"`
	CompanyName     string          `json:"companyName"`
	TransactionDate time.Time       `json:"transactionDate"`
	Shares          decimal.Decimal `json:"shares"`
	PricePerShare   decimal.Decimal `json:"pricePerShare"`
	BrokerFee       decimal.Decimal `json:"brokerFee"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	Notes           string          `json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"createdAt,omitempty"`
	UpdatedAt       time.Time       `json:"updatedAt,omitempty"`
}

// CalculateTotalAmount recomputes the derived TotalAmount field.
func (t *Transaction) CalculateTotalAmount() {
	t.TotalAmount = t.Shares.Mul(t.PricePerShare).Add(t.BrokerFee)
}

// SignedShares returns the share quantity with the transaction's direction
// applied: positive for BUY, negative for SELL.
func (t *Transaction) SignedShares() decimal.Decimal {
	if t.Type == TransactionTypeSell {
		return t.Shares.Neg()
	}
	return t.Shares
}

// TickerValidation is the outcome of checking a symbol against the market
// data provider.
type TickerValidation struct {
	Valid        bool   `json:"valid"`
	Symbol       string `json:"symbol"`
	CompanyName  string `json:"companyName,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}
