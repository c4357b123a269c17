package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Holding is the derived current position for one user and symbol. It is
// always reproducible by replaying that user's transactions for the symbol in
// date order and is never hand-edited. Shares is strictly positive; a zero or
// negative replay result deletes the row instead.
type Holding struct {
	ID          string          `json:"id"`
	UserID      string          `json:"-"`
	Symbol      string          `json:"symbol"`
	CompanyName string          `json:"companyName"`
	Shares      decimal.Decimal `json:"shares"`
	AverageCost decimal.Decimal `json:"averageCost"`
	CreatedAt   time.Time       `json:"createdAt,omitempty"`
	UpdatedAt   time.Time       `json:"updatedAt,omitempty"`
}
