// Package request defines the JSON request bodies accepted by the API layer.
package request

import "github.com/shopspring/decimal"

// TransactionRequest is the body for creating or fully updating a ledger
// entry. TransactionDate is a YYYY-MM-DD string; shares and prices accept
// JSON numbers or numeric strings.
type TransactionRequest struct {
	Type            string          `json:"type"`
	Symbol          string          `json:"symbol"`
	TransactionDate string          `json:"transactionDate"`
	Shares          decimal.Decimal `json:"shares"`
	PricePerShare   decimal.Decimal `json:"pricePerShare"`
	BrokerFee       decimal.Decimal `json:"brokerFee"`
	Notes           string          `json:"notes"`
}
