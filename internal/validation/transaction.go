package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/koonliang/stocktracker/internal/api/request"
)

// ValidTransactionType contains the allowed transaction type values.
var ValidTransactionType = map[string]bool{
	"BUY": true, "SELL": true,
}

var symbolPattern = regexp.MustCompile(`^[A-Z0-9.]+$`)

// MaxSymbolLength bounds ticker symbols, including any exchange suffix.
const MaxSymbolLength = 15

// ValidSymbol reports whether an uppercased ticker symbol is well formed.
func ValidSymbol(symbol string) bool {
	return len(symbol) <= MaxSymbolLength && symbolPattern.MatchString(symbol)
}

// ValidateTransactionRequest validates a transaction create/update request.
//
// Required fields:
//   - type: BUY or SELL (case-insensitive)
//   - symbol: [A-Z0-9.]+ after uppercasing, at most 15 characters
//   - transactionDate: YYYY-MM-DD, not in the future
//   - shares: must be positive
//   - pricePerShare: must be positive
//
// brokerFee is optional but may not be negative; notes are capped at 500
// characters. Returns a validation Error with field-specific messages if
// validation fails.
func ValidateTransactionRequest(req request.TransactionRequest) error {
	errors := make(map[string]string)

	txType := strings.ToUpper(strings.TrimSpace(req.Type))
	if txType == "" {
		errors["type"] = "type is required"
	} else if !ValidTransactionType[txType] {
		errors["type"] = fmt.Sprintf("invalid type: %s", req.Type)
	}

	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if symbol == "" {
		errors["symbol"] = "symbol is required"
	} else if !ValidSymbol(symbol) {
		errors["symbol"] = fmt.Sprintf("invalid symbol format: %s", req.Symbol)
	}

	if strings.TrimSpace(req.TransactionDate) == "" {
		errors["transactionDate"] = "transactionDate is required"
	} else {
		date, err := time.Parse("2006-01-02", req.TransactionDate)
		if err != nil {
			errors["transactionDate"] = err.Error()
		} else if date.After(time.Now().UTC()) {
			errors["transactionDate"] = "transaction date cannot be in the future"
		}
	}

	if !req.Shares.IsPositive() {
		errors["shares"] = "shares must be positive"
	}

	if !req.PricePerShare.IsPositive() {
		errors["pricePerShare"] = "pricePerShare must be positive"
	}

	if req.BrokerFee.IsNegative() {
		errors["brokerFee"] = "brokerFee cannot be negative"
	}

	if len(req.Notes) > 500 {
		errors["notes"] = "notes must not exceed 500 characters"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}
