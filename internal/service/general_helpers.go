package service

import "github.com/shopspring/decimal"

// Standard rounding scales used throughout the service layer. Monetary
// amounts round to cents, rates and unit costs keep four places so that
// small percentage moves and fractional-share cost bases survive rounding.
const (
	MoneyScale = 2
	RateScale  = 4
)

// roundMoney rounds a decimal to two places, half up. Used for monetary
// values in API responses and persisted aggregates.
func roundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}

// roundRate rounds a decimal to four places, half up. Used for percentages,
// ratios, and per-share cost intermediates.
func roundRate(d decimal.Decimal) decimal.Decimal {
	return d.Round(RateScale)
}

// safeDiv divides a by b at the given scale, returning zero when b is zero.
func safeDiv(a, b decimal.Decimal, scale int32) decimal.Decimal {
	if b.IsZero() {
		return decimal.Zero
	}
	return a.DivRound(b, scale)
}
