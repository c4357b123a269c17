package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// HoldingSummary is one position of a portfolio snapshot, combining the
// derived Holding with live market data. A missing quote leaves LastPrice at
// zero and PreviousClose nil; the position is still reported.
type HoldingSummary struct {
	ID                    string            `json:"id"`
	Symbol                string            `json:"symbol"`
	CompanyName           string            `json:"companyName"`
	Shares                decimal.Decimal   `json:"shares"`
	AverageCost           decimal.Decimal   `json:"averageCost"`
	LastPrice             decimal.Decimal   `json:"lastPrice"`
	PreviousClose         *decimal.Decimal  `json:"previousClose"`
	CurrentValue          decimal.Decimal   `json:"currentValue"`
	CostBasis             decimal.Decimal   `json:"costBasis"`
	TotalReturnDollars    decimal.Decimal   `json:"totalReturnDollars"`
	TotalReturnPercent    decimal.Decimal   `json:"totalReturnPercent"`
	SevenDayReturnDollars decimal.Decimal   `json:"sevenDayReturnDollars"`
	SevenDayReturnPercent decimal.Decimal   `json:"sevenDayReturnPercent"`
	Weight                decimal.Decimal   `json:"weight"`
	SparklineData         []decimal.Decimal `json:"sparklineData"`
}

// PortfolioResponse is the full valuation snapshot for a user. It is never
// persisted; PricesUpdatedAt marks when the quotes behind it were fetched.
type PortfolioResponse struct {
	Holdings           []HoldingSummary `json:"holdings"`
	TotalValue         decimal.Decimal  `json:"totalValue"`
	TotalCost          decimal.Decimal  `json:"totalCost"`
	TotalReturnDollars decimal.Decimal  `json:"totalReturnDollars"`
	TotalReturnPercent decimal.Decimal  `json:"totalReturnPercent"`
	AnnualizedYield    decimal.Decimal  `json:"annualizedYield"`
	InvestmentYears    decimal.Decimal  `json:"investmentYears"`
	PricesUpdatedAt    time.Time        `json:"pricesUpdatedAt"`
}

// PerformancePoint is one day of reconstructed portfolio value. Points are
// emitted ascending by date; daily changes are relative to the previous
// emitted point and zero for the first.
type PerformancePoint struct {
	Date               string          `json:"date"`
	TotalValue         decimal.Decimal `json:"totalValue"`
	DailyChange        decimal.Decimal `json:"dailyChange"`
	DailyChangePercent decimal.Decimal `json:"dailyChangePercent"`
}
