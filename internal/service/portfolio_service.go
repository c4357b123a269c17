package service

import (
	"context"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/koonliang/stocktracker/internal/model"
	"github.com/koonliang/stocktracker/internal/repository"
	"github.com/koonliang/stocktracker/internal/yahoo"
)

// sparklineTargetPoints is the approximate number of points a one-year
// series is downsampled to for compact trend display.
const sparklineTargetPoints = 52

// minAnnualizationYears is the shortest horizon worth annualizing; below
// this the simple total return is reported as the yield instead.
const minAnnualizationYears = 0.1

// PortfolioService computes the live valuation snapshot of a user's
// portfolio. It combines the derived holdings with current quotes and two
// historical windows per symbol: a short one for 7-day returns and a
// one-year one for sparklines. All market data is fetched best-effort; a
// symbol with no quote is still reported, valued at zero.
type PortfolioService struct {
	holdingRepo     *repository.HoldingRepository
	transactionRepo *repository.TransactionRepository
	marketData      yahoo.Client
}

// NewPortfolioService creates a new PortfolioService with the provided dependencies.
func NewPortfolioService(
	holdingRepo *repository.HoldingRepository,
	transactionRepo *repository.TransactionRepository,
	marketData yahoo.Client,
) *PortfolioService {
	return &PortfolioService{
		holdingRepo:     holdingRepo,
		transactionRepo: transactionRepo,
		marketData:      marketData,
	}
}

// GetPortfolio builds the full valuation snapshot for a user.
//
// Per holding: current value, cost basis, total return in dollars and
// percent, 7-day return, portfolio weight, and a downsampled one-year
// sparkline. Aggregates: total value, cost, and return, plus an annualized
// yield (CAGR) over the horizon since the user's earliest transaction.
// A user with no holdings gets a zeroed snapshot immediately.
func (s *PortfolioService) GetPortfolio(ctx context.Context, userID string) (model.PortfolioResponse, error) {
	holdings, err := s.holdingRepo.ListByUser(userID)
	if err != nil {
		return model.PortfolioResponse{}, err
	}

	if len(holdings) == 0 {
		return model.PortfolioResponse{
			Holdings:        []model.HoldingSummary{},
			PricesUpdatedAt: time.Now().UTC(),
		}, nil
	}

	symbols := make([]string, len(holdings))
	for i, h := range holdings {
		symbols[i] = h.Symbol
	}

	now := time.Now().UTC()

	// The quote fetch and the two historical windows run concurrently,
	// each internally fanned out per symbol.
	var quotes map[string]yahoo.Quote
	var weekSeries, yearSeries map[string]yahoo.PriceSeries

	done := make(chan struct{})
	go func() {
		weekSeries = fetchSeriesBetween(ctx, s.marketData, symbols, now.AddDate(0, 0, -8), now)
		close(done)
	}()
	yearDone := make(chan struct{})
	go func() {
		yearSeries = fetchSeriesRange(ctx, s.marketData, symbols, "1y")
		close(yearDone)
	}()
	quotes = fetchQuotes(ctx, s.marketData, symbols)
	<-done
	<-yearDone

	summaries := make([]model.HoldingSummary, len(holdings))
	totalValue := decimal.Zero
	totalCost := decimal.Zero

	for i, h := range holdings {
		summary := model.HoldingSummary{
			ID:            h.ID,
			Symbol:        h.Symbol,
			CompanyName:   h.CompanyName,
			Shares:        h.Shares,
			AverageCost:   h.AverageCost,
			SparklineData: []decimal.Decimal{},
		}

		quote, hasQuote := quotes[h.Symbol]
		if hasQuote {
			summary.LastPrice = quote.LastPrice
			summary.PreviousClose = quote.PreviousClose
		}

		summary.CurrentValue = roundMoney(summary.LastPrice.Mul(h.Shares))
		summary.CostBasis = roundMoney(h.AverageCost.Mul(h.Shares))
		summary.TotalReturnDollars = summary.CurrentValue.Sub(summary.CostBasis)
		summary.TotalReturnPercent = roundRate(safeDiv(summary.TotalReturnDollars.Mul(decimal.NewFromInt(100)), summary.CostBasis, RateScale+2))

		if week, ok := weekSeries[h.Symbol]; ok && len(week) > 0 {
			price7dAgo := week[0].Close
			changeDollars := summary.LastPrice.Sub(price7dAgo)
			summary.SevenDayReturnDollars = roundMoney(changeDollars.Mul(h.Shares))
			summary.SevenDayReturnPercent = roundRate(safeDiv(changeDollars.Mul(decimal.NewFromInt(100)), price7dAgo, RateScale+2))
		}

		if year, ok := yearSeries[h.Symbol]; ok {
			summary.SparklineData = downsampleCloses(year, sparklineTargetPoints)
		}

		totalValue = totalValue.Add(summary.CurrentValue)
		totalCost = totalCost.Add(summary.CostBasis)
		summaries[i] = summary
	}

	// Weights need the grand total, so they are a second pass.
	for i := range summaries {
		summaries[i].Weight = roundMoney(safeDiv(summaries[i].CurrentValue.Mul(decimal.NewFromInt(100)), totalValue, MoneyScale+2))
	}

	totalReturnDollars := totalValue.Sub(totalCost)
	totalReturnPercent := roundRate(safeDiv(totalReturnDollars.Mul(decimal.NewFromInt(100)), totalCost, RateScale+2))

	years := s.investmentYears(userID, now)
	annualizedYield := annualizeReturn(totalReturnPercent, years)

	return model.PortfolioResponse{
		Holdings:           summaries,
		TotalValue:         totalValue,
		TotalCost:          totalCost,
		TotalReturnDollars: totalReturnDollars,
		TotalReturnPercent: totalReturnPercent,
		AnnualizedYield:    annualizedYield,
		InvestmentYears:    decimal.NewFromFloat(years).Round(2),
		PricesUpdatedAt:    time.Now().UTC(),
	}, nil
}

// investmentYears measures the horizon since the user's earliest
// transaction in fractional years. Zero when the ledger is empty.
func (s *PortfolioService) investmentYears(userID string, now time.Time) float64 {
	earliest := s.transactionRepo.EarliestTransactionDate(userID)
	if earliest.IsZero() {
		return 0
	}
	days := now.Sub(earliest).Hours() / 24
	return days / 365.25
}

// annualizeReturn converts a total return percentage into a compound annual
// growth rate over the given horizon. Horizons under a tenth of a year are
// too short to annualize meaningfully, so the simple return is passed
// through unchanged.
func annualizeReturn(totalReturnPercent decimal.Decimal, years float64) decimal.Decimal {
	if years < minAnnualizationYears {
		return totalReturnPercent
	}

	growth := 1 + totalReturnPercent.InexactFloat64()/100
	if growth <= 0 {
		// Total loss; CAGR is undefined, report the simple return.
		return totalReturnPercent
	}

	cagr := (math.Pow(growth, 1/years) - 1) * 100
	return decimal.NewFromFloat(cagr).Round(RateScale)
}

// downsampleCloses thins a price series to roughly target points by taking
// every max(1, N/target)-th close in chronological order.
func downsampleCloses(series yahoo.PriceSeries, target int) []decimal.Decimal {
	if len(series) == 0 {
		return []decimal.Decimal{}
	}

	step := len(series) / target
	if step < 1 {
		step = 1
	}

	closes := make([]decimal.Decimal, 0, len(series)/step+1)
	for i := 0; i < len(series); i += step {
		closes = append(closes, series[i].Close)
	}
	return closes
}
