package service

import (
	"context"
	"log"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/koonliang/stocktracker/internal/apperrors"
	"github.com/koonliang/stocktracker/internal/model"
	"github.com/koonliang/stocktracker/internal/repository"
	"github.com/koonliang/stocktracker/internal/yahoo"
)

// validRanges is the set of accepted performance range tokens. "all" is
// resolved to a concrete range from the ledger's earliest transaction.
var validRanges = map[string]bool{
	"1d": true, "7d": true, "1mo": true, "3mo": true, "ytd": true,
	"1y": true, "2y": true, "5y": true, "10y": true, "max": true,
	"all": true,
}

// PerformanceService reconstructs a portfolio's historical value by
// replaying the transaction ledger against historical price series.
//
// The preferred path replays the ledger: for every date in the fetched
// series, each symbol's net share count as of that date is multiplied by
// that date's closing price. A fallback path applies today's fixed share
// counts retroactively; it runs only when the ledger is empty and is
// explicitly lower fidelity.
type PerformanceService struct {
	holdingRepo     *repository.HoldingRepository
	transactionRepo *repository.TransactionRepository
	marketData      yahoo.Client
}

// NewPerformanceService creates a new PerformanceService with the provided dependencies.
func NewPerformanceService(
	holdingRepo *repository.HoldingRepository,
	transactionRepo *repository.TransactionRepository,
	marketData yahoo.Client,
) *PerformanceService {
	return &PerformanceService{
		holdingRepo:     holdingRepo,
		transactionRepo: transactionRepo,
		marketData:      marketData,
	}
}

// GetPerformanceHistory reconstructs the daily value of a user's portfolio
// over the requested range, ascending by date. Today's data point is always
// excluded since the trading day may be incomplete. Dates where the
// portfolio had no value yet are omitted.
func (s *PerformanceService) GetPerformanceHistory(ctx context.Context, userID, rng string) ([]model.PerformancePoint, error) {
	if !validRanges[rng] {
		return nil, apperrors.ErrInvalidRange
	}

	holdings, err := s.holdingRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	if len(holdings) == 0 {
		return []model.PerformancePoint{}, nil
	}

	if rng == "all" {
		rng = s.effectiveRange(userID)
	}

	symbols := make([]string, len(holdings))
	for i, h := range holdings {
		symbols[i] = h.Symbol
	}

	now := time.Now().UTC()
	series := s.fetchRange(ctx, symbols, rng, now)

	ledger, err := s.transactionRepo.ListByUserChronological(userID)
	if err != nil {
		return nil, err
	}

	dates := collectSeriesDates(series, now)

	var valueOn func(date time.Time) decimal.Decimal
	if len(ledger) > 0 {
		valueOn = s.ledgerReplayValuer(ledger, series)
	} else {
		log.Printf("performance history for user %s: ledger empty, falling back to current share counts (lower fidelity)", userID)
		valueOn = s.fixedHoldingsValuer(holdings, series)
	}

	points := []model.PerformancePoint{}
	prev := decimal.Zero
	for _, date := range dates {
		total := roundMoney(valueOn(date))
		if total.IsZero() {
			continue
		}

		point := model.PerformancePoint{
			Date:       date.Format("2006-01-02"),
			TotalValue: total,
		}
		if len(points) > 0 {
			point.DailyChange = total.Sub(prev)
			point.DailyChangePercent = roundRate(safeDiv(point.DailyChange.Mul(decimal.NewFromInt(100)), prev, RateScale+2))
		}

		points = append(points, point)
		prev = total
	}

	return points, nil
}

// effectiveRange resolves "all" to the smallest named range covering the
// user's earliest transaction.
func (s *PerformanceService) effectiveRange(userID string) string {
	earliest := s.transactionRepo.EarliestTransactionDate(userID)
	if earliest.IsZero() {
		return "1y"
	}

	years := time.Now().UTC().Sub(earliest).Hours() / 24 / 365
	switch {
	case years < 1:
		return "1y"
	case years < 2:
		return "2y"
	case years < 5:
		return "5y"
	case years < 10:
		return "10y"
	default:
		return "max"
	}
}

// fetchRange retrieves the price series for all symbols over a named range.
// Fixed-duration ranges are translated to an explicit date window; "max"
// and "ytd" use the provider's own range tokens.
func (s *PerformanceService) fetchRange(ctx context.Context, symbols []string, rng string, now time.Time) map[string]yahoo.PriceSeries {
	var start time.Time
	switch rng {
	case "1d":
		start = now.AddDate(0, 0, -1)
	case "7d":
		start = now.AddDate(0, 0, -7)
	case "1mo":
		start = now.AddDate(0, -1, 0)
	case "3mo":
		start = now.AddDate(0, -3, 0)
	case "1y":
		start = now.AddDate(-1, 0, 0)
	case "2y":
		start = now.AddDate(-2, 0, 0)
	case "5y":
		start = now.AddDate(-5, 0, 0)
	case "10y":
		start = now.AddDate(-10, 0, 0)
	default:
		return fetchSeriesRange(ctx, s.marketData, symbols, rng)
	}

	return fetchSeriesBetween(ctx, s.marketData, symbols, start, now)
}

// ledgerReplayValuer returns a valuation function that computes the
// portfolio's value on a date by summing, per symbol, the net shares held
// as of that date times that date's closing price. A symbol with no price
// on a date contributes nothing for that date.
func (s *PerformanceService) ledgerReplayValuer(ledger []model.Transaction, series map[string]yahoo.PriceSeries) func(time.Time) decimal.Decimal {
	bySymbol := make(map[string][]model.Transaction)
	for _, t := range ledger {
		bySymbol[t.Symbol] = append(bySymbol[t.Symbol], t)
	}

	return func(date time.Time) decimal.Decimal {
		total := decimal.Zero
		for symbol, transactions := range bySymbol {
			prices, ok := series[symbol]
			if !ok {
				continue
			}
			closePrice, ok := prices.CloseOn(date)
			if !ok {
				continue
			}

			net := decimal.Zero
			for _, t := range transactions {
				if t.TransactionDate.After(date) {
					break
				}
				net = net.Add(t.SignedShares())
			}
			if net.IsPositive() {
				total = total.Add(net.Mul(closePrice))
			}
		}
		return total
	}
}

// fixedHoldingsValuer returns a valuation function that applies today's
// share counts to every historical date. Only used when the ledger is
// empty; the result overstates history before the positions were built.
func (s *PerformanceService) fixedHoldingsValuer(holdings []model.Holding, series map[string]yahoo.PriceSeries) func(time.Time) decimal.Decimal {
	return func(date time.Time) decimal.Decimal {
		total := decimal.Zero
		for _, h := range holdings {
			prices, ok := series[h.Symbol]
			if !ok {
				continue
			}
			closePrice, ok := prices.CloseOn(date)
			if !ok {
				continue
			}
			total = total.Add(h.Shares.Mul(closePrice))
		}
		return total
	}
}

// collectSeriesDates builds the sorted union of dates across all fetched
// series, excluding today and anything later.
func collectSeriesDates(series map[string]yahoo.PriceSeries, now time.Time) []time.Time {
	today := now.Truncate(24 * time.Hour)
	seen := make(map[time.Time]bool)

	for _, prices := range series {
		for _, p := range prices {
			if !p.Date.Before(today) {
				continue
			}
			seen[p.Date] = true
		}
	}

	dates := make([]time.Time, 0, len(seen))
	for date := range seen {
		dates = append(dates, date)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	return dates
}
