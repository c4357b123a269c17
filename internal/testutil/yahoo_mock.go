package testutil

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/koonliang/stocktracker/internal/yahoo"
)

// MockMarketClient is a mock implementation of yahoo.Client for testing.
// It serves predefined quotes and price series per symbol instead of making
// actual API calls. A symbol without configured data behaves like an unknown
// ticker and returns an error, which is how tests exercise the invalid
// ticker and missing quote paths.
type MockMarketClient struct {
	// Quotes maps symbol to the quote returned from GetQuote
	Quotes map[string]yahoo.Quote
	// Series maps symbol to the price series returned from series queries
	Series map[string]yahoo.PriceSeries
	// Err, when set, is returned from every method
	Err error
	// QueryCount tracks how many times any query method was called
	QueryCount int
}

var _ yahoo.Client = (*MockMarketClient)(nil)

// NewMockMarketClient creates an empty mock market data client.
// Configure it with WithQuote and WithSeries before use.
func NewMockMarketClient() *MockMarketClient {
	return &MockMarketClient{
		Quotes: make(map[string]yahoo.Quote),
		Series: make(map[string]yahoo.PriceSeries),
	}
}

// WithQuote configures the quote returned for a symbol. The company name
// defaults to "<symbol> Inc." and the previous close is left unset.
func (m *MockMarketClient) WithQuote(symbol string, lastPrice float64) *MockMarketClient {
	m.Quotes[symbol] = yahoo.Quote{
		Symbol:      symbol,
		CompanyName: symbol + " Inc.",
		LastPrice:   decimal.NewFromFloat(lastPrice),
	}
	return m
}

// WithFullQuote configures a complete quote for a symbol.
func (m *MockMarketClient) WithFullQuote(symbol, companyName string, lastPrice, previousClose float64) *MockMarketClient {
	pc := decimal.NewFromFloat(previousClose)
	m.Quotes[symbol] = yahoo.Quote{
		Symbol:        symbol,
		CompanyName:   companyName,
		LastPrice:     decimal.NewFromFloat(lastPrice),
		PreviousClose: &pc,
	}
	return m
}

// WithSeries configures the historical price series returned for a symbol.
func (m *MockMarketClient) WithSeries(symbol string, series yahoo.PriceSeries) *MockMarketClient {
	m.Series[symbol] = series
	return m
}

// WithError configures the mock to return the specified error from every call.
func (m *MockMarketClient) WithError(err error) *MockMarketClient {
	m.Err = err
	return m
}

// GetQuote returns the configured quote for the symbol, or an error when the
// symbol has no quote configured.
func (m *MockMarketClient) GetQuote(_ context.Context, symbol string) (yahoo.Quote, error) {
	m.QueryCount++
	if m.Err != nil {
		return yahoo.Quote{}, m.Err
	}
	quote, ok := m.Quotes[symbol]
	if !ok {
		return yahoo.Quote{}, fmt.Errorf("no results returned for symbol %s", symbol)
	}
	return quote, nil
}

// GetSeriesBetween returns the configured series for the symbol, filtered to
// the requested window.
func (m *MockMarketClient) GetSeriesBetween(_ context.Context, symbol string, start, end time.Time) (yahoo.PriceSeries, error) {
	m.QueryCount++
	if m.Err != nil {
		return nil, m.Err
	}
	series, ok := m.Series[symbol]
	if !ok {
		return nil, fmt.Errorf("no results returned for symbol %s", symbol)
	}

	filtered := make(yahoo.PriceSeries, 0, len(series))
	for _, p := range series {
		if p.Date.Before(start) || p.Date.After(end) {
			continue
		}
		filtered = append(filtered, p)
	}
	if len(filtered) == 0 {
		return nil, fmt.Errorf("no price data returned for symbol %s", symbol)
	}
	return filtered, nil
}

// GetSeriesRange returns the full configured series for the symbol,
// ignoring the range token.
func (m *MockMarketClient) GetSeriesRange(_ context.Context, symbol string, _ string) (yahoo.PriceSeries, error) {
	m.QueryCount++
	if m.Err != nil {
		return nil, m.Err
	}
	series, ok := m.Series[symbol]
	if !ok {
		return nil, fmt.Errorf("no results returned for symbol %s", symbol)
	}
	return series, nil
}

// MakeSeries builds a daily price series starting at the given date, one
// closing price per consecutive day. Dates are truncated to midnight UTC to
// match what the production client produces.
func MakeSeries(start time.Time, closes ...float64) yahoo.PriceSeries {
	day := start.UTC().Truncate(24 * time.Hour)
	series := make(yahoo.PriceSeries, 0, len(closes))
	for i, c := range closes {
		series = append(series, yahoo.PricePoint{
			Date:  day.AddDate(0, 0, i),
			Close: decimal.NewFromFloat(c),
		})
	}
	return series
}
