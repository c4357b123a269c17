package yahoo

import (
	"time"

	"github.com/shopspring/decimal"
)

// Response represents the raw JSON response structure from the Yahoo Finance
// chart API. This type maps directly to the wire format, containing nested
// structures for metadata, timestamps, and price indicators.
//
// The structure includes:
//   - Chart.Result: Array of result objects (typically contains one element)
//   - Chart.Result[].Meta: Symbol metadata (name, currency, last price)
//   - Chart.Result[].Timestamp: Unix timestamps for each data point
//   - Chart.Result[].Indicators: Price data arrays (open, close, high, low, volume)
//   - Chart.Error: Optional error message from Yahoo API
type Response struct {
	Chart Chart `json:"chart"`
}

// Chart is the top-level payload of a chart API response.
type Chart struct {
	Result []Result `json:"result"`
	Error  *string  `json:"error"`
}

// Result holds the data for a single symbol within a chart response.
type Result struct {
	Meta       Meta                `json:"meta"`
	Timestamp  []int64             `json:"timestamp"`
	Indicators IndicatorsContainer `json:"indicators"`
}

// Meta contains symbol metadata and the current market snapshot. Yahoo
// reports the live price and previous close here even for historical
// range queries.
type Meta struct {
	Currency           string   `json:"currency"`
	Symbol             string   `json:"symbol"`
	ExchangeName       string   `json:"exchangeName"`
	FullExchangeName   string   `json:"fullExchangeName"`
	LongName           string   `json:"longName"`
	Shortname          string   `json:"shortName"`
	RegularMarketPrice *float64 `json:"regularMarketPrice"`
	ChartPreviousClose *float64 `json:"chartPreviousClose"`
}

// IndicatorsContainer wraps the quote arrays of a chart result.
type IndicatorsContainer struct {
	Quote []RawQuote `json:"quote"`
}

// RawQuote holds the OHLCV arrays for a chart result. Values are pointers
// because Yahoo returns explicit nulls for non-trading gaps in a series.
type RawQuote struct {
	Open   []*float64 `json:"open"`
	Close  []*float64 `json:"close"`
	Volume []*int64   `json:"volume"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
}

// Quote is the application's internal snapshot of a symbol's current market
// state after parsing the raw Response.
//
// Fields:
//   - Symbol: Ticker as echoed back by the data provider
//   - CompanyName: Long name when available, otherwise the short name
//   - LastPrice: Most recent market price
//   - PreviousClose: Prior session's closing price, nil when unavailable
type Quote struct {
	Symbol        string
	CompanyName   string
	LastPrice     decimal.Decimal
	PreviousClose *decimal.Decimal
}

// PricePoint represents a single day's closing price for a symbol.
// The date is truncated to midnight UTC.
type PricePoint struct {
	Date  time.Time
	Close decimal.Decimal
}

// PriceSeries is a chronologically ordered sequence of daily closing prices.
type PriceSeries []PricePoint

// CloseOn searches the series for a closing price on a specific date.
// The comparison is date-only; time components are ignored.
//
// Returns the closing price and true if found, or zero and false otherwise.
func (s PriceSeries) CloseOn(target time.Time) (decimal.Decimal, bool) {
	targetDay := target.UTC().Truncate(24 * time.Hour)
	for _, p := range s {
		if p.Date.Equal(targetDay) {
			return p.Close, true
		}
	}
	return decimal.Decimal{}, false
}
