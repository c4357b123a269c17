package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// Client defines the market data operations consumed by the service layer.
// FinanceClient is the production implementation; tests substitute a mock.
type Client interface {
	GetQuote(ctx context.Context, symbol string) (Quote, error)
	GetSeriesBetween(ctx context.Context, symbol string, start, end time.Time) (PriceSeries, error)
	GetSeriesRange(ctx context.Context, symbol string, rng string) (PriceSeries, error)
}

// FinanceClient provides methods for fetching financial data from the Yahoo
// Finance chart API. It wraps an HTTP client and provides convenient methods
// for querying current quotes and historical price series.
type FinanceClient struct {
	baseURL    string
	httpClient *http.Client
}

var _ Client = (*FinanceClient)(nil)

// NewFinanceClient creates a new Yahoo Finance client.
//
// Parameters:
//   - baseURL: Chart API endpoint without a trailing slash,
//     e.g. "https://query1.finance.yahoo.com/v8/finance/chart"
//
// Returns:
//   - *FinanceClient: A new client instance ready for use
func NewFinanceClient(baseURL string) *FinanceClient {
	return &FinanceClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// GetQuote fetches the current market snapshot for a symbol.
// It queries a short 5-day window and reads the live price and previous
// close from the response metadata, falling back to the last two closes
// in the series when the metadata fields are absent.
//
// Parameters:
//   - symbol: Stock ticker symbol (e.g., "AAPL", "MSFT")
//
// Returns:
//   - Quote: Current price, previous close, and company name
//   - error: If the HTTP request fails, the API returns an error, or no
//     results are found for the symbol
func (c *FinanceClient) GetQuote(ctx context.Context, symbol string) (Quote, error) {
	url := fmt.Sprintf("%s/%s?interval=1d&range=5d", c.baseURL, symbol)
	result, err := c.queryYahoo(ctx, url)
	if err != nil {
		return Quote{}, err
	}
	if len(result.Chart.Result) == 0 {
		return Quote{}, fmt.Errorf("no results returned for symbol %s", symbol)
	}

	res := result.Chart.Result[0]

	name := res.Meta.LongName
	if name == "" {
		name = res.Meta.Shortname
	}

	quote := Quote{
		Symbol:      res.Meta.Symbol,
		CompanyName: name,
	}

	if res.Meta.RegularMarketPrice != nil {
		quote.LastPrice = decimal.NewFromFloat(*res.Meta.RegularMarketPrice)
	}
	if res.Meta.ChartPreviousClose != nil {
		pc := decimal.NewFromFloat(*res.Meta.ChartPreviousClose)
		quote.PreviousClose = &pc
	}

	if quote.LastPrice.IsZero() || quote.PreviousClose == nil {
		series := seriesFromResult(res)
		if quote.LastPrice.IsZero() {
			if len(series) == 0 {
				return Quote{}, fmt.Errorf("no price data returned for symbol %s", symbol)
			}
			quote.LastPrice = series[len(series)-1].Close
		}
		if quote.PreviousClose == nil && len(series) >= 2 {
			pc := series[len(series)-2].Close
			quote.PreviousClose = &pc
		}
	}

	return quote, nil
}

// GetSeriesBetween fetches daily closing prices for a symbol within a
// specific date range. The range is expressed with Unix timestamps, giving
// precise control over the requested window.
//
// Parameters:
//   - symbol: Stock ticker symbol (e.g., "AAPL", "MSFT")
//   - start: Beginning of date range (inclusive)
//   - end: End of date range (inclusive)
//
// Returns:
//   - PriceSeries: Chronologically ordered daily closes, nulls skipped
//   - error: If the HTTP request fails, the API returns an error, or no
//     results are found for the symbol
func (c *FinanceClient) GetSeriesBetween(ctx context.Context, symbol string, start, end time.Time) (PriceSeries, error) {
	url := fmt.Sprintf(
		"%s/%s?interval=1d&period1=%d&period2=%d",
		c.baseURL,
		symbol,
		start.Unix(),
		end.Unix(),
	)
	return c.fetchSeries(ctx, symbol, url)
}

// GetSeriesRange fetches daily closing prices for a symbol using one of
// Yahoo's named range tokens (e.g. "1y", "5y", "max"). The "max" token is
// the only way to request a symbol's full available history.
//
// Parameters:
//   - symbol: Stock ticker symbol (e.g., "AAPL", "MSFT")
//   - rng: Yahoo range token
//
// Returns:
//   - PriceSeries: Chronologically ordered daily closes, nulls skipped
//   - error: If the HTTP request fails, the API returns an error, or no
//     results are found for the symbol
func (c *FinanceClient) GetSeriesRange(ctx context.Context, symbol string, rng string) (PriceSeries, error) {
	url := fmt.Sprintf("%s/%s?interval=1d&range=%s", c.baseURL, symbol, rng)
	return c.fetchSeries(ctx, symbol, url)
}

func (c *FinanceClient) fetchSeries(ctx context.Context, symbol, url string) (PriceSeries, error) {
	result, err := c.queryYahoo(ctx, url)
	if err != nil {
		return nil, err
	}
	if len(result.Chart.Result) == 0 {
		return nil, fmt.Errorf("no results returned for symbol %s", symbol)
	}

	series := seriesFromResult(result.Chart.Result[0])
	if len(series) == 0 {
		return nil, fmt.Errorf("no price data returned for symbol %s", symbol)
	}

	return series, nil
}

// seriesFromResult converts the timestamp and close arrays of a chart result
// into a PriceSeries. Entries with null closes are skipped.
func seriesFromResult(res Result) PriceSeries {
	if len(res.Indicators.Quote) == 0 {
		return nil
	}
	closes := res.Indicators.Quote[0].Close
	if len(closes) != len(res.Timestamp) {
		return nil
	}

	series := make(PriceSeries, 0, len(res.Timestamp))
	for i, ts := range res.Timestamp {
		if closes[i] == nil {
			continue
		}
		series = append(series, PricePoint{
			Date:  time.Unix(ts, 0).UTC().Truncate(24 * time.Hour),
			Close: decimal.NewFromFloat(*closes[i]),
		})
	}
	return series
}

// queryYahoo is an internal helper that executes HTTP requests to the Yahoo
// Finance chart API. This method handles the common logic for making
// requests, reading responses, parsing JSON, and checking for API errors.
//
// The method sets required headers:
//   - User-Agent: Mimics a browser to avoid API blocking
//   - Accept: Requests JSON response format
func (c *FinanceClient) queryYahoo(ctx context.Context, url string) (Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Response{}, err
	}

	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, err
	}

	var response Response
	if err := json.Unmarshal(data, &response); err != nil {
		return Response{}, err
	}

	if response.Chart.Error != nil {
		return response, fmt.Errorf("yahoo error: %s", *response.Chart.Error)
	}

	return response, nil
}
