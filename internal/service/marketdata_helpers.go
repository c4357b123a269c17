package service

import (
	"context"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/koonliang/stocktracker/internal/yahoo"
)

// maxConcurrentFetches bounds the parallel fan-out to the market data
// provider. One request per symbol, at most this many in flight.
const maxConcurrentFetches = 5

// fetchQuotes retrieves current quotes for a set of symbols in parallel.
// Best-effort: a failed fetch is logged and the symbol is simply absent
// from the result map.
func fetchQuotes(ctx context.Context, client yahoo.Client, symbols []string) map[string]yahoo.Quote {
	quotes := make(map[string]yahoo.Quote, len(symbols))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)

	for _, symbol := range symbols {
		symbol := symbol
		g.Go(func() error {
			quote, err := client.GetQuote(ctx, symbol)
			if err != nil {
				log.Printf("quote fetch failed for %s: %v", symbol, err)
				return nil
			}
			mu.Lock()
			quotes[symbol] = quote
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()
	return quotes
}

// fetchSeriesRange retrieves historical price series for a set of symbols
// using a named range token, in parallel. Same best-effort contract as
// fetchQuotes.
func fetchSeriesRange(ctx context.Context, client yahoo.Client, symbols []string, rng string) map[string]yahoo.PriceSeries {
	return fetchSeries(symbols, func(symbol string) (yahoo.PriceSeries, error) {
		return client.GetSeriesRange(ctx, symbol, rng)
	})
}

// fetchSeriesBetween retrieves historical price series for a set of symbols
// over an explicit date window, in parallel.
func fetchSeriesBetween(ctx context.Context, client yahoo.Client, symbols []string, start, end time.Time) map[string]yahoo.PriceSeries {
	return fetchSeries(symbols, func(symbol string) (yahoo.PriceSeries, error) {
		return client.GetSeriesBetween(ctx, symbol, start, end)
	})
}

func fetchSeries(symbols []string, fetch func(symbol string) (yahoo.PriceSeries, error)) map[string]yahoo.PriceSeries {
	series := make(map[string]yahoo.PriceSeries, len(symbols))
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(maxConcurrentFetches)

	for _, symbol := range symbols {
		symbol := symbol
		g.Go(func() error {
			s, err := fetch(symbol)
			if err != nil {
				log.Printf("series fetch failed for %s: %v", symbol, err)
				return nil
			}
			mu.Lock()
			series[symbol] = s
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()
	return series
}
