package spread

import (
	"context"
	"math"
	"strconv"
	"strings"
)

// PriceSnapshot maps native symbols to their latest price. A missing entry
// means "no current price", never zero.
type PriceSnapshot map[string]float64

// BuildSnapshot parses ticker records. Records with an empty symbol or a
// price that is missing, non-numeric, or not positive are skipped.
func BuildSnapshot(tickers []Ticker) PriceSnapshot {
	out := make(PriceSnapshot, len(tickers))
	for _, t := range tickers {
		if t.Symbol == "" {
			continue
		}
		p, err := strconv.ParseFloat(strings.TrimSpace(t.Price), 64)
		if err != nil || math.IsNaN(p) || math.IsInf(p, 0) || p <= 0 {
			continue
		}
		out[t.Symbol] = p
	}
	return out
}

// FetchResult is the outcome of one ticker fetch. Failure is set when the
// venue could not be reached or decoded; Prices is then empty but non-nil,
// so callers can carry on with fewer opportunities.
type FetchResult struct {
	Prices  PriceSnapshot
	Failure error
}

// FetchPrices loads a venue's ticker feed, failing open to an empty snapshot.
func FetchPrices(ctx context.Context, v Venue) FetchResult {
	tickers, err := v.Tickers(ctx)
	if err != nil {
		return FetchResult{
			Prices:  PriceSnapshot{},
			Failure: &VenueError{Venue: v.Name(), Kind: FailurePrices, Err: err},
		}
	}
	return FetchResult{Prices: BuildSnapshot(tickers)}
}
