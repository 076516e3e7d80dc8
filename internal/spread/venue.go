// Package spread reconciles two venues' instrument lists onto canonical pairs,
// measures the directional price differential of every pair both venues list,
// and keeps track of which opportunities are new from one poll to the next.
package spread

import (
	"context"
	"fmt"

	"github.com/alanyoungcy/spreadbot/internal/domain"
)

// Venue is a price source. Implementations own the transport and decode the
// venue's payloads into typed records; interpreting those records is left to
// this package.
type Venue interface {
	// Name is the display label used in direction labels, e.g. "MEXC".
	Name() string
	Listings(ctx context.Context) ([]Listing, error)
	Tickers(ctx context.Context) ([]Ticker, error)
}

// Listing is one instrument from a venue's listing endpoint.
type Listing struct {
	// Symbol is the venue-native identifier, e.g. "BTCUSDT" or "BTC_USDT".
	Symbol string
	// Base and Quote are set when the venue reports the assets separately.
	Base  string
	Quote string
	// Delimiter splits Symbol when Base and Quote are not reported.
	Delimiter string
}

// Pair resolves the listing's canonical pair.
func (l Listing) Pair() (domain.Pair, error) {
	if l.Base != "" || l.Quote != "" {
		return domain.PairFromAssets(l.Base, l.Quote)
	}
	return domain.ParsePair(l.Symbol, l.Delimiter)
}

// Ticker is one record from a venue's ticker endpoint. Price is kept exactly
// as the venue sent it.
type Ticker struct {
	Symbol string
	Price  string
}

// FailureKind says which half of a venue fetch failed.
type FailureKind string

const (
	FailureCatalog FailureKind = "catalog"
	FailurePrices  FailureKind = "prices"
)

// VenueError records a fetch that was absorbed into an empty result.
type VenueError struct {
	Venue string
	Kind  FailureKind
	Err   error
}

func (e *VenueError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Venue, e.Kind, e.Err)
}

func (e *VenueError) Unwrap() error {
	return e.Err
}
