package spread

import (
	"context"
	"io"
	"log/slog"

	"github.com/alanyoungcy/spreadbot/internal/domain"
)

// fakeVenue is an in-memory Venue.
type fakeVenue struct {
	name        string
	listings    []Listing
	tickers     []Ticker
	listingsErr error
	tickersErr  error
	panicOn     string
}

func (f *fakeVenue) Name() string { return f.name }

func (f *fakeVenue) Listings(context.Context) ([]Listing, error) {
	if f.panicOn == "listings" {
		panic("listings exploded")
	}
	return f.listings, f.listingsErr
}

func (f *fakeVenue) Tickers(context.Context) ([]Ticker, error) {
	if f.panicOn == "tickers" {
		panic("tickers exploded")
	}
	return f.tickers, f.tickersErr
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func pair(base, quote string) domain.Pair {
	return domain.Pair{Base: base, Quote: quote}
}
