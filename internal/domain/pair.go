package domain

import (
	"fmt"
	"strings"
)

// Pair is the canonical (base, quote) key used to line up instruments that
// different venues list under different native symbols. Both fields are
// always upper-case and non-empty.
type Pair struct {
	Base  string `json:"base"`
	Quote string `json:"quote"`
}

// ParsePair splits a delimited native symbol such as "btc_usdt" into a Pair.
// The symbol must contain the delimiter exactly once with a non-empty asset on
// each side.
func ParsePair(raw, delimiter string) (Pair, error) {
	if delimiter == "" {
		return Pair{}, fmt.Errorf("%w: %q: empty delimiter", ErrMalformedSymbol, raw)
	}
	base, quote, found := strings.Cut(raw, delimiter)
	if !found || strings.Contains(quote, delimiter) {
		return Pair{}, fmt.Errorf("%w: %q: want exactly one %q", ErrMalformedSymbol, raw, delimiter)
	}
	return PairFromAssets(base, quote)
}

// PairFromAssets builds a Pair from separately reported base and quote assets.
func PairFromAssets(base, quote string) (Pair, error) {
	p := Pair{
		Base:  strings.ToUpper(strings.TrimSpace(base)),
		Quote: strings.ToUpper(strings.TrimSpace(quote)),
	}
	if p.Base == "" || p.Quote == "" {
		return Pair{}, fmt.Errorf("%w: base=%q quote=%q", ErrMalformedSymbol, base, quote)
	}
	return p, nil
}

// String renders the pair as "BASE/QUOTE".
func (p Pair) String() string {
	return p.Base + "/" + p.Quote
}

// Less orders pairs by base, then quote.
func (p Pair) Less(o Pair) bool {
	if p.Base != o.Base {
		return p.Base < o.Base
	}
	return p.Quote < o.Quote
}
