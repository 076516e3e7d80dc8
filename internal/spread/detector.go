package spread

import (
	"math"

	"github.com/alanyoungcy/spreadbot/internal/domain"
)

// Band is the inclusive range of differentials, in percent, that count as an
// opportunity. The upper cap filters out spreads so large they almost always
// mean a stale, delisted, or mismatched instrument. MaxPct <= 0 disables it.
type Band struct {
	MinPct float64
	MaxPct float64
}

// Contains reports whether pct lies inside the band.
func (b Band) Contains(pct float64) bool {
	if pct < b.MinPct {
		return false
	}
	if b.MaxPct > 0 && pct > b.MaxPct {
		return false
	}
	return true
}

// DiffPct returns how much more expensive "to" is than "from", in percent of
// the "from" price. ok is false when from is zero.
func DiffPct(from, to float64) (pct float64, ok bool) {
	if from == 0 {
		return 0, false
	}
	return (to - from) / from * 100, true
}

// Market is one venue's view for a single scan.
type Market struct {
	Catalog SymbolMapping
	Prices  PriceSnapshot
}

func (m Market) price(pair domain.Pair) (float64, bool) {
	sym, ok := m.Catalog[pair]
	if !ok {
		return 0, false
	}
	p, ok := m.Prices[sym]
	return p, ok
}

// Detect evaluates both directions of every pair and returns the ones whose
// differential lies inside band. Pairs with a missing or non-positive price on
// either venue are skipped, as is any direction whose differential is not
// finite.
func Detect(pairs []domain.Pair, a, b Market, band Band) []domain.Opportunity {
	var out []domain.Opportunity
	for _, pair := range pairs {
		priceA, okA := a.price(pair)
		priceB, okB := b.price(pair)
		if !okA || !okB || priceA <= 0 || priceB <= 0 {
			continue
		}

		if pct, ok := DiffPct(priceA, priceB); ok && finite(pct) && band.Contains(pct) {
			out = append(out, newOpportunity(pair, priceA, priceB, pct, domain.DirectionAToB))
		}
		if pct, ok := DiffPct(priceB, priceA); ok && finite(pct) && band.Contains(pct) {
			out = append(out, newOpportunity(pair, priceA, priceB, pct, domain.DirectionBToA))
		}
	}
	return out
}

func finite(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}

func newOpportunity(pair domain.Pair, priceA, priceB, pct float64, dir domain.Direction) domain.Opportunity {
	return domain.Opportunity{
		Pair:      pair,
		PriceA:    RoundPrice(priceA),
		PriceB:    RoundPrice(priceB),
		DiffPct:   pct,
		Direction: dir,
	}
}
