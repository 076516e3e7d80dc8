package domain

// Direction names the cheaper venue of a pair, where the buy leg would go.
type Direction int

const (
	// DirectionAToB: venue A is cheaper; buy on A, sell on B.
	DirectionAToB Direction = iota
	// DirectionBToA: venue B is cheaper; buy on B, sell on A.
	DirectionBToA
)

// String returns a stable machine name for logs and payloads.
func (d Direction) String() string {
	switch d {
	case DirectionAToB:
		return "a_to_b"
	case DirectionBToA:
		return "b_to_a"
	default:
		return "unknown"
	}
}

// Label renders the direction for operators, e.g. "Gate → MEXC", given the
// display names of venue A and venue B.
func (d Direction) Label(venueA, venueB string) string {
	if d == DirectionBToA {
		return venueB + " → " + venueA
	}
	return venueA + " → " + venueB
}

// Opportunity is one directional spread that fell inside the configured band
// during a single scan. It is never stored beyond the scan that produced it.
type Opportunity struct {
	Pair Pair
	// PriceA and PriceB are display prices rounded to 6 fractional digits.
	PriceA float64
	PriceB float64
	// DiffPct is the unrounded percentage by which the expensive venue exceeds
	// the cheap one, relative to the cheap venue's price.
	DiffPct   float64
	Direction Direction
}

// Identity returns the cross-cycle identity of the opportunity.
func (o Opportunity) Identity() Identity {
	return Identity{Pair: o.Pair, Direction: o.Direction}
}

// Identity is what makes two opportunities "the same" across poll cycles.
// Prices are left out so a persisting but fluctuating spread is reported once.
type Identity struct {
	Pair      Pair
	Direction Direction
}

// Less orders identities by pair, then direction.
func (id Identity) Less(o Identity) bool {
	if id.Pair != o.Pair {
		return id.Pair.Less(o.Pair)
	}
	return id.Direction < o.Direction
}
