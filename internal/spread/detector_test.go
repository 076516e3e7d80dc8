package spread

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/spreadbot/internal/domain"
)

var defaultBand = Band{MinPct: 4, MaxPct: 1000}

func market(sym string, price float64, p domain.Pair) Market {
	return Market{
		Catalog: SymbolMapping{p: sym},
		Prices:  PriceSnapshot{sym: price},
	}
}

func TestBand_Contains(t *testing.T) {
	tests := []struct {
		name string
		band Band
		pct  float64
		want bool
	}{
		{"below min", defaultBand, 3.99, false},
		{"at min", defaultBand, 4, true},
		{"inside", defaultBand, 12.5, true},
		{"at max", defaultBand, 1000, true},
		{"above max", defaultBand, 1000.01, false},
		{"negative", defaultBand, -5, false},
		{"uncapped", Band{MinPct: 4}, 1e6, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.band.Contains(tt.pct))
		})
	}
}

func TestDiffPct(t *testing.T) {
	pct, ok := DiffPct(96, 100)
	require.True(t, ok)
	assert.InDelta(t, 4.1666667, pct, 1e-6)

	pct, ok = DiffPct(100, 96)
	require.True(t, ok)
	assert.InDelta(t, -4.0, pct, 1e-9)

	_, ok = DiffPct(0, 5)
	assert.False(t, ok)
}

func TestDetect_CheaperVenueB(t *testing.T) {
	p := pair("ABC", "USDT")
	a := market("ABCUSDT", 100, p)
	b := market("ABC_USDT", 96, p)

	opps := Detect([]domain.Pair{p}, a, b, defaultBand)

	require.Len(t, opps, 1)
	o := opps[0]
	assert.Equal(t, p, o.Pair)
	assert.Equal(t, domain.DirectionBToA, o.Direction)
	assert.Equal(t, 100.0, o.PriceA)
	assert.Equal(t, 96.0, o.PriceB)
	assert.InDelta(t, 4.1666667, o.DiffPct, 1e-6)
	assert.Equal(t, "4.17%", FormatPct(o.DiffPct))
	assert.Equal(t, "Gate → MEXC", o.Direction.Label("MEXC", "Gate"))
}

func TestDetect_CheaperVenueA(t *testing.T) {
	p := pair("ABC", "USDT")
	a := market("ABCUSDT", 10, p)
	b := market("ABC_USDT", 11, p)

	opps := Detect([]domain.Pair{p}, a, b, defaultBand)

	require.Len(t, opps, 1)
	assert.Equal(t, domain.DirectionAToB, opps[0].Direction)
	assert.InDelta(t, 10.0, opps[0].DiffPct, 1e-9)
}

func TestDetect_BelowThreshold(t *testing.T) {
	p := pair("ABC", "USDT")
	a := market("ABCUSDT", 100, p)
	b := market("ABC_USDT", 97, p)

	assert.Empty(t, Detect([]domain.Pair{p}, a, b, defaultBand))
}

func TestDetect_AboveCap(t *testing.T) {
	p := pair("ABC", "USDT")
	a := market("ABCUSDT", 1, p)
	b := market("ABC_USDT", 20, p)

	assert.Empty(t, Detect([]domain.Pair{p}, a, b, defaultBand))
	assert.Len(t, Detect([]domain.Pair{p}, a, b, Band{MinPct: 4}), 1)
}

func TestDetect_ZeroPriceSkipsPair(t *testing.T) {
	p := pair("ABC", "USDT")
	wide := Band{MinPct: -1000}

	assert.Empty(t, Detect([]domain.Pair{p}, market("ABCUSDT", 0, p), market("ABC_USDT", 5, p), wide))
	assert.Empty(t, Detect([]domain.Pair{p}, market("ABCUSDT", 5, p), market("ABC_USDT", 0, p), wide))
	assert.Empty(t, Detect([]domain.Pair{p}, market("ABCUSDT", -1, p), market("ABC_USDT", 5, p), wide))
}

func TestDetect_NonFiniteDiffSkipped(t *testing.T) {
	p := pair("ABC", "USDT")
	a := market("ABCUSDT", 5e-324, p)
	b := market("ABC_USDT", 1e300, p)

	// A→B overflows to +Inf; B→A stays finite at about -100%.
	opps := Detect([]domain.Pair{p}, a, b, Band{MinPct: -1000})
	require.Len(t, opps, 1)
	assert.Equal(t, domain.DirectionBToA, opps[0].Direction)
	assert.NotPanics(t, func() { FormatPct(opps[0].DiffPct) })

	assert.Empty(t, Detect([]domain.Pair{p}, a, b, Band{MinPct: 4}))
}

func TestDetect_MissingPriceSkipsPair(t *testing.T) {
	p := pair("ABC", "USDT")
	a := market("ABCUSDT", 100, p)
	b := Market{Catalog: SymbolMapping{p: "ABC_USDT"}, Prices: PriceSnapshot{}}

	assert.Empty(t, Detect([]domain.Pair{p}, a, b, defaultBand))
}

func TestDetect_EmptySnapshot(t *testing.T) {
	p := pair("ABC", "USDT")
	a := market("ABCUSDT", 100, p)
	b := Market{Catalog: SymbolMapping{}, Prices: PriceSnapshot{}}

	assert.Empty(t, Detect([]domain.Pair{p}, a, b, defaultBand))
	assert.Empty(t, Detect(nil, a, b, defaultBand))
}

func TestDetect_RoundsDisplayPricesOnly(t *testing.T) {
	p := pair("ABC", "USDT")
	a := market("ABCUSDT", 0.123456789, p)
	b := market("ABC_USDT", 0.2, p)

	opps := Detect([]domain.Pair{p}, a, b, defaultBand)

	require.Len(t, opps, 1)
	assert.Equal(t, 0.123457, opps[0].PriceA)
	assert.Equal(t, 0.2, opps[0].PriceB)
	assert.InDelta(t, (0.2-0.123456789)/0.123456789*100, opps[0].DiffPct, 1e-12)
}
