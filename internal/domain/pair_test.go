package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePair(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    Pair
		wantErr bool
	}{
		{name: "lower case", raw: "btc_usdt", want: Pair{Base: "BTC", Quote: "USDT"}},
		{name: "mixed case", raw: "Eth_UsDt", want: Pair{Base: "ETH", Quote: "USDT"}},
		{name: "padded", raw: " sol _ usdt ", want: Pair{Base: "SOL", Quote: "USDT"}},
		{name: "no delimiter", raw: "BTCUSDT", wantErr: true},
		{name: "two delimiters", raw: "btc_usdt_perp", wantErr: true},
		{name: "empty base", raw: "_usdt", wantErr: true},
		{name: "empty quote", raw: "btc_", wantErr: true},
		{name: "empty", raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePair(tt.raw, "_")
			if tt.wantErr {
				require.ErrorIs(t, err, ErrMalformedSymbol)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePair_EmptyDelimiter(t *testing.T) {
	_, err := ParsePair("btc_usdt", "")
	assert.ErrorIs(t, err, ErrMalformedSymbol)
}

func TestPairFromAssets(t *testing.T) {
	p, err := PairFromAssets("pepe", "usdt")
	require.NoError(t, err)
	assert.Equal(t, "PEPE/USDT", p.String())

	_, err = PairFromAssets("  ", "USDT")
	assert.ErrorIs(t, err, ErrMalformedSymbol)
}

func TestPairLess(t *testing.T) {
	a := Pair{Base: "ADA", Quote: "USDT"}
	b := Pair{Base: "BTC", Quote: "USDC"}
	c := Pair{Base: "BTC", Quote: "USDT"}

	assert.True(t, a.Less(b))
	assert.True(t, b.Less(c))
	assert.False(t, c.Less(b))
	assert.False(t, c.Less(c))
}

func TestDirectionLabel(t *testing.T) {
	assert.Equal(t, "MEXC → Gate", DirectionAToB.Label("MEXC", "Gate"))
	assert.Equal(t, "Gate → MEXC", DirectionBToA.Label("MEXC", "Gate"))
	assert.Equal(t, "b_to_a", DirectionBToA.String())
}

func TestOpportunityIdentityIgnoresPrices(t *testing.T) {
	pair := Pair{Base: "BTC", Quote: "USDT"}
	first := Opportunity{Pair: pair, PriceA: 100, PriceB: 96, DiffPct: 4.16, Direction: DirectionBToA}
	second := Opportunity{Pair: pair, PriceA: 101, PriceB: 95, DiffPct: 6.3, Direction: DirectionBToA}

	assert.Equal(t, first.Identity(), second.Identity())
}
