package spread

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/spreadbot/internal/domain"
)

func opp(base string, pct float64, dir domain.Direction) domain.Opportunity {
	return domain.Opportunity{Pair: pair(base, "USDT"), DiffPct: pct, Direction: dir}
}

func TestRank_AscendingByDiff(t *testing.T) {
	in := []domain.Opportunity{
		opp("C", 9.5, domain.DirectionAToB),
		opp("A", 4.2, domain.DirectionBToA),
		opp("B", 6, domain.DirectionAToB),
	}

	out := Rank(in)

	require.Len(t, out, 3)
	for i := 1; i < len(out); i++ {
		assert.LessOrEqual(t, out[i-1].DiffPct, out[i].DiffPct)
	}
	assert.Equal(t, "A", out[0].Pair.Base)
	assert.Equal(t, "C", out[2].Pair.Base)
	// input untouched
	assert.Equal(t, "C", in[0].Pair.Base)
}

func TestRank_Idempotent(t *testing.T) {
	in := []domain.Opportunity{
		opp("B", 5, domain.DirectionAToB),
		opp("A", 5, domain.DirectionBToA),
		opp("A", 5, domain.DirectionAToB),
		opp("D", 4, domain.DirectionAToB),
	}

	once := Rank(in)
	assert.Equal(t, once, Rank(once))
}

func TestRank_TiesBreakByIdentity(t *testing.T) {
	in := []domain.Opportunity{
		opp("B", 5, domain.DirectionAToB),
		opp("A", 5, domain.DirectionBToA),
		opp("A", 5, domain.DirectionAToB),
	}

	out := Rank(in)

	assert.Equal(t, []domain.Identity{
		{Pair: pair("A", "USDT"), Direction: domain.DirectionAToB},
		{Pair: pair("A", "USDT"), Direction: domain.DirectionBToA},
		{Pair: pair("B", "USDT"), Direction: domain.DirectionAToB},
	}, []domain.Identity{out[0].Identity(), out[1].Identity(), out[2].Identity()})
}

func TestRank_Empty(t *testing.T) {
	assert.Empty(t, Rank(nil))
}
