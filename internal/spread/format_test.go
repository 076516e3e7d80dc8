package spread

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alanyoungcy/spreadbot/internal/domain"
)

func TestFormatPct(t *testing.T) {
	assert.Equal(t, "4.17%", FormatPct(4.1666667))
	assert.Equal(t, "4.00%", FormatPct(4))
	assert.Equal(t, "12.35%", FormatPct(12.345))
}

func TestRoundPrice(t *testing.T) {
	assert.Equal(t, 0.123457, RoundPrice(0.123456789))
	assert.Equal(t, 64000.5, RoundPrice(64000.5))
}

func TestRows(t *testing.T) {
	opps := []domain.Opportunity{{
		Pair:      pair("ABC", "USDT"),
		PriceA:    100,
		PriceB:    96,
		DiffPct:   4.1666667,
		Direction: domain.DirectionBToA,
	}}

	rows := Rows(opps, Labels{A: "MEXC", B: "Gate"})

	assert.Equal(t, []Row{{
		Symbol:     "ABC/USDT",
		PriceLeft:  100,
		PriceRight: 96,
		DiffPct:    "4.17%",
		Direction:  "Gate → MEXC",
	}}, rows)
	assert.NotNil(t, Rows(nil, Labels{}))
}

func TestNotificationLines_Sorted(t *testing.T) {
	ids := []domain.Identity{
		{Pair: pair("ZED", "USDT"), Direction: domain.DirectionAToB},
		{Pair: pair("ABC", "USDT"), Direction: domain.DirectionBToA},
	}

	lines := NotificationLines(ids, Labels{A: "MEXC", B: "Gate"})

	assert.Equal(t, []string{
		"ABC/USDT - Gate → MEXC",
		"ZED/USDT - MEXC → Gate",
	}, lines)
}
