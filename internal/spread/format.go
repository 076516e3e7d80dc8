package spread

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/spreadbot/internal/domain"
)

// displayPlaces is the number of fractional digits kept in display prices.
const displayPlaces = 6

// RoundPrice rounds a price for display. Thresholds and ranking never see
// the rounded value.
func RoundPrice(p float64) float64 {
	return decimal.NewFromFloat(p).Round(displayPlaces).InexactFloat64()
}

// FormatPct renders a differential as "N.NN%".
func FormatPct(pct float64) string {
	return decimal.NewFromFloat(pct).StringFixed(2) + "%"
}

// Labels are the display names of venue A and venue B.
type Labels struct {
	A string
	B string
}

// Row is the presentation shape of one opportunity.
type Row struct {
	Symbol     string  `json:"symbol"`
	PriceLeft  float64 `json:"price_left"`
	PriceRight float64 `json:"price_right"`
	DiffPct    string  `json:"diff_pct"`
	Direction  string  `json:"direction"`
}

// Rows converts ranked opportunities to presentation rows, keeping order.
func Rows(opps []domain.Opportunity, labels Labels) []Row {
	rows := make([]Row, 0, len(opps))
	for _, o := range opps {
		rows = append(rows, Row{
			Symbol:     o.Pair.String(),
			PriceLeft:  o.PriceA,
			PriceRight: o.PriceB,
			DiffPct:    FormatPct(o.DiffPct),
			Direction:  o.Direction.Label(labels.A, labels.B),
		})
	}
	return rows
}

// NotificationLine renders an identity as "BASE/QUOTE - <direction label>".
func NotificationLine(id domain.Identity, labels Labels) string {
	return fmt.Sprintf("%s/%s - %s", id.Pair.Base, id.Pair.Quote, id.Direction.Label(labels.A, labels.B))
}

// NotificationLines renders ids in canonical order.
func NotificationLines(ids []domain.Identity, labels Labels) []string {
	sorted := make([]domain.Identity, len(ids))
	copy(sorted, ids)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Less(sorted[j])
	})

	lines := make([]string, 0, len(sorted))
	for _, id := range sorted {
		lines = append(lines, NotificationLine(id, labels))
	}
	return lines
}
