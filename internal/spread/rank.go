package spread

import (
	"sort"

	"github.com/alanyoungcy/spreadbot/internal/domain"
)

// Rank returns a copy of opps ordered by DiffPct ascending. Equal
// differentials fall back to pair order, then direction, so the output does
// not depend on the order of the input.
func Rank(opps []domain.Opportunity) []domain.Opportunity {
	out := make([]domain.Opportunity, len(opps))
	copy(out, opps)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DiffPct != out[j].DiffPct {
			return out[i].DiffPct < out[j].DiffPct
		}
		return out[i].Identity().Less(out[j].Identity())
	})
	return out
}
