package spread

import (
	"sort"

	"github.com/alanyoungcy/spreadbot/internal/domain"
)

// Reconcile returns the pairs listed in both catalogs, in canonical order.
// Only exact pair matches count.
func Reconcile(a, b SymbolMapping) []domain.Pair {
	small, large := a, b
	if len(b) < len(a) {
		small, large = b, a
	}

	out := make([]domain.Pair, 0, len(small))
	for pair := range small {
		if _, ok := large[pair]; ok {
			out = append(out, pair)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Less(out[j])
	})
	return out
}
