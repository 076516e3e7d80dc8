package spread

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alanyoungcy/spreadbot/internal/domain"
)

var errNoListings = errors.New("no listings returned")

// SymbolMapping maps canonical pairs to one venue's native symbols. It is
// rebuilt from scratch on every scan and never patched in place.
type SymbolMapping map[domain.Pair]string

// BuildCatalog keeps the listings quoted in the settlement asset and indexes
// them by canonical pair. Records that do not resolve to a pair are skipped
// and counted in skipped. When a pair is listed twice the later record wins.
func BuildCatalog(listings []Listing, settlement string) (catalog SymbolMapping, skipped int) {
	want := strings.ToUpper(strings.TrimSpace(settlement))
	catalog = make(SymbolMapping, len(listings))
	for _, l := range listings {
		if strings.TrimSpace(l.Symbol) == "" {
			skipped++
			continue
		}
		pair, err := l.Pair()
		if err != nil {
			skipped++
			continue
		}
		if pair.Quote != want {
			continue
		}
		catalog[pair] = l.Symbol
	}
	return catalog, skipped
}

// LoadCatalog fetches a venue's listings and builds its catalog. When the
// venue supplies nothing, the catalog is empty and the returned error wraps
// domain.ErrCatalogUnavailable.
func LoadCatalog(ctx context.Context, v Venue, settlement string) (SymbolMapping, int, error) {
	listings, err := v.Listings(ctx)
	if err == nil && listings == nil {
		err = errNoListings
	}
	if err != nil {
		return SymbolMapping{}, 0, &VenueError{
			Venue: v.Name(),
			Kind:  FailureCatalog,
			Err:   fmt.Errorf("%w: %w", domain.ErrCatalogUnavailable, err),
		}
	}
	catalog, skipped := BuildCatalog(listings, settlement)
	return catalog, skipped, nil
}
