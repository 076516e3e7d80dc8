package spread

import (
	"sync"

	"github.com/alanyoungcy/spreadbot/internal/domain"
)

// ChangeTracker remembers the identities seen in the previous poll cycle so
// that only newly appeared opportunities are reported. It is safe for
// concurrent use; each Advance is applied atomically.
type ChangeTracker struct {
	mu       sync.Mutex
	previous map[domain.Identity]struct{}
}

// NewChangeTracker creates a tracker whose previous cycle held prior.
func NewChangeTracker(prior ...domain.Identity) *ChangeTracker {
	prev := make(map[domain.Identity]struct{}, len(prior))
	for _, id := range prior {
		prev[id] = struct{}{}
	}
	return &ChangeTracker{previous: prev}
}

// Advance records current as the latest cycle and returns the identities in
// current that were absent from the previous one. The previous set is always
// replaced, so an empty cycle clears it and a later reappearance is new again.
// The result carries no ordering guarantee.
func (t *ChangeTracker) Advance(current []domain.Opportunity) []domain.Identity {
	next := make(map[domain.Identity]struct{}, len(current))

	t.mu.Lock()
	defer t.mu.Unlock()

	var fresh []domain.Identity
	for _, opp := range current {
		id := opp.Identity()
		if _, dup := next[id]; dup {
			continue
		}
		next[id] = struct{}{}
		if _, seen := t.previous[id]; !seen {
			fresh = append(fresh, id)
		}
	}
	t.previous = next
	return fresh
}

// Len returns the number of identities remembered from the last cycle.
func (t *ChangeTracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.previous)
}
