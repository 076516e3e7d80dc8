// Package platform selects venue clients by name.
package platform

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/alanyoungcy/spreadbot/internal/platform/gate"
	"github.com/alanyoungcy/spreadbot/internal/platform/mexc"
	"github.com/alanyoungcy/spreadbot/internal/spread"
)

// VenueOptions configures a venue client.
type VenueOptions struct {
	BaseURL string
	Timeout time.Duration
}

// Constructor builds a venue client.
type Constructor func(opts VenueOptions) spread.Venue

// Registry holds named venue constructors for selection by config.
type Registry struct {
	constructors map[string]Constructor
	mu           sync.RWMutex
}

// NewRegistry returns an empty registry. Call Register to add venues.
func NewRegistry() *Registry {
	return &Registry{constructors: make(map[string]Constructor)}
}

// DefaultRegistry returns a registry holding every built-in venue.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("mexc", func(opts VenueOptions) spread.Venue {
		return mexc.NewClient(opts.BaseURL, opts.Timeout)
	})
	r.Register("gate", func(opts VenueOptions) spread.Venue {
		return gate.NewClient(opts.BaseURL, opts.Timeout)
	})
	return r
}

// Register adds a constructor under the given name. Names are case-insensitive.
func (r *Registry) Register(name string, c Constructor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.constructors[strings.ToLower(name)] = c
}

// New builds the venue registered under name, or returns an error if the
// name is unknown.
func (r *Registry) New(name string, opts VenueOptions) (spread.Venue, error) {
	r.mu.RLock()
	c, ok := r.constructors[strings.ToLower(name)]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("venue %q not found (known: %s)", name, strings.Join(r.List(), ", "))
	}
	return c(opts), nil
}

// List returns all registered venue names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.constructors))
	for n := range r.constructors {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
