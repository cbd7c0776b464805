package config

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync/atomic"
)

// ErrUnknownSpecies is returned for species names missing from the registry.
var ErrUnknownSpecies = errors.New("unknown species")

// Registry holds the current species set. Reads are lock-free; a reload swaps
// the whole set, so agents spawned afterwards see the new tuning while
// running agents keep theirs.
type Registry struct {
	species atomic.Pointer[map[string]Species]
	version atomic.Uint64
}

// NewRegistry creates a registry holding species.
func NewRegistry(species map[string]Species) *Registry {
	r := &Registry{}
	r.Replace(species)
	return r
}

// Get returns the species named name.
func (r *Registry) Get(name string) (Species, error) {
	m := *r.species.Load()
	s, ok := m[name]
	if !ok {
		return Species{}, fmt.Errorf("species %q: %w", name, ErrUnknownSpecies)
	}
	return s, nil
}

// Names returns every species name, sorted.
func (r *Registry) Names() []string {
	return slices.Sorted(maps.Keys(*r.species.Load()))
}

// Version increments on every Replace.
func (r *Registry) Version() uint64 {
	return r.version.Load()
}

// Replace swaps in a new species set.
func (r *Registry) Replace(species map[string]Species) {
	m := maps.Clone(species)
	if m == nil {
		m = map[string]Species{}
	}
	r.species.Store(&m)
	r.version.Add(1)
}

// LoadDir loads dir and replaces the set. On error the current set is kept.
func (r *Registry) LoadDir(dir string) error {
	species, err := LoadSpeciesDir(dir)
	if err != nil {
		return err
	}
	r.Replace(species)
	return nil
}
