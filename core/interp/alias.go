package interp

import (
	"fmt"
	"sort"
)

// AliasStore maps alias names to replacement text. Replacement applies
// to the first word at command position and is re-scanned, so values
// may themselves contain operators and further aliases.
type AliasStore struct {
	aliases map[string]string
}

// NewAliasStore returns an empty store.
func NewAliasStore() *AliasStore {
	return &AliasStore{aliases: make(map[string]string)}
}

// Set defines or replaces an alias.
func (s *AliasStore) Set(name, value string) {
	s.aliases[name] = value
}

// Get returns the replacement for name.
func (s *AliasStore) Get(name string) (string, bool) {
	v, ok := s.aliases[name]
	return v, ok
}

// Unset removes an alias; the bool reports whether it existed.
func (s *AliasStore) Unset(name string) bool {
	_, ok := s.aliases[name]
	delete(s.aliases, name)
	return ok
}

// Names returns the defined alias names in sorted order.
func (s *AliasStore) Names() []string {
	names := make([]string, 0, len(s.aliases))
	for n := range s.aliases {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// List renders every alias in `alias name='value'` form, sorted.
func (s *AliasStore) List() []string {
	out := make([]string, 0, len(s.aliases))
	for _, name := range s.Names() {
		out = append(out, fmt.Sprintf("alias %s='%s'", name, s.aliases[name]))
	}
	return out
}
