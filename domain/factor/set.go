package factor

import (
	"fmt"
	"slices"
	"sort"

	"godoe/domain/core"
)

// Set owns a campaign's factors keyed by name.
type Set struct {
	defined []string
	byName  map[string]Factor
}

// NewSet returns an empty set.
func NewSet() *Set {
	return &Set{byName: make(map[string]Factor)}
}

// NewSetFromSpecs builds a set from specs. Map iteration order does not matter
// because every consumer uses Names().
func NewSetFromSpecs(specs map[string]Spec) (*Set, error) {
	s := NewSet()
	names := make([]string, 0, len(specs))
	for name := range specs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		f, err := FromSpec(name, specs[name])
		if err != nil {
			return nil, err
		}
		if err := s.Add(f); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Add inserts a factor; names must be unique and non-empty.
func (s *Set) Add(f Factor) error {
	name := f.Name()
	if name == "" {
		return fmt.Errorf("%w: empty factor name", core.ErrInvalidFactorSpec)
	}
	if _, dup := s.byName[name]; dup {
		return fmt.Errorf("%w: duplicate factor %q", core.ErrInvalidFactorSpec, name)
	}
	s.defined = append(s.defined, name)
	s.byName[name] = f
	return nil
}

// Get looks a factor up by name.
func (s *Set) Get(name string) (Factor, bool) {
	f, ok := s.byName[name]
	return f, ok
}

// Len returns the number of factors.
func (s *Set) Len() int { return len(s.defined) }

// Names returns all factor names in canonical (sorted) order.
func (s *Set) Names() []string {
	names := slices.Clone(s.defined)
	sort.Strings(names)
	return names
}

// DefinitionOrder returns names in the order they were added.
func (s *Set) DefinitionOrder() []string {
	return slices.Clone(s.defined)
}

// All returns every factor in canonical order.
func (s *Set) All() []Factor {
	names := s.Names()
	out := make([]Factor, len(names))
	for i, name := range names {
		out[i] = s.byName[name]
	}
	return out
}

// Numeric returns the numeric factors in canonical order.
func (s *Set) Numeric() []Numeric {
	var out []Numeric
	for _, f := range s.All() {
		if n, ok := f.(Numeric); ok {
			out = append(out, n)
		}
	}
	return out
}

// Categorical returns the categorical factors in canonical order.
func (s *Set) Categorical() []*Categorical {
	var out []*Categorical
	for _, f := range s.All() {
		if c, ok := f.(*Categorical); ok {
			out = append(out, c)
		}
	}
	return out
}

// HasCategorical reports whether any factor is categorical.
func (s *Set) HasCategorical() bool {
	return len(s.Categorical()) > 0
}

// Clone deep-copies the set.
func (s *Set) Clone() *Set {
	c := &Set{defined: slices.Clone(s.defined), byName: make(map[string]Factor, len(s.byName))}
	for name, f := range s.byName {
		c.byName[name] = f.Clone()
	}
	return c
}

// CheckInvariants verifies Min <= Low <= High <= Max for every numeric factor.
func (s *Set) CheckInvariants() error {
	for _, n := range s.Numeric() {
		if !(n.Min() <= n.Low() && n.Low() <= n.High() && n.High() <= n.Max()) {
			return fmt.Errorf("%w: %s", core.ErrInvalidRange, n.Name())
		}
	}
	return nil
}
