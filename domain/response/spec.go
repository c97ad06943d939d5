package response

import (
	"fmt"
	"sort"

	"godoe/domain/core"
)

// Criterion is the optimization goal of a response.
type Criterion string

const (
	Maximize Criterion = "maximize"
	Minimize Criterion = "minimize"
	Target   Criterion = "target"
)

// Valid reports whether c is a known criterion.
func (c Criterion) Valid() bool {
	return c == Maximize || c == Minimize || c == Target
}

// Better reports whether a is strictly better than b under the criterion.
// Target responses are compared by distance to goal; see Spec.Goal.
func (c Criterion) Better(a, b float64) bool {
	if c == Minimize {
		return a < b
	}
	return a > b
}

// CombinedName is the column produced when several responses are merged into
// one desirability score.
const CombinedName = "combined_response"

// Spec describes one measured response.
type Spec struct {
	Criterion Criterion `yaml:"criterion" json:"criterion" validate:"required,oneof=maximize minimize target"`
	Transform Transform `yaml:"transform,omitempty" json:"transform,omitempty" validate:"omitempty,oneof=none log box-cox"`
	LowLimit  *float64  `yaml:"low_limit,omitempty" json:"low_limit,omitempty"`
	HighLimit *float64  `yaml:"high_limit,omitempty" json:"high_limit,omitempty"`
	// Target is the fully desirable value; defaults depend on the criterion.
	Target *float64 `yaml:"target,omitempty" json:"target,omitempty"`
	// Exponent shapes the desirability curve (s in Derringer-Suich); 0 means 1.
	Exponent float64 `yaml:"s,omitempty" json:"s,omitempty"`
}

// Validate checks the spec in isolation.
func (s Spec) Validate(name string) error {
	if !s.Criterion.Valid() {
		return fmt.Errorf("%w: %s has criterion %q", core.ErrInvalidResponseSpec, name, s.Criterion)
	}
	if !s.Transform.Valid() {
		return fmt.Errorf("%w: %s has transform %q", core.ErrInvalidResponseSpec, name, s.Transform)
	}
	if s.LowLimit != nil && s.HighLimit != nil && *s.LowLimit > *s.HighLimit {
		return fmt.Errorf("%w: %s low_limit above high_limit", core.ErrInvalidResponseSpec, name)
	}
	if s.Criterion == Target && (s.LowLimit == nil || s.HighLimit == nil) {
		return fmt.Errorf("%w: %s target criterion needs low_limit and high_limit", core.ErrInvalidResponseSpec, name)
	}
	if s.Exponent < 0 {
		return fmt.Errorf("%w: %s exponent must be positive", core.ErrInvalidResponseSpec, name)
	}
	return nil
}

// Shape returns the desirability exponent with its default applied.
func (s Spec) Shape() float64 {
	if s.Exponent == 0 {
		return 1
	}
	return s.Exponent
}

// Goal returns the value a target response aims for: Target when set, else the
// midpoint of the limits.
func (s Spec) Goal() float64 {
	if s.Target != nil {
		return *s.Target
	}
	if s.LowLimit != nil && s.HighLimit != nil {
		return (*s.LowLimit + *s.HighLimit) / 2
	}
	return 0
}

// Specs maps response names to specs.
type Specs map[string]Spec

// Names returns response names sorted.
func (s Specs) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate validates every spec and requires at least one response.
func (s Specs) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("%w: at least one response is required", core.ErrInvalidResponseSpec)
	}
	for _, name := range s.Names() {
		if err := s[name].Validate(name); err != nil {
			return err
		}
	}
	return nil
}
