package factor

import (
	"fmt"
	"math"
	"slices"

	"godoe/domain/core"
)

// Kind discriminates the factor variants.
type Kind string

const (
	KindQuantitative Kind = "quantitative"
	KindOrdinal      Kind = "ordinal"
	KindCategorical  Kind = "categorical"
)

// DefaultScreeningLevels is used when a spec leaves screening_levels unset.
const DefaultScreeningLevels = 5

// Factor is implemented by all three variants.
type Factor interface {
	Name() string
	Kind() Kind
	// Clone returns an independent copy; mutations on the copy never leak back.
	Clone() Factor
}

// Numeric is implemented by Quantitative and Ordinal factors.
type Numeric interface {
	Factor
	Min() float64
	Max() float64
	Low() float64
	High() float64
	Span() float64
	Center() float64
	ScreeningLevels() int
	LogScale() bool
	// Integral reports whether values must be whole numbers.
	Integral() bool
	SetBounds(min, max float64) error
	SetRange(low, high float64) error
	ClipToBounds(low, high float64) (float64, float64)
}

type numeric struct {
	name            string
	min, max        float64
	low, high       float64
	screeningLevels int
	logScale        bool
}

func (n *numeric) Name() string         { return n.name }
func (n *numeric) Min() float64         { return n.min }
func (n *numeric) Max() float64         { return n.max }
func (n *numeric) Low() float64         { return n.low }
func (n *numeric) High() float64        { return n.high }
func (n *numeric) Span() float64        { return n.high - n.low }
func (n *numeric) Center() float64      { return (n.high + n.low) / 2 }
func (n *numeric) ScreeningLevels() int { return n.screeningLevels }
func (n *numeric) LogScale() bool       { return n.logScale }
func (n *numeric) setLevels(levels int) { n.screeningLevels = levels }
func (n *numeric) String() string {
	return fmt.Sprintf("%s[%g, %g] in (%g, %g)", n.name, n.low, n.high, n.min, n.max)
}

// ClipToBounds translates a proposed range back inside the hard bounds without
// changing its width. A range wider than the whole domain is clamped to it.
func (n *numeric) ClipToBounds(low, high float64) (float64, float64) {
	if low < n.min {
		deficit := n.min - low
		low, high = low+deficit, high+deficit
	} else if high > n.max {
		excess := high - n.max
		low, high = low-excess, high-excess
	}
	return math.Max(low, n.min), math.Min(high, n.max)
}

func (n *numeric) checkBounds(min, max float64) error {
	if math.IsNaN(min) || math.IsNaN(max) || min > max {
		return fmt.Errorf("%w: %s bounds (%g, %g)", core.ErrInvalidRange, n.name, min, max)
	}
	return nil
}

func (n *numeric) checkRange(low, high float64) error {
	if math.IsNaN(low) || math.IsNaN(high) || low > high || low < n.min || high > n.max {
		return fmt.Errorf("%w: %s range [%g, %g] outside (%g, %g)",
			core.ErrInvalidRange, n.name, low, high, n.min, n.max)
	}
	return nil
}

// Quantitative is a continuous factor.
type Quantitative struct {
	numeric
}

func (q *Quantitative) Kind() Kind     { return KindQuantitative }
func (q *Quantitative) Integral() bool { return false }
func (q *Quantitative) Clone() Factor {
	c := *q
	return &c
}

func (q *Quantitative) SetBounds(min, max float64) error {
	if err := q.checkBounds(min, max); err != nil {
		return err
	}
	q.min, q.max = min, max
	return nil
}

func (q *Quantitative) SetRange(low, high float64) error {
	if err := q.checkRange(low, high); err != nil {
		return err
	}
	q.low, q.high = low, high
	return nil
}

// Ordinal is a numeric factor whose every value is an integer. Bounds may stay
// infinite.
type Ordinal struct {
	numeric
}

func (o *Ordinal) Kind() Kind     { return KindOrdinal }
func (o *Ordinal) Integral() bool { return true }
func (o *Ordinal) Clone() Factor {
	c := *o
	return &c
}

func (o *Ordinal) SetBounds(min, max float64) error {
	for _, v := range []float64{min, max} {
		if !math.IsInf(v, 0) {
			if err := o.integral(v); err != nil {
				return err
			}
		}
	}
	if err := o.checkBounds(min, max); err != nil {
		return err
	}
	o.min, o.max = min, max
	return nil
}

func (o *Ordinal) SetRange(low, high float64) error {
	for _, v := range []float64{low, high} {
		if err := o.integral(v); err != nil {
			return err
		}
	}
	if err := o.checkRange(low, high); err != nil {
		return err
	}
	o.low, o.high = low, high
	return nil
}

func (o *Ordinal) integral(v float64) error {
	if math.IsInf(v, 0) || math.IsNaN(v) || v != math.Trunc(v) {
		return fmt.Errorf("%w: %s got %g", core.ErrNonIntegerOrdinal, o.name, v)
	}
	return nil
}

// Categorical holds one label out of an ordered list of allowed values.
type Categorical struct {
	name       string
	values     []string
	fixedValue string
}

func (c *Categorical) Name() string       { return c.name }
func (c *Categorical) Kind() Kind         { return KindCategorical }
func (c *Categorical) Values() []string   { return slices.Clone(c.values) }
func (c *Categorical) FixedValue() string { return c.fixedValue }
func (c *Categorical) Clone() Factor {
	cp := *c
	cp.values = slices.Clone(c.values)
	return &cp
}

// SetFixedValue selects the label used by optimization designs.
func (c *Categorical) SetFixedValue(v string) error {
	if !slices.Contains(c.values, v) {
		return fmt.Errorf("%w: %s has no value %q", core.ErrInvalidFactorSpec, c.name, v)
	}
	c.fixedValue = v
	return nil
}

// NewQuantitative builds a continuous factor with explicit bounds and range.
func NewQuantitative(name string, min, max, low, high float64) (*Quantitative, error) {
	q := &Quantitative{numeric{name: name, min: math.Inf(-1), max: math.Inf(1), screeningLevels: DefaultScreeningLevels}}
	if err := q.SetBounds(min, max); err != nil {
		return nil, err
	}
	if err := q.SetRange(low, high); err != nil {
		return nil, err
	}
	return q, nil
}

// NewOrdinal builds an integer factor with explicit bounds and range.
func NewOrdinal(name string, min, max, low, high float64) (*Ordinal, error) {
	o := &Ordinal{numeric{name: name, min: math.Inf(-1), max: math.Inf(1), screeningLevels: DefaultScreeningLevels}}
	if err := o.SetBounds(min, max); err != nil {
		return nil, err
	}
	if err := o.SetRange(low, high); err != nil {
		return nil, err
	}
	return o, nil
}

// NewCategorical builds a categorical factor. The first value is selected.
func NewCategorical(name string, values []string) (*Categorical, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: %s needs at least one value", core.ErrInvalidFactorSpec, name)
	}
	return &Categorical{name: name, values: slices.Clone(values), fixedValue: values[0]}, nil
}

// SetScreeningLevels overrides how many levels a numeric factor gets during screening.
func SetScreeningLevels(n Numeric, levels int) error {
	if levels < 2 {
		return fmt.Errorf("%w: %s screening_levels must be >= 2, got %d", core.ErrInvalidFactorSpec, n.Name(), levels)
	}
	switch f := n.(type) {
	case *Quantitative:
		f.setLevels(levels)
	case *Ordinal:
		f.setLevels(levels)
	}
	return nil
}
