package factor

import (
	"fmt"
	"math"

	"godoe/domain/core"
)

// Spec is the external description of one factor, as found in a campaign file.
// Field names follow the campaign file keys.
type Spec struct {
	Type            Kind     `yaml:"type" json:"type" validate:"required,oneof=quantitative ordinal categorical"`
	Min             *float64 `yaml:"min,omitempty" json:"min,omitempty"`
	Max             *float64 `yaml:"max,omitempty" json:"max,omitempty"`
	LowInit         float64  `yaml:"low_init" json:"low_init"`
	HighInit        float64  `yaml:"high_init" json:"high_init"`
	Values          []string `yaml:"values,omitempty" json:"values,omitempty"`
	ScreeningLevels int      `yaml:"screening_levels,omitempty" json:"screening_levels,omitempty"`
	LogScale        bool     `yaml:"log_scale,omitempty" json:"log_scale,omitempty"`
}

// FromSpec maps a spec to the matching factor variant.
//
// When min is omitted it defaults to 0 if both initial values are non-negative
// and to -Inf otherwise; an omitted max defaults to +Inf.
func FromSpec(name string, spec Spec) (Factor, error) {
	switch spec.Type {
	case KindCategorical:
		return NewCategorical(name, spec.Values)
	case KindQuantitative, KindOrdinal:
	default:
		return nil, fmt.Errorf("%w: %s has unknown type %q", core.ErrInvalidFactorSpec, name, spec.Type)
	}

	min := math.Inf(-1)
	if spec.LowInit >= 0 && spec.HighInit >= 0 {
		min = 0
	}
	if spec.Min != nil {
		min = *spec.Min
	}
	max := math.Inf(1)
	if spec.Max != nil {
		max = *spec.Max
	}

	var (
		f   Numeric
		err error
	)
	if spec.Type == KindOrdinal {
		f, err = NewOrdinal(name, min, max, spec.LowInit, spec.HighInit)
	} else {
		f, err = NewQuantitative(name, min, max, spec.LowInit, spec.HighInit)
	}
	if err != nil {
		return nil, err
	}

	if spec.ScreeningLevels != 0 {
		if err := SetScreeningLevels(f, spec.ScreeningLevels); err != nil {
			return nil, err
		}
	}
	if spec.LogScale {
		if min <= 0 {
			return nil, fmt.Errorf("%w: %s log_scale needs a positive min", core.ErrInvalidFactorSpec, name)
		}
		switch v := f.(type) {
		case *Quantitative:
			v.logScale = true
		case *Ordinal:
			v.logScale = true
		}
	}
	return f, nil
}
