package desirability

import (
	"fmt"
	"math"

	"godoe/domain/core"
	"godoe/domain/response"
	"godoe/ports"
)

// DerringerSuich builds the classic one- and two-sided desirability curves.
//
//	maximize: 0 below low_limit, 1 above target (default high_limit)
//	minimize: 1 below target (default low_limit), 0 above high_limit
//	target:   0 outside [low_limit, high_limit], 1 at the goal
//
// Between the anchors the curve is ((y - a) / (b - a))^s.
type DerringerSuich struct{}

// NewFactory returns the default desirability factory.
func NewFactory() ports.DesirabilityFactory { return DerringerSuich{} }

func (DerringerSuich) Build(spec response.Spec) (ports.DesirabilityFunc, error) {
	s := spec.Shape()
	switch spec.Criterion {
	case response.Maximize:
		if spec.LowLimit == nil {
			return nil, fmt.Errorf("%w: maximize desirability needs low_limit", core.ErrInvalidResponseSpec)
		}
		low := *spec.LowLimit
		target, err := anchor(spec.Target, spec.HighLimit, "target or high_limit")
		if err != nil {
			return nil, err
		}
		if target <= low {
			return nil, fmt.Errorf("%w: maximize target must exceed low_limit", core.ErrInvalidResponseSpec)
		}
		return func(y float64) float64 {
			switch {
			case y < low:
				return 0
			case y > target:
				return 1
			}
			return math.Pow((y-low)/(target-low), s)
		}, nil

	case response.Minimize:
		if spec.HighLimit == nil {
			return nil, fmt.Errorf("%w: minimize desirability needs high_limit", core.ErrInvalidResponseSpec)
		}
		high := *spec.HighLimit
		target, err := anchor(spec.Target, spec.LowLimit, "target or low_limit")
		if err != nil {
			return nil, err
		}
		if target >= high {
			return nil, fmt.Errorf("%w: minimize target must be below high_limit", core.ErrInvalidResponseSpec)
		}
		return func(y float64) float64 {
			switch {
			case y < target:
				return 1
			case y > high:
				return 0
			}
			return math.Pow((y-high)/(target-high), s)
		}, nil

	case response.Target:
		if spec.LowLimit == nil || spec.HighLimit == nil {
			return nil, fmt.Errorf("%w: target desirability needs both limits", core.ErrInvalidResponseSpec)
		}
		low, high, goal := *spec.LowLimit, *spec.HighLimit, spec.Goal()
		if !(low < goal && goal < high) {
			return nil, fmt.Errorf("%w: target must lie strictly inside the limits", core.ErrInvalidResponseSpec)
		}
		return func(y float64) float64 {
			switch {
			case y < low || y > high:
				return 0
			case y <= goal:
				return math.Pow((y-low)/(goal-low), s)
			}
			return math.Pow((y-high)/(goal-high), s)
		}, nil
	}
	return nil, fmt.Errorf("%w: criterion %q", core.ErrInvalidResponseSpec, spec.Criterion)
}

func anchor(primary, fallback *float64, what string) (float64, error) {
	if primary != nil {
		return *primary, nil
	}
	if fallback != nil {
		return *fallback, nil
	}
	return 0, fmt.Errorf("%w: desirability needs %s", core.ErrInvalidResponseSpec, what)
}
