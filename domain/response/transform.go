package response

import (
	"fmt"
	"math"

	"godoe/domain/core"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/optimize"
)

// Transform names a value transform applied to raw response measurements.
type Transform string

const (
	TransformNone   Transform = "none"
	TransformLog    Transform = "log"
	TransformBoxCox Transform = "box-cox"
)

// Valid reports whether t is known. The empty string means none.
func (t Transform) Valid() bool {
	switch t {
	case "", TransformNone, TransformLog, TransformBoxCox:
		return true
	}
	return false
}

// Applied is a fitted transform; it remembers the Box-Cox lambda so the same
// mapping can be replayed on limits and inverted later.
type Applied struct {
	Kind   Transform `yaml:"kind" json:"kind"`
	Lambda float64   `yaml:"lambda,omitempty" json:"lambda,omitempty"`
}

// Identity is the no-op transform.
func Identity() Applied { return Applied{Kind: TransformNone} }

// Forward maps a raw value into transformed space.
func (a Applied) Forward(v float64) float64 {
	switch a.Kind {
	case TransformLog:
		return math.Log(v)
	case TransformBoxCox:
		return boxCox(v, a.Lambda)
	}
	return v
}

// Inverse maps a transformed value back to raw units.
func (a Applied) Inverse(v float64) float64 {
	switch a.Kind {
	case TransformLog:
		return math.Exp(v)
	case TransformBoxCox:
		if a.Lambda == 0 {
			return math.Exp(v)
		}
		return math.Pow(a.Lambda*v+1, 1/a.Lambda)
	}
	return v
}

// ForwardAll maps every value.
func (a Applied) ForwardAll(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = a.Forward(v)
	}
	return out
}

// Fit prepares the transform for values. Log and Box-Cox need strictly positive
// data; Box-Cox additionally estimates lambda by maximum likelihood. NaN marks a
// failed run: it is skipped here and stays NaN through Forward.
func (t Transform) Fit(values []float64) (Applied, error) {
	switch t {
	case "", TransformNone:
		return Identity(), nil
	case TransformLog, TransformBoxCox:
	default:
		return Applied{}, fmt.Errorf("%w: transform %q", core.ErrInvalidResponseSpec, t)
	}

	measured := make([]float64, 0, len(values))
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if v <= 0 {
			return Applied{}, fmt.Errorf("%w: %s got %g", core.ErrNonPositiveResponse, t, v)
		}
		measured = append(measured, v)
	}
	if t == TransformLog {
		return Applied{Kind: TransformLog}, nil
	}

	lambda, err := boxCoxLambda(measured)
	if err != nil {
		return Applied{}, err
	}
	return Applied{Kind: TransformBoxCox, Lambda: lambda}, nil
}

func boxCox(v, lambda float64) float64 {
	if lambda == 0 {
		return math.Log(v)
	}
	return (math.Pow(v, lambda) - 1) / lambda
}

// boxCoxLogLikelihood is the profile log-likelihood of lambda:
// (lambda-1)*sum(log y) - n/2*log(var(y_lambda)).
func boxCoxLogLikelihood(values []float64, lambda float64) float64 {
	n := float64(len(values))
	var logSum float64
	transformed := make([]float64, len(values))
	for i, v := range values {
		logSum += math.Log(v)
		transformed[i] = boxCox(v, lambda)
	}
	variance, err := stats.PopulationVariance(transformed)
	if err != nil || variance <= 0 {
		return math.Inf(-1)
	}
	return (lambda-1)*logSum - n/2*math.Log(variance)
}

const maxAbsLambda = 5

func boxCoxLambda(values []float64) (float64, error) {
	if len(values) < 2 {
		return 0, fmt.Errorf("%w: box-cox needs at least two values", core.ErrInsufficientData)
	}
	if spread, err := stats.PopulationVariance(values); err != nil || spread == 0 {
		// Constant data carries no information about lambda.
		return 1, nil
	}
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			if math.Abs(x[0]) > maxAbsLambda {
				return math.Inf(1)
			}
			return -boxCoxLogLikelihood(values, x[0])
		},
	}
	result, err := optimize.Minimize(problem, []float64{1}, nil, &optimize.NelderMead{})
	if result == nil {
		return 0, fmt.Errorf("box-cox lambda search: %w", err)
	}
	return result.X[0], nil
}
