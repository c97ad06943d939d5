package ports

import "godoe/domain/response"

// DesirabilityFunc maps a response value onto [0, 1].
type DesirabilityFunc func(float64) float64

// DesirabilityFactory builds the desirability function for a response spec.
type DesirabilityFactory interface {
	Build(spec response.Spec) (DesirabilityFunc, error)
}
