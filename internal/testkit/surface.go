package testkit

import (
	"fmt"
	"math"
	"sort"

	"godoe/domain/core"
)

// Surface is a synthetic process: a campaign description plus the response
// function the campaign is run against.
type Surface struct {
	Name string
	// Campaign is the campaign file (YAML) matching the surface's factors and
	// responses.
	Campaign string
	// Optimum is where the noise-free surface is best, for numeric factors.
	Optimum map[string]float64
	Eval    func(x map[string]float64, labels map[string]string) map[string]float64
}

var surfaces = map[string]Surface{
	"ridge": {
		Name: "ridge",
		Campaign: `name: ridge
design_type: ccf
factors:
  a: {type: quantitative, min: 0, max: 20, low_init: 0, high_init: 20}
  b: {type: quantitative, min: 0, max: 10, low_init: 0, high_init: 10}
responses:
  y: {criterion: maximize}
designer:
  q2_limit: 0.5
`,
		Optimum: map[string]float64{"a": 8, "b": 3},
		Eval: func(x map[string]float64, _ map[string]string) map[string]float64 {
			return map[string]float64{"y": 100 - sq(x["a"]-8) - 2*sq(x["b"]-3)}
		},
	},
	"bowl": {
		Name: "bowl",
		Campaign: `name: bowl
design_type: ccc
factors:
  x1: {type: quantitative, min: -10, max: 10, low_init: 2, high_init: 6}
  x2: {type: quantitative, min: -10, max: 10, low_init: 2, high_init: 6}
responses:
  loss: {criterion: minimize, transform: log}
designer:
  skip_screening: true
  q2_limit: 0.5
`,
		Optimum: map[string]float64{"x1": -1, "x2": 1.5},
		Eval: func(x map[string]float64, _ map[string]string) map[string]float64 {
			return map[string]float64{"loss": 1 + sq(x["x1"]+1) + sq(x["x2"]-1.5) + 0.5*(x["x1"]+1)*(x["x2"]-1.5)}
		},
	},
	"bake": {
		Name: "bake",
		Campaign: `name: bake
design_type: ccf
factors:
  temperature: {type: quantitative, min: 150, max: 250, low_init: 150, high_init: 250}
  minutes: {type: ordinal, min: 10, max: 60, low_init: 10, high_init: 60, screening_levels: 6}
  flour: {type: categorical, values: [wheat, rye, spelt]}
responses:
  taste: {criterion: maximize, low_limit: 0, high_limit: 11}
  cost: {criterion: minimize, low_limit: 3, high_limit: 8}
designer:
  q2_limit: 0.3
`,
		Optimum: map[string]float64{"temperature": 196, "minutes": 33},
		Eval: func(x map[string]float64, labels map[string]string) map[string]float64 {
			bonus := map[string]float64{"wheat": 0, "rye": 1, "spelt": 0.5}[labels["flour"]]
			taste := 10 - sq((x["temperature"]-200)/25) - sq((x["minutes"]-35)/10) + bonus
			cost := 2 + 0.01*x["temperature"] + 0.05*x["minutes"] + bonus/2
			return map[string]float64{"taste": taste, "cost": cost}
		},
	},
}

// Lookup returns a registered surface.
func Lookup(name string) (Surface, error) {
	s, ok := surfaces[name]
	if !ok {
		return Surface{}, fmt.Errorf("%w: surface %q (have %v)", core.ErrNotFound, name, SurfaceNames())
	}
	return s, nil
}

// SurfaceNames lists the registered surfaces in order.
func SurfaceNames() []string {
	names := make([]string, 0, len(surfaces))
	for n := range surfaces {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Distance is the Euclidean distance of x from the surface optimum.
func (s Surface) Distance(x map[string]float64) float64 {
	var d float64
	for name, v := range s.Optimum {
		d += sq(x[name] - v)
	}
	return math.Sqrt(d)
}

func sq(v float64) float64 { return v * v }
