package matrix

import (
	"fmt"
	"math"

	"godoe/domain/core"
	"godoe/domain/design"
)

// CentralComposite is a two-level factorial augmented with axial (star) points.
// Circumscribed and inscribed designs use the orthogonal alpha; faced designs put
// star points on the cube faces.
type CentralComposite struct {
	Face            design.Kind
	FactorialCenter int
	AxialCenter     int
}

func (c CentralComposite) Kind() design.Kind { return c.Face }

func (c CentralComposite) Generate(k int) ([][]float64, error) {
	if err := requireFactors(c.Face, k, 2); err != nil {
		return nil, err
	}

	alpha := 1.0
	if c.Face == design.CCC || c.Face == design.CCI {
		nc, na := math.Pow(2, float64(k)), float64(2*k)
		alpha = math.Sqrt(float64(k) * (1 + float64(c.AxialCenter)/na) / (1 + float64(c.FactorialCenter)/nc))
	}

	factorial := ff2n(k)
	star := make([][]float64, 2*k)
	for i := 0; i < k; i++ {
		star[2*i] = make([]float64, k)
		star[2*i+1] = make([]float64, k)
		star[2*i][i], star[2*i+1][i] = -alpha, alpha
	}

	switch c.Face {
	case design.CCC, design.CCF:
	case design.CCI:
		scale(factorial, 1/alpha)
		scale(star, 1/alpha)
	default:
		return nil, fmt.Errorf("%w: central composite face %q", core.ErrUnsupportedDesign, c.Face)
	}

	out := append([][]float64{}, factorial...)
	out = appendCenter(out, k, c.FactorialCenter)
	out = append(out, star...)
	out = appendCenter(out, k, c.AxialCenter)
	return out, nil
}

func scale(m [][]float64, f float64) {
	for _, row := range m {
		for j := range row {
			row[j] *= f
		}
	}
}

func appendCenter(m [][]float64, k, n int) [][]float64 {
	for i := 0; i < n; i++ {
		m = append(m, make([]float64, k))
	}
	return m
}
