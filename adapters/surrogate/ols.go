package surrogate

import (
	"fmt"

	"godoe/domain/core"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// coding maps raw factor values onto [-1, 1] over the design's extent.
type coding struct {
	mid, half []float64
}

func newCoding(columns [][]float64) coding {
	c := coding{mid: make([]float64, len(columns)), half: make([]float64, len(columns))}
	for i, col := range columns {
		lo, hi := floats.Min(col), floats.Max(col)
		c.mid[i] = (lo + hi) / 2
		c.half[i] = (hi - lo) / 2
		if c.half[i] == 0 {
			c.half[i] = 1
		}
	}
	return c
}

func (c coding) encode(x []float64) []float64 {
	z := make([]float64, len(x))
	for i, v := range x {
		z[i] = (v - c.mid[i]) / c.half[i]
	}
	return z
}

func (c coding) decode(z []float64) []float64 {
	x := make([]float64, len(z))
	for i, v := range z {
		x[i] = c.mid[i] + v*c.half[i]
	}
	return x
}

// designMatrix builds the regression matrix with a leading intercept column.
func designMatrix(z [][]float64, terms []term) *mat.Dense {
	x := mat.NewDense(len(z), len(terms)+1, nil)
	for r, row := range z {
		x.Set(r, 0, 1)
		for c, t := range terms {
			x.Set(r, c+1, t.value(row))
		}
	}
	return x
}

// fitOLS solves the least-squares problem for the given terms. It fails when
// there are fewer observations than coefficients or the system is singular.
func fitOLS(z [][]float64, y []float64, terms []term) ([]float64, error) {
	p := len(terms) + 1
	if len(z) < p {
		return nil, fmt.Errorf("%w: %d runs for %d coefficients", core.ErrInsufficientData, len(z), p)
	}
	var beta mat.VecDense
	if err := beta.SolveVec(designMatrix(z, terms), mat.NewVecDense(len(y), append([]float64(nil), y...))); err != nil {
		return nil, fmt.Errorf("least squares: %w", err)
	}
	return beta.RawVector().Data, nil
}

func predictCoded(coef []float64, terms []term, z []float64) float64 {
	v := coef[0]
	for i, t := range terms {
		v += coef[i+1] * t.value(z)
	}
	return v
}

// quadraticModel is a fitted response surface.
type quadraticModel struct {
	names  []string
	terms  []term
	coef   []float64
	coding coding
}

func (m *quadraticModel) Formula() string {
	return formatFormula(m.names, m.terms)
}

// Predict evaluates the model at raw factor values; missing factors sit at the
// design center.
func (m *quadraticModel) Predict(x map[string]float64) float64 {
	raw := make([]float64, len(m.names))
	for i, name := range m.names {
		if v, ok := x[name]; ok {
			raw[i] = v
		} else {
			raw[i] = m.coding.mid[i]
		}
	}
	return predictCoded(m.coef, m.terms, m.coding.encode(raw))
}

// Coefficients returns the intercept followed by one coefficient per term.
func (m *quadraticModel) Coefficients() []float64 {
	return append([]float64(nil), m.coef...)
}
