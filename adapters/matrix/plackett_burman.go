package matrix

import (
	"fmt"
	"math"

	"godoe/domain/core"
	"godoe/domain/design"
)

// Generating vectors for the order-12 (Toeplitz) and order-20 (Hankel) cores.
var (
	pb12Col = []float64{-1, -1, 1, -1, -1, -1, 1, 1, 1, -1, 1}
	pb12Row = []float64{-1, 1, -1, 1, 1, 1, -1, -1, -1, 1, -1}
	pb20Col = []float64{-1, -1, 1, 1, -1, -1, -1, -1, 1, -1, 1, -1, 1, 1, 1, 1, -1, -1, 1}
	pb20Row = []float64{1, -1, -1, 1, 1, -1, -1, -1, -1, 1, -1, 1, -1, 1, 1, 1, 1, -1, -1}
)

// PlackettBurman generates a two-level screening design with N runs, where N is
// the next multiple of four above the factor count and N = 2^e, 12·2^e or 20·2^e.
type PlackettBurman struct{}

func (PlackettBurman) Kind() design.Kind { return design.PlackettBurman }

func (p PlackettBurman) Generate(k int) ([][]float64, error) {
	if err := requireFactors(p.Kind(), k, 1); err != nil {
		return nil, err
	}
	n := 4 * (k/4 + 1)

	core12 := -1
	var doublings int
	for i, base := range []float64{1, 12, 20} {
		frac, exp := math.Frexp(float64(n) / base)
		if frac == 0.5 && exp > 0 {
			core12, doublings = i, exp-1
			break
		}
	}
	if core12 < 0 {
		return nil, fmt.Errorf("%w: no Plackett-Burman design with %d runs", core.ErrUnsupportedDesign, n)
	}

	var h [][]float64
	switch core12 {
	case 0:
		h = [][]float64{{1}}
	case 1:
		h = bordered(toeplitz(pb12Col, pb12Row))
	case 2:
		h = bordered(hankel(pb20Col, pb20Row))
	}
	for i := 0; i < doublings; i++ {
		h = sylvester(h)
	}

	out := make([][]float64, len(h))
	for r := range h {
		// Drop the constant first column, keep k columns, flip row order.
		out[len(h)-1-r] = append([]float64(nil), h[r][1:k+1]...)
	}
	return out, nil
}

func toeplitz(c, r []float64) [][]float64 {
	out := make([][]float64, len(c))
	for i := range out {
		out[i] = make([]float64, len(r))
		for j := range out[i] {
			if i >= j {
				out[i][j] = c[i-j]
			} else {
				out[i][j] = r[j-i]
			}
		}
	}
	return out
}

func hankel(c, r []float64) [][]float64 {
	out := make([][]float64, len(c))
	for i := range out {
		out[i] = make([]float64, len(r))
		for j := range out[i] {
			if i+j < len(c) {
				out[i][j] = c[i+j]
			} else {
				out[i][j] = r[i+j-len(c)+1]
			}
		}
	}
	return out
}

// bordered adds a leading row and column of ones.
func bordered(m [][]float64) [][]float64 {
	n := len(m) + 1
	out := make([][]float64, n)
	out[0] = make([]float64, n)
	for j := range out[0] {
		out[0][j] = 1
	}
	for i, row := range m {
		out[i+1] = append([]float64{1}, row...)
	}
	return out
}

// sylvester doubles a Hadamard matrix: [[H, H], [H, -H]].
func sylvester(h [][]float64) [][]float64 {
	n := len(h)
	out := make([][]float64, 2*n)
	for i, row := range h {
		top := make([]float64, 2*n)
		bottom := make([]float64, 2*n)
		for j, v := range row {
			top[j], top[n+j] = v, v
			bottom[j], bottom[n+j] = v, -v
		}
		out[i], out[n+i] = top, bottom
	}
	return out
}
