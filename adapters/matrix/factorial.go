package matrix

import (
	"fmt"

	"godoe/domain/core"
	"godoe/domain/design"
)

// fullFactorial returns every combination of level indices.
func fullFactorial(levels []int) [][]int {
	n := 1
	for _, l := range levels {
		n *= l
	}
	out := make([][]int, n)
	for r := range out {
		row := make([]int, len(levels))
		rem := r
		for c, l := range levels {
			row[c] = rem % l
			rem /= l
		}
		out[r] = row
	}
	return out
}

func repeatInt(v, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// ff2n is the two-level full factorial in -1/+1 coding.
func ff2n(k int) [][]float64 {
	return coded(fullFactorial(repeatInt(2, k)), func(l int) float64 { return float64(2*l - 1) })
}

func coded(m [][]int, f func(int) float64) [][]float64 {
	out := make([][]float64, len(m))
	for r, row := range m {
		out[r] = make([]float64, len(row))
		for c, v := range row {
			out[r][c] = f(v)
		}
	}
	return out
}

func requireFactors(kind design.Kind, k, min int) error {
	if k < min {
		return fmt.Errorf("%w: %s needs at least %d factors, got %d", core.ErrTooFewFactors, kind, min, k)
	}
	return nil
}

// FullFactorial2 generates 2^k runs at -1/+1.
type FullFactorial2 struct{}

func (FullFactorial2) Kind() design.Kind { return design.FullFactorial2 }

func (f FullFactorial2) Generate(k int) ([][]float64, error) {
	if err := requireFactors(f.Kind(), k, 1); err != nil {
		return nil, err
	}
	return ff2n(k), nil
}

// FullFactorial3 generates 3^k runs at -1/0/+1.
type FullFactorial3 struct{}

func (FullFactorial3) Kind() design.Kind { return design.FullFactorial3 }

func (f FullFactorial3) Generate(k int) ([][]float64, error) {
	if err := requireFactors(f.Kind(), k, 1); err != nil {
		return nil, err
	}
	return coded(fullFactorial(repeatInt(3, k)), func(l int) float64 { return float64(l - 1) }), nil
}
