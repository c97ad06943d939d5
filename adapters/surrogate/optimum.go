package surrogate

import (
	"math"

	"godoe/domain/response"

	"gonum.org/v1/gonum/optimize"
)

const (
	maxGridPoints = 20000
	maxGridSide   = 21
	boundPenalty  = 1e6
)

// objective returns a function to minimize in coded space.
func objective(coef []float64, terms []term, criterion response.Criterion, goal float64) func([]float64) float64 {
	return func(z []float64) float64 {
		v := predictCoded(coef, terms, z)
		switch criterion {
		case response.Minimize:
			return v
		case response.Target:
			return (v - goal) * (v - goal)
		}
		return -v
	}
}

func clampUnit(z []float64) ([]float64, float64) {
	out := make([]float64, len(z))
	var excess float64
	for i, v := range z {
		out[i] = math.Max(-1, math.Min(1, v))
		excess += (v - out[i]) * (v - out[i])
	}
	return out, excess
}

// searchOptimum finds the best point inside the coded box [-1, 1]^k: a grid
// scan followed by Nelder-Mead refinement from the best grid point.
func searchOptimum(obj func([]float64) float64, k int) []float64 {
	side := maxGridSide
	for side > 3 && math.Pow(float64(side), float64(k)) > maxGridPoints {
		side -= 2
	}

	levels := make([]int, k)
	for i := range levels {
		levels[i] = side
	}
	best, bestF := make([]float64, k), math.Inf(1)
	for _, idx := range fullFactorialInts(levels) {
		z := make([]float64, k)
		for i, l := range idx {
			z[i] = -1 + 2*float64(l)/float64(side-1)
		}
		if f := obj(z); f < bestF {
			best, bestF = z, f
		}
	}

	problem := optimize.Problem{
		Func: func(z []float64) float64 {
			c, excess := clampUnit(z)
			return obj(c) + boundPenalty*excess
		},
	}
	result, err := optimize.Minimize(problem, best, nil, &optimize.NelderMead{})
	if result == nil || err != nil && result.Status == optimize.NotTerminated {
		return best
	}
	refined, _ := clampUnit(result.X)
	if obj(refined) < bestF {
		return refined
	}
	return best
}

func fullFactorialInts(levels []int) [][]int {
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
