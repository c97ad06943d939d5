package surrogate

import (
	"context"
	"math"
	"math/bits"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"
)

// candidate is a scored term subset.
type candidate struct {
	terms []term
	q2    float64
	ok    bool
}

// better prefers higher Q², then fewer terms.
func (c candidate) better(o candidate) bool {
	switch {
	case !o.ok:
		return c.ok
	case !c.ok:
		return false
	case c.q2 != o.q2:
		return c.q2 > o.q2
	}
	return len(c.terms) < len(o.terms)
}

type cvData struct {
	z     [][]float64
	y     []float64
	folds []int
	k     int
}

func (d cvData) score(terms []term) candidate {
	v, err := q2(d.z, d.y, terms, d.folds, d.k)
	if err != nil || math.IsNaN(v) {
		return candidate{terms: terms}
	}
	return candidate{terms: terms, q2: v, ok: true}
}

// selectBrute scores every hierarchical subset of the full quadratic model.
func (f *Fitter) selectBrute(ctx context.Context, d cvData, nFactors int) (candidate, error) {
	all := fullQuadratic(nFactors)
	if len(all) > f.maxBruteTerms {
		f.logger.Info("brute selection over %d terms exceeds limit %d, falling back to greedy", len(all), f.maxBruteTerms)
		return f.selectGreedy(d, nFactors), nil
	}

	var masks []uint32
	for mask := uint32(0); mask < 1<<len(all); mask++ {
		if bits.OnesCount32(mask)+1 >= len(d.y) {
			continue
		}
		if hierarchical(subset(all, mask)) {
			masks = append(masks, mask)
		}
	}

	results := make([]candidate, len(masks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.workers)
	for i, mask := range masks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = d.score(subset(all, mask))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return candidate{}, err
	}

	best := candidate{}
	for _, c := range results {
		if c.better(best) {
			best = c
		}
	}
	f.logger.Debug("brute selection scored %d models, best Q2 %.4f", len(masks), best.q2)
	return best, nil
}

func subset(all []term, mask uint32) []term {
	var out []term
	for i, t := range all {
		if mask&(1<<i) != 0 {
			out = append(out, t)
		}
	}
	return out
}

// selectGreedy starts from the largest fittable quadratic model and removes
// one term at a time while Q² does not get worse.
func (f *Fitter) selectGreedy(d cvData, nFactors int) candidate {
	current := fullQuadratic(nFactors)
	for len(current)+1 >= len(d.y) && len(current) > 0 {
		current = current[:len(current)-1]
	}

	best := d.score(current)
	for len(current) > 0 {
		var step candidate
		for i := range current {
			reduced := slices.Delete(slices.Clone(current), i, i+1)
			if !hierarchical(reduced) {
				continue
			}
			if c := d.score(reduced); c.better(step) {
				step = c
			}
		}
		if !step.ok || (best.ok && step.q2 < best.q2) {
			break
		}
		best, current = step, step.terms
	}
	f.logger.Debug("greedy selection kept %d terms, Q2 %.4f", len(best.terms), best.q2)
	return best
}

func defaultWorkers() int {
	return max(1, runtime.GOMAXPROCS(0))
}
