package designer

import (
	"fmt"
	"math"
	"slices"

	"godoe/domain/core"
	"godoe/domain/design"
	"godoe/domain/factor"
	"godoe/internal/errors"
)

// ReevaluateScreening moves on to the next-best screening run, recomputing the
// factor ranges from the screening response already held. No new screening
// experiments are needed.
func (d *Designer) ReevaluateScreening() (design.OptimizationResult, error) {
	sc := d.screening
	if sc == nil || sc.response == nil {
		return design.OptimizationResult{}, errors.Classify(core.ErrNoScreeningResponse)
	}
	next := sc.useIndex + 1
	if next > sc.sheet.Rows() {
		return design.OptimizationResult{}, errors.Classify(fmt.Errorf("%w: all %d screening runs tried",
			core.ErrNoScreeningAlternatives, sc.sheet.Rows()))
	}
	res, err := d.evaluateScreening(next)
	if err != nil {
		return design.OptimizationResult{}, errors.Classify(err)
	}
	sc.useIndex = next
	return res, nil
}

// evaluateScreening picks the useIndex-th best screening run and centres each
// factor's next range on it.
func (d *Designer) evaluateScreening(useIndex int) (design.OptimizationResult, error) {
	sc := d.screening
	t, err := d.treatResponse(sc.response, true)
	if err != nil {
		return design.OptimizationResult{}, err
	}
	row, err := t.pick(useIndex)
	if err != nil {
		return design.OptimizationResult{}, err
	}

	type update struct {
		n         factor.Numeric
		low, high float64
	}
	var updates []update
	fixed := make(map[*factor.Categorical]string)
	for c, name := range sc.factors {
		f, ok := d.factors.Get(name)
		if !ok {
			return design.OptimizationResult{}, fmt.Errorf("%w: screening factor %q", core.ErrShapeMismatch, name)
		}
		switch v := f.(type) {
		case *factor.Categorical:
			fixed[v] = v.Values()[sc.index[row][c]]
		case factor.Numeric:
			col, _ := sc.sheet.Numeric(name)
			low, high := d.screeningRange(v, col, row)
			updates = append(updates, update{v, low, high})
		}
	}

	prevBest := d.best.Clone()
	if _, err := d.bestExperiment(sc.sheet, sc.response, 1); err != nil {
		d.best = prevBest
		return design.OptimizationResult{}, err
	}

	prevFixed := make(map[*factor.Categorical]string, len(fixed))
	for c := range fixed {
		prevFixed[c] = c.FixedValue()
	}
	prevRanges := make([][2]float64, len(updates))
	for i, u := range updates {
		prevRanges[i] = [2]float64{u.n.Low(), u.n.High()}
	}
	rollback := func() {
		for c, value := range prevFixed {
			_ = c.SetFixedValue(value)
		}
		for i, u := range updates {
			_ = u.n.SetRange(prevRanges[i][0], prevRanges[i][1])
		}
		d.best = prevBest
	}

	for c, value := range fixed {
		if err := c.SetFixedValue(value); err != nil {
			rollback()
			return design.OptimizationResult{}, err
		}
	}
	for _, u := range updates {
		if err := u.n.SetRange(u.low, u.high); err != nil {
			rollback()
			return design.OptimizationResult{}, err
		}
		d.logger.Debug("designer: screening set %s to [%g, %g]", u.n.Name(), u.low, u.high)
	}

	d.phase = design.PhaseOptimization
	settings := sc.sheet.Row(row)
	d.logger.Info("designer: screening run %d ranked %d, switching to optimization", row, useIndex)
	return design.OptimizationResult{PredictedOptimum: settings, EmpiricallyFound: true}, nil
}

// screeningRange spans the levels adjacent to the winning level, scaled by the
// span ratio and centred on the winner.
func (d *Designer) screeningRange(n factor.Numeric, col []float64, row int) (float64, float64) {
	levels := slices.Clone(col)
	slices.Sort(levels)
	levels = slices.Compact(levels)

	win := col[row]
	i, _ := slices.BinarySearch(levels, win)
	below := levels[max(i-1, 0)]
	above := levels[min(i+1, len(levels)-1)]
	span := (above - below) * d.opts.gsdSpanRatio

	var low, high float64
	if n.Integral() {
		half := math.Max(1, math.Round(span/2))
		low, high = win-half, win+half
	} else {
		low, high = win-span/2, win+span/2
	}
	return n.ClipToBounds(low, high)
}
