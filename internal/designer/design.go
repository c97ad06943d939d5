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

// screeningCache holds what screening re-evaluation needs after the phase
// has moved on: the GSD sheet, its level index matrix and the measured
// response.
type screeningCache struct {
	factors  []string
	sheet    *design.Sheet
	index    [][]int
	response *design.Sheet
	useIndex int
}

// NewDesign proposes the next batch of experiments for the current phase.
func (d *Designer) NewDesign() (*design.Sheet, error) {
	var (
		sheet *design.Sheet
		err   error
	)
	switch d.phase {
	case design.PhaseScreening:
		sheet, err = d.newScreeningDesign()
	case design.PhaseOptimization:
		sheet, err = d.newOptimizationDesign()
	default:
		err = fmt.Errorf("%w: %q", core.ErrUnknownPhase, d.phase)
	}
	if err != nil {
		return nil, errors.Classify(err)
	}
	d.designSheet = sheet
	d.responseValues = nil
	d.logger.Info("designer: new %s design with %d runs", d.phase, sheet.Rows())
	return sheet.Clone(), nil
}

// screeningLevels returns the candidate values of a numeric factor across its
// hard bounds.
func screeningLevels(n factor.Numeric) ([]float64, error) {
	lo, hi := n.Min(), n.Max()
	if math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return nil, fmt.Errorf("%w: %s has bounds (%g, %g)", core.ErrUnboundedFactor, n.Name(), lo, hi)
	}
	count := n.ScreeningLevels()
	var levels []float64
	if n.LogScale() {
		if lo <= 0 {
			return nil, fmt.Errorf("%w: %s log-scaled levels need a positive min", core.ErrInvalidFactorSpec, n.Name())
		}
		levels = geomspace(lo, hi, count)
	} else {
		levels = linspace(lo, hi, count)
	}
	if n.Integral() {
		for i, v := range levels {
			levels[i] = math.Round(v)
		}
		levels = slices.Compact(levels)
	}
	return levels, nil
}

func linspace(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = lo
		return out
	}
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}

func geomspace(lo, hi float64, n int) []float64 {
	logs := linspace(math.Log(lo), math.Log(hi), n)
	for i, v := range logs {
		logs[i] = math.Exp(v)
	}
	logs[0], logs[n-1] = lo, hi
	return logs
}

func (d *Designer) newScreeningDesign() (*design.Sheet, error) {
	all := d.factors.All()
	names := make([]string, len(all))
	counts := make([]int, len(all))
	numericLevels := make(map[string][]float64)
	for i, f := range all {
		names[i] = f.Name()
		switch v := f.(type) {
		case *factor.Categorical:
			counts[i] = len(v.Values())
		case factor.Numeric:
			levels, err := screeningLevels(v)
			if err != nil {
				return nil, err
			}
			numericLevels[v.Name()] = levels
			counts[i] = len(levels)
		}
	}

	reduction := d.opts.gsdReduction
	if reduction == 0 {
		reduction = max(1, min(len(all), slices.Min(counts)))
		d.logger.Debug("designer: gsd reduction auto-selected as %d", reduction)
	}
	index, err := d.opts.gsd.Generate(counts, reduction)
	if err != nil {
		return nil, err
	}

	sheet := design.NewSheet(len(index))
	for c, f := range all {
		if cat, ok := f.(*factor.Categorical); ok {
			values := cat.Values()
			col := make([]string, len(index))
			for r, row := range index {
				col[r] = values[row[c]]
			}
			if err := sheet.SetLabels(f.Name(), col); err != nil {
				return nil, err
			}
			continue
		}
		levels := numericLevels[f.Name()]
		col := make([]float64, len(index))
		for r, row := range index {
			col[r] = levels[row[c]]
		}
		if err := sheet.SetNumeric(f.Name(), col); err != nil {
			return nil, err
		}
	}

	d.screening = &screeningCache{factors: names, sheet: sheet.Clone(), index: index, useIndex: 1}
	return sheet, nil
}

func (d *Designer) newOptimizationDesign() (*design.Sheet, error) {
	numeric := d.factors.Numeric()
	if len(numeric) == 0 {
		return nil, fmt.Errorf("%w: optimization needs a numeric factor", core.ErrTooFewFactors)
	}
	coded, err := d.matrix.Generate(len(numeric))
	if err != nil {
		return nil, err
	}

	sheet := design.NewSheet(len(coded))
	for c, n := range numeric {
		col := make([]float64, len(coded))
		for r, row := range coded {
			v := n.Center() + row[c]*n.Span()/2
			if n.Integral() {
				v = math.Round(v)
			}
			col[r] = v
		}
		if err := d.applyEdgeAction(n, col); err != nil {
			return nil, err
		}
		if err := sheet.SetNumeric(n.Name(), col); err != nil {
			return nil, err
		}
	}
	for _, c := range d.factors.Categorical() {
		col := make([]string, len(coded))
		for r := range col {
			col[r] = c.FixedValue()
		}
		if err := sheet.SetLabels(c.Name(), col); err != nil {
			return nil, err
		}
	}

	ordered, err := sheet.Select(d.factors.Names()...)
	if err != nil {
		return nil, err
	}
	return ordered, nil
}

// applyEdgeAction handles design points outside the factor's hard bounds.
func (d *Designer) applyEdgeAction(n factor.Numeric, col []float64) error {
	outside := slices.ContainsFunc(col, func(v float64) bool { return v < n.Min() || v > n.Max() })
	if !outside {
		return nil
	}
	switch d.opts.atEdges {
	case design.EdgeDistort:
		for i, v := range col {
			col[i] = math.Min(math.Max(v, n.Min()), n.Max())
		}
		d.logger.Debug("designer: distorted %s design points to bounds (%g, %g)", n.Name(), n.Min(), n.Max())
		return nil
	case design.EdgeShrink:
		return fmt.Errorf("%w: %q", core.ErrEdgeActionNotImplemented, d.opts.atEdges)
	}
	return fmt.Errorf("%w: %q", core.ErrInvalidEdgeAction, d.opts.atEdges)
}
