package designer

import (
	"context"
	"fmt"
	"maps"
	"math"
	"strings"

	"godoe/domain/core"
	"godoe/domain/design"
	"godoe/domain/factor"
	"godoe/domain/response"
	"godoe/internal/errors"
	"godoe/ports"
)

// GetOptimalSettings consumes the responses measured for the current design.
// In the screening phase it picks the best screening run, narrows every factor
// around it and switches to optimization. In the optimization phase it fits a
// surrogate model and returns its predicted optimum; an empty PredictedOptimum
// means no model passed the Q² limit.
func (d *Designer) GetOptimalSettings(ctx context.Context, table *design.Sheet) (design.OptimizationResult, error) {
	if d.designSheet == nil {
		return design.OptimizationResult{}, errors.Classify(core.ErrNoDesign)
	}
	if table == nil || table.Rows() != d.designSheet.Rows() {
		rows := 0
		if table != nil {
			rows = table.Rows()
		}
		return design.OptimizationResult{}, errors.Classify(fmt.Errorf("%w: %d responses for %d runs",
			core.ErrShapeMismatch, rows, d.designSheet.Rows()))
	}

	var (
		res design.OptimizationResult
		err error
	)
	switch d.phase {
	case design.PhaseScreening:
		if d.screening == nil {
			return design.OptimizationResult{}, errors.Classify(core.ErrNoDesign)
		}
		responses, selErr := table.Select(d.responses.Names()...)
		if selErr != nil {
			return design.OptimizationResult{}, errors.Classify(fmt.Errorf("response sheet: %w", selErr))
		}
		prevResponse, prevIndex := d.screening.response, d.screening.useIndex
		prevTransforms, prevLast := maps.Clone(d.transforms), d.lastTransform
		d.screening.response, d.screening.useIndex = responses, 1
		if res, err = d.evaluateScreening(1); err != nil {
			d.screening.response, d.screening.useIndex = prevResponse, prevIndex
			d.transforms, d.lastTransform = prevTransforms, prevLast
		}
	case design.PhaseOptimization:
		res, err = d.predictOptimum(ctx, table)
	default:
		err = fmt.Errorf("%w: %q", core.ErrUnknownPhase, d.phase)
	}
	if err != nil {
		return design.OptimizationResult{}, errors.Classify(err)
	}
	return res, nil
}

func (d *Designer) predictOptimum(ctx context.Context, table *design.Sheet) (design.OptimizationResult, error) {
	t, err := d.treatResponse(table, true)
	if err != nil {
		return design.OptimizationResult{}, err
	}
	for i, v := range t.values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return design.OptimizationResult{}, fmt.Errorf("%w: run %d has no usable response", core.ErrInsufficientData, i)
		}
	}

	numeric := d.factors.Numeric()
	names := make([]string, len(numeric))
	for i, n := range numeric {
		names[i] = n.Name()
	}
	sub, err := d.designSheet.Select(names...)
	if err != nil {
		return design.OptimizationResult{}, err
	}

	fit, err := d.opts.fitter.Fit(ctx, ports.FitRequest{
		Design:    sub,
		Response:  t.values,
		Factors:   names,
		Criterion: t.criterion,
		Goal:      t.goal,
		Folds:     d.opts.folds,
		Selection: d.opts.modelSelection,
		Formula:   d.opts.manualFormula,
		Q2Limit:   d.opts.q2Limit,
		Rand:      d.opts.rand,
	})
	if err != nil {
		return design.OptimizationResult{}, err
	}
	d.responseValues = t.values

	result := design.OptimizationResult{PredictedOptimum: design.NewSettings()}
	if len(fit.Optimum) == 0 || fit.Q2 < d.opts.q2Limit {
		d.logger.Info("designer: no usable model (Q2 %.3f, limit %.3f)", fit.Q2, d.opts.q2Limit)
		return result, nil
	}
	if fit.Model != nil {
		d.logger.Info("designer: model %s with Q2 %.3f", fit.Model.Formula(), fit.Q2)
	}

	for _, n := range numeric {
		v, ok := fit.Optimum[n.Name()]
		if !ok {
			return design.OptimizationResult{}, fmt.Errorf("%w: predicted optimum lacks %q", core.ErrShapeMismatch, n.Name())
		}
		if n.Integral() {
			v = math.Round(v)
		}
		result.PredictedOptimum.Numeric[n.Name()] = math.Min(math.Max(v, n.Min()), n.Max())
	}
	for _, c := range d.factors.Categorical() {
		result.PredictedOptimum.Labels[c.Name()] = c.FixedValue()
	}
	return result, nil
}

// UpdateFactorsFromOptimum moves the factor ranges toward an observed optimum.
// A factor whose relative offset from its centre is below tol stays put; when
// every factor is below tol the campaign has converged. With recovery the
// analysis runs but no factor is changed.
func (d *Designer) UpdateFactorsFromOptimum(exp design.Experiment, tol float64, recovery bool) (design.OptimizationResult, error) {
	if tol < 0 || math.IsNaN(tol) {
		return design.OptimizationResult{}, errors.Classify(fmt.Errorf("%w: tol must be non-negative, got %g", core.ErrInvalidKnob, tol))
	}
	numeric := d.factors.Numeric()
	ratios := make([]float64, len(numeric))
	converged := true
	var report strings.Builder
	for i, n := range numeric {
		v, ok := exp.FactorSettings.Numeric[n.Name()]
		if !ok {
			return design.OptimizationResult{}, errors.Classify(fmt.Errorf("%w: optimum lacks factor %q", core.ErrShapeMismatch, n.Name()))
		}
		if n.Span() > 0 {
			ratios[i] = (v - n.Center()) / n.Span()
		}
		if math.Abs(ratios[i]) >= tol {
			converged = false
		}
		fmt.Fprintf(&report, " %s=%.3f", n.Name(), ratios[i])
	}
	d.logger.Info("designer: optimum offset ratios%s (tol %g)", report.String(), tol)

	result := design.OptimizationResult{
		PredictedOptimum: exp.FactorSettings.Clone(),
		Converged:        converged,
		Tol:              tol,
		EmpiricallyFound: true,
	}
	if converged || recovery {
		return result, nil
	}

	oldCenters := make([]float64, len(numeric))
	type update struct {
		n         factor.Numeric
		low, high float64
	}
	var updates []update
	for i, n := range numeric {
		oldCenters[i] = n.Center()
		if math.Abs(ratios[i]) < tol {
			continue
		}
		low, high := d.stepRange(n, ratios[i])
		updates = append(updates, update{n, low, high})
	}
	for _, u := range updates {
		if err := u.n.SetRange(u.low, u.high); err != nil {
			return design.OptimizationResult{}, errors.Classify(err)
		}
		d.logger.Debug("designer: %s moved to [%g, %g]", u.n.Name(), u.low, u.high)
	}

	moved := false
	for i, n := range numeric {
		if n.Center() != oldCenters[i] {
			moved = true
			break
		}
	}
	if !moved {
		result.Converged = true
		result.ReachedLimits = d.limitsReached(exp.WeightedResponse)
		d.logger.Info("designer: design space pinned at its bounds, reached limits %t", result.ReachedLimits)
	}
	return result, nil
}

// stepRange shifts a factor's centre toward the optimum and shrinks its span.
func (d *Designer) stepRange(n factor.Numeric, ratio float64) (float64, float64) {
	stepLength := d.opts.relativeStep
	if stepLength == 0 {
		stepLength = math.Abs(ratio)
	}
	span := n.Span()
	center := n.Center() + span*stepLength*sign(ratio)
	newSpan := span * d.opts.shrinkage
	low, high := center-newSpan/2, center+newSpan/2
	if n.Integral() {
		low, high = math.Round(low), math.Round(high)
	}
	return n.ClipToBounds(low, high)
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// limitsReached reports whether the single response has crossed its configured
// limit. Limits are compared in the space of the last applied transform.
func (d *Designer) limitsReached(weighted float64) bool {
	if len(d.responses) != 1 {
		return true
	}
	spec := d.responses[d.responses.Names()[0]]
	tr := d.lastTransform
	switch spec.Criterion {
	case response.Maximize:
		if spec.LowLimit != nil && weighted < tr.Forward(*spec.LowLimit) {
			return false
		}
	case response.Minimize:
		if spec.HighLimit != nil && weighted > tr.Forward(*spec.HighLimit) {
			return false
		}
	case response.Target:
		if spec.LowLimit != nil && spec.HighLimit != nil &&
			(weighted < tr.Forward(*spec.LowLimit) || weighted > tr.Forward(*spec.HighLimit)) {
			return false
		}
	}
	return true
}
