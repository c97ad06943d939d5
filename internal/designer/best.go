package designer

import (
	"fmt"
	"maps"

	"godoe/domain/core"
	"godoe/domain/design"
	"godoe/internal/errors"
)

// GetBestExperiment ranks executed runs and returns the useIndex-th best,
// counting from 1. The designer's best experiment is replaced only when this
// run is strictly better, so it never regresses. Response values are ranked
// as measured; only the combination of several responses is applied.
func (d *Designer) GetBestExperiment(designSheet, responseSheet *design.Sheet, useIndex int) (design.Experiment, error) {
	exp, err := d.bestExperiment(designSheet, responseSheet, useIndex)
	if err != nil {
		return design.Experiment{}, errors.Classify(err)
	}
	return exp, nil
}

func (d *Designer) bestExperiment(designSheet, responseSheet *design.Sheet, useIndex int) (design.Experiment, error) {
	if designSheet == nil || responseSheet == nil {
		return design.Experiment{}, fmt.Errorf("%w: design and response sheets are required", core.ErrShapeMismatch)
	}
	if err := designSheet.RequireColumns(d.factors.Names()); err != nil {
		return design.Experiment{}, fmt.Errorf("design sheet: %w", err)
	}
	if err := responseSheet.RequireColumns(d.responses.Names()); err != nil {
		return design.Experiment{}, fmt.Errorf("response sheet: %w", err)
	}
	if designSheet.Rows() != responseSheet.Rows() {
		return design.Experiment{}, fmt.Errorf("%w: %d runs but %d responses",
			core.ErrShapeMismatch, designSheet.Rows(), responseSheet.Rows())
	}

	t, err := d.treatResponse(responseSheet, false)
	if err != nil {
		return design.Experiment{}, err
	}
	row, err := t.pick(useIndex)
	if err != nil {
		return design.Experiment{}, err
	}

	raw := make(map[string]float64, len(d.responses))
	for _, name := range d.responses.Names() {
		col, _ := responseSheet.Numeric(name)
		raw[name] = col[row]
	}
	exp := design.Experiment{
		FactorSettings:   designSheet.Row(row),
		WeightedResponse: t.values[row],
		Response:         raw,
		Criterion:        t.criterion,
		OldBest:          d.best.Clone(),
	}

	if d.best == nil || t.better(exp.WeightedResponse, d.best.WeightedResponse) {
		exp.NewBest = true
		d.best = &design.BestRecord{
			OptimalSettings:  exp.FactorSettings.Clone(),
			OptimalResponse:  maps.Clone(raw),
			WeightedResponse: exp.WeightedResponse,
		}
		d.logger.Info("designer: new best experiment, weighted response %g", exp.WeightedResponse)
	}
	return exp, nil
}
