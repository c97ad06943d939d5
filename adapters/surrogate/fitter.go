package surrogate

import (
	"context"
	"fmt"

	"godoe/domain/core"
	"godoe/domain/design"
	"godoe/internal"
	"godoe/ports"
)

// defaultMaxBruteTerms caps exhaustive search at 2^14 candidate subsets, which
// covers the full quadratic model of up to four factors.
const defaultMaxBruteTerms = 14

// Fitter is the default SurrogateModelFitter.
type Fitter struct {
	logger        *internal.Logger
	maxBruteTerms int
	workers       int
}

// NewFitter creates a fitter; a nil logger discards output.
func NewFitter(logger *internal.Logger) *Fitter {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &Fitter{logger: logger, maxBruteTerms: defaultMaxBruteTerms, workers: defaultWorkers()}
}

var _ ports.SurrogateModelFitter = (*Fitter)(nil)

// Fit selects model terms, fits the final model on all runs and, when the
// model's Q² reaches the limit, searches the design region for its optimum.
func (f *Fitter) Fit(ctx context.Context, req ports.FitRequest) (ports.FitResult, error) {
	if req.Design == nil {
		return ports.FitResult{}, fmt.Errorf("%w: no design sheet", core.ErrInsufficientData)
	}
	n := req.Design.Rows()
	if len(req.Response) != n {
		return ports.FitResult{}, fmt.Errorf("%w: %d responses for %d runs", core.ErrShapeMismatch, len(req.Response), n)
	}
	if n < 2 || len(req.Factors) == 0 {
		return ports.FitResult{}, fmt.Errorf("%w: %d runs, %d factors", core.ErrInsufficientData, n, len(req.Factors))
	}

	columns := make([][]float64, len(req.Factors))
	for i, name := range req.Factors {
		col, ok := req.Design.Numeric(name)
		if !ok {
			return ports.FitResult{}, fmt.Errorf("%w: design has no numeric column %q", core.ErrShapeMismatch, name)
		}
		columns[i] = col
	}
	cod := newCoding(columns)
	z := make([][]float64, n)
	for r := range z {
		raw := make([]float64, len(columns))
		for c := range columns {
			raw[c] = columns[c][r]
		}
		z[r] = cod.encode(raw)
	}

	folds := req.Folds
	if folds == 0 {
		folds = design.LeaveOneOut
	}
	k := folds.For(n)
	data := cvData{z: z, y: req.Response, folds: assignFolds(n, k, req.Rand), k: k}

	var (
		chosen candidate
		err    error
	)
	switch req.Selection {
	case design.SelectManual:
		terms, perr := parseFormula(req.Formula, req.Factors)
		if perr != nil {
			return ports.FitResult{}, perr
		}
		chosen = data.score(terms)
	case design.SelectGreedy:
		chosen = f.selectGreedy(data, len(req.Factors))
	case design.SelectBrute, "":
		chosen, err = f.selectBrute(ctx, data, len(req.Factors))
		if err != nil {
			return ports.FitResult{}, err
		}
	default:
		return ports.FitResult{}, fmt.Errorf("%w: %q", core.ErrUnknownModelSelector, req.Selection)
	}

	if !chosen.ok {
		f.logger.Info("no model could be fitted to %d runs", n)
		return ports.FitResult{}, nil
	}
	coef, err := fitOLS(z, req.Response, chosen.terms)
	if err != nil {
		f.logger.Info("final model fit failed: %v", err)
		return ports.FitResult{Q2: chosen.q2}, nil
	}
	model := &quadraticModel{names: append([]string(nil), req.Factors...), terms: chosen.terms, coef: coef, coding: cod}
	result := ports.FitResult{Model: model, Q2: chosen.q2}
	f.logger.Info("selected model %s with Q2 %.4f (%s, %s folds)", model.Formula(), chosen.q2, req.Selection, folds)

	if chosen.q2 < req.Q2Limit {
		f.logger.Info("Q2 %.4f below limit %.4f, no optimum predicted", chosen.q2, req.Q2Limit)
		return result, nil
	}
	if len(chosen.terms) == 0 {
		f.logger.Info("intercept-only model has no optimum")
		return result, nil
	}

	best := cod.decode(searchOptimum(objective(coef, chosen.terms, req.Criterion, req.Goal), len(req.Factors)))
	result.Optimum = make(map[string]float64, len(req.Factors))
	for i, name := range req.Factors {
		result.Optimum[name] = best[i]
	}
	return result, nil
}
