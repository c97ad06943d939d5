package ports

import (
	"context"
	"math/rand"

	"godoe/domain/design"
	"godoe/domain/response"
)

// FitRequest carries everything a surrogate fitter needs for one iteration.
type FitRequest struct {
	// Design holds only numeric factor columns.
	Design    *design.Sheet
	Response  []float64
	Factors   []string
	Criterion response.Criterion
	// Goal is the desired value when Criterion is target.
	Goal      float64
	Folds     design.Folds
	Selection design.ModelSelection
	Formula   string
	Q2Limit   float64
	// Rand drives fold assignment; nil means deterministic contiguous folds.
	Rand *rand.Rand
}

// Model is a fitted response surface.
type Model interface {
	Formula() string
	Predict(x map[string]float64) float64
}

// FitResult is the fitter's outcome. Optimum is nil when no usable model or
// optimum was found; that is a normal outcome, not an error.
type FitResult struct {
	Optimum map[string]float64
	Model   Model
	Q2      float64
}

// SurrogateModelFitter fits a model over a design and predicts its optimum.
type SurrogateModelFitter interface {
	Fit(ctx context.Context, req FitRequest) (FitResult, error)
}
