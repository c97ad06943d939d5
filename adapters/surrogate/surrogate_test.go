package surrogate

import (
	"context"
	"math/rand"
	"testing"

	"godoe/domain/core"
	"godoe/domain/design"
	"godoe/domain/response"
	"godoe/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// grid3 is a 3x3 factorial over [-2, 2]^2.
func grid3(t *testing.T, f func(a, b float64) float64) (*design.Sheet, []float64) {
	t.Helper()
	var as, bs, ys []float64
	for _, b := range []float64{-2, 0, 2} {
		for _, a := range []float64{-2, 0, 2} {
			as, bs, ys = append(as, a), append(bs, b), append(ys, f(a, b))
		}
	}
	s := design.NewSheet(len(as))
	require.NoError(t, s.SetNumeric("a", as))
	require.NoError(t, s.SetNumeric("b", bs))
	return s, ys
}

func bowl(a, b float64) float64 {
	return 10 - (a-1)*(a-1) - (b+0.5)*(b+0.5)
}

func TestParseFormula(t *testing.T) {
	names := []string{"a", "b", "c"}
	tests := []struct {
		formula string
		want    []term
	}{
		{"y ~ a + b", []term{linear(0), linear(1)}},
		{"a + b:a + I(c**2)", []term{linear(0), interaction(0, 1), square(2)}},
		{"y ~ 1 + c^2 + a:a + a", []term{square(2), square(0), linear(0)}},
		{"y ~ a + a", []term{linear(0)}},
	}
	for _, tt := range tests {
		got, err := parseFormula(tt.formula, names)
		require.NoError(t, err, tt.formula)
		assert.Equal(t, tt.want, got, tt.formula)
	}

	for _, bad := range []string{"y ~ d", "y ~ a + ", "y ~ a:b:c"} {
		_, err := parseFormula(bad, names)
		assert.ErrorIs(t, err, core.ErrInvalidFormula, bad)
	}
}

func TestFormatFormula(t *testing.T) {
	got := formatFormula([]string{"a", "b"}, []term{linear(0), linear(1), interaction(0, 1), square(1)})
	assert.Equal(t, "y ~ 1 + a + b + a:b + I(b**2)", got)
}

func TestHierarchical(t *testing.T) {
	assert.True(t, hierarchical([]term{linear(0), square(0)}))
	assert.False(t, hierarchical([]term{square(0)}))
	assert.False(t, hierarchical([]term{linear(0), interaction(0, 1)}))
}

func TestFit_RecoversQuadraticOptimum(t *testing.T) {
	for _, sel := range []design.ModelSelection{design.SelectBrute, design.SelectGreedy} {
		t.Run(string(sel), func(t *testing.T) {
			sheet, y := grid3(t, bowl)
			res, err := NewFitter(nil).Fit(context.Background(), ports.FitRequest{
				Design: sheet, Response: y, Factors: []string{"a", "b"},
				Criterion: response.Maximize, Folds: design.LeaveOneOut, Selection: sel, Q2Limit: 0.5,
			})
			require.NoError(t, err)
			require.NotNil(t, res.Model)
			assert.InDelta(t, 1.0, res.Q2, 1e-6)
			require.NotNil(t, res.Optimum)
			assert.InDelta(t, 1.0, res.Optimum["a"], 1e-2)
			assert.InDelta(t, -0.5, res.Optimum["b"], 1e-2)
			assert.InDelta(t, 10.0, res.Model.Predict(res.Optimum), 1e-3)
		})
	}
}

func TestFit_MinimizeAndTarget(t *testing.T) {
	sheet, y := grid3(t, func(a, b float64) float64 { return -bowl(a, b) })
	res, err := NewFitter(nil).Fit(context.Background(), ports.FitRequest{
		Design: sheet, Response: y, Factors: []string{"a", "b"},
		Criterion: response.Minimize, Folds: design.LeaveOneOut, Selection: design.SelectBrute,
		Rand: rand.New(rand.NewSource(7)),
	})
	require.NoError(t, err)
	require.NotNil(t, res.Optimum)
	assert.InDelta(t, 1.0, res.Optimum["a"], 1e-2)

	sheet, y = grid3(t, func(a, b float64) float64 { return 2*a + 1 })
	res, err = NewFitter(nil).Fit(context.Background(), ports.FitRequest{
		Design: sheet, Response: y, Factors: []string{"a", "b"},
		Criterion: response.Target, Goal: 2, Selection: design.SelectManual, Formula: "y ~ a",
	})
	require.NoError(t, err)
	require.NotNil(t, res.Optimum)
	assert.InDelta(t, 0.5, res.Optimum["a"], 1e-3)
	assert.Equal(t, "y ~ 1 + a", res.Model.Formula())
}

func TestFit_Q2GateReturnsNoOptimum(t *testing.T) {
	noise := []float64{3, -1, 4, 1, -5, 9, 2, -6, 5}
	sheet, _ := grid3(t, bowl)
	res, err := NewFitter(nil).Fit(context.Background(), ports.FitRequest{
		Design: sheet, Response: noise, Factors: []string{"a", "b"},
		Criterion: response.Maximize, Selection: design.SelectGreedy, Q2Limit: 0.9,
	})
	require.NoError(t, err)
	assert.Nil(t, res.Optimum)
	assert.Less(t, res.Q2, 0.9)
}

func TestFit_Errors(t *testing.T) {
	sheet, y := grid3(t, bowl)
	fitter := NewFitter(nil)
	ctx := context.Background()

	_, err := fitter.Fit(ctx, ports.FitRequest{Design: sheet, Response: y[:3], Factors: []string{"a"}})
	assert.ErrorIs(t, err, core.ErrShapeMismatch)

	_, err = fitter.Fit(ctx, ports.FitRequest{Design: sheet, Response: y, Factors: []string{"zz"}})
	assert.ErrorIs(t, err, core.ErrShapeMismatch)

	_, err = fitter.Fit(ctx, ports.FitRequest{Design: sheet, Response: y, Factors: []string{"a"}, Selection: design.SelectManual, Formula: "y ~ q"})
	assert.ErrorIs(t, err, core.ErrInvalidFormula)

	_, err = fitter.Fit(ctx, ports.FitRequest{Design: sheet, Response: y, Factors: []string{"a"}, Selection: "lasso"})
	assert.ErrorIs(t, err, core.ErrUnknownModelSelector)

	_, err = fitter.Fit(ctx, ports.FitRequest{Response: y})
	assert.ErrorIs(t, err, core.ErrInsufficientData)
}

func TestAssignFolds(t *testing.T) {
	folds := assignFolds(7, 3, nil)
	assert.Equal(t, []int{0, 1, 2, 0, 1, 2, 0}, folds)

	shuffled := assignFolds(7, 3, rand.New(rand.NewSource(1)))
	counts := map[int]int{}
	for _, f := range shuffled {
		counts[f]++
	}
	assert.Equal(t, map[int]int{0: 3, 1: 2, 2: 2}, counts)
}
