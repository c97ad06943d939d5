package designer

import (
	"math"
	"slices"
	"testing"

	"godoe/adapters/matrix"
	"godoe/domain/core"
	"godoe/domain/design"
	"godoe/domain/factor"
	"godoe/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDesign_ScreeningUsesGSDRows(t *testing.T) {
	d := newDesigner(t, factorSet(t,
		quantitative(t, "b", 0, 10, 4, 6),
		quantitative(t, "a", 0, 10, 4, 6),
	), maximize("y"))

	sheet, err := d.NewDesign()
	require.NoError(t, err)

	want, err := matrix.GSD{}.Generate([]int{5, 5}, 2)
	require.NoError(t, err)
	assert.Equal(t, len(want), sheet.Rows())
	assert.Equal(t, []string{"a", "b"}, sheet.Columns())

	levels := []float64{0, 2.5, 5, 7.5, 10}
	for _, name := range []string{"a", "b"} {
		col, ok := sheet.Numeric(name)
		require.True(t, ok)
		for _, v := range col {
			assert.Contains(t, levels, v, name)
		}
	}
	assert.Equal(t, design.PhaseScreening, d.Phase())
}

func TestNewDesign_ScreeningCategorical(t *testing.T) {
	d := newDesigner(t, factorSet(t,
		quantitative(t, "temp", 20, 60, 30, 40),
		categorical(t, "buffer", "phosphate", "tris", "hepes"),
	), maximize("y"))

	sheet, err := d.NewDesign()
	require.NoError(t, err)
	labels, ok := sheet.Labels("buffer")
	require.True(t, ok)
	for _, l := range labels {
		assert.Contains(t, []string{"phosphate", "tris", "hepes"}, l)
	}
	assert.False(t, sheet.IsNumeric("buffer"))
	assert.True(t, sheet.IsNumeric("temp"))
}

func TestNewDesign_UnboundedFactorFailsAtDesignTime(t *testing.T) {
	d := newDesigner(t, factorSet(t, quantitative(t, "x", 0, math.Inf(1), 4, 6)), maximize("y"))

	_, err := d.NewDesign()
	assert.ErrorIs(t, err, core.ErrUnboundedFactor)
	assert.Equal(t, errors.CodeDesignError, errors.GetCode(err))
}

func TestScreeningLevels(t *testing.T) {
	n := ordinal(t, "n", 0, 3, 1, 2)
	levels, err := screeningLevels(n)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 2, 3}, levels)

	f, err := factor.FromSpec("conc", factor.Spec{
		Type: factor.KindQuantitative, Min: ptr(1), Max: ptr(100),
		LowInit: 1, HighInit: 10, ScreeningLevels: 3, LogScale: true,
	})
	require.NoError(t, err)
	levels, err = screeningLevels(f.(factor.Numeric))
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1, 10, 100}, levels, 1e-9)
}

func TestNewDesign_Optimization(t *testing.T) {
	d := newDesigner(t, factorSet(t,
		quantitative(t, "x", 0, 10, 4, 6),
		ordinal(t, "n", 0, 10, 2, 5),
	), maximize("y"), WithSkipScreening(true))

	sheet, err := d.NewDesign()
	require.NoError(t, err)
	assert.Equal(t, 4, sheet.Rows())
	assert.Equal(t, []string{"n", "x"}, sheet.Columns())

	x, _ := sheet.Numeric("x")
	n, _ := sheet.Numeric("n")
	for r := range x {
		assert.Contains(t, []float64{4, 6}, x[r])
		assert.Contains(t, []float64{2, 5}, n[r])
	}
	assert.Equal(t, sheet.Hash(), d.CurrentDesign().Hash())
}

func TestNewDesign_OptimizationKeepsCategoricalFixed(t *testing.T) {
	d := newDesigner(t, factorSet(t,
		quantitative(t, "x", 0, 10, 4, 6),
		categorical(t, "buffer", "tris", "hepes"),
	), maximize("y"))
	buffer, _ := d.Factors().Get("buffer")
	require.NoError(t, buffer.(*factor.Categorical).SetFixedValue("hepes"))
	require.NoError(t, d.SetPhase(design.PhaseOptimization))

	sheet, err := d.NewDesign()
	require.NoError(t, err)
	assert.Equal(t, []string{"buffer", "x"}, sheet.Columns())
	labels, _ := sheet.Labels("buffer")
	assert.Equal(t, []string{"hepes", "hepes"}, labels)
}

func TestNewDesign_EdgeActions(t *testing.T) {
	set := func() *factor.Set {
		return factorSet(t, quantitative(t, "x", 0, 10, 0, 10), quantitative(t, "y", 0, 10, 0, 10))
	}

	d := newDesignerKind(t, design.CCC, set(), maximize("r"), WithSkipScreening(true))
	sheet, err := d.NewDesign()
	require.NoError(t, err)
	for _, name := range []string{"x", "y"} {
		col, _ := sheet.Numeric(name)
		assert.Equal(t, 0.0, slices.Min(col), name)
		assert.Equal(t, 10.0, slices.Max(col), name)
	}

	d = newDesignerKind(t, design.CCC, set(), maximize("r"),
		WithSkipScreening(true), WithEdgeAction(design.EdgeShrink))
	_, err = d.NewDesign()
	assert.ErrorIs(t, err, core.ErrEdgeActionNotImplemented)
	assert.Equal(t, errors.CodeNotImplemented, errors.GetCode(err))
	assert.Nil(t, d.CurrentDesign())
}
