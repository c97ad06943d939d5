package designer

import (
	"math"
	"testing"

	"godoe/domain/core"
	"godoe/domain/design"
	"godoe/domain/response"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoResponses() response.Specs {
	return response.Specs{
		"yield":    {Criterion: response.Maximize, LowLimit: ptr(0), HighLimit: ptr(10)},
		"impurity": {Criterion: response.Minimize, LowLimit: ptr(0), HighLimit: ptr(10)},
	}
}

func TestTreatResponse_CombinesDesirabilities(t *testing.T) {
	d := newDesigner(t, factorSet(t, quantitative(t, "x", 0, 10, 4, 6)), twoResponses())
	table := design.NewSheet(3)
	require.NoError(t, table.SetNumeric("yield", []float64{5, 10, 8}))
	require.NoError(t, table.SetNumeric("impurity", []float64{2, 5, 0}))

	out, criterion, err := d.TreatResponse(table, true)
	require.NoError(t, err)
	assert.Equal(t, response.Maximize, criterion)
	assert.Equal(t, []string{response.CombinedName}, out.Columns())

	got, _ := out.Numeric(response.CombinedName)
	want := []float64{math.Sqrt(0.5 * 0.8), math.Sqrt(1 * 0.5), math.Sqrt(0.8 * 1)}
	assert.InDeltaSlice(t, want, got, 1e-12)
}

func TestTreatResponse_ZeroDesirabilityDominates(t *testing.T) {
	d := newDesigner(t, factorSet(t, quantitative(t, "x", 0, 10, 4, 6)), twoResponses())
	table := design.NewSheet(2)
	require.NoError(t, table.SetNumeric("yield", []float64{-1, 5}))
	require.NoError(t, table.SetNumeric("impurity", []float64{5, 12}))

	out, _, err := d.TreatResponse(table, false)
	require.NoError(t, err)
	got, _ := out.Numeric(response.CombinedName)
	assert.Equal(t, []float64{0, 0}, got)
}

func TestTreatResponse_WithoutTransformIsIdempotent(t *testing.T) {
	d := newDesigner(t, factorSet(t, quantitative(t, "x", 0, 10, 4, 6)), twoResponses())
	table := design.NewSheet(2)
	require.NoError(t, table.SetNumeric("yield", []float64{3, 7}))
	require.NoError(t, table.SetNumeric("impurity", []float64{4, 1}))

	first, c1, err := d.TreatResponse(table, false)
	require.NoError(t, err)
	second, c2, err := d.TreatResponse(table, false)
	require.NoError(t, err)
	assert.Equal(t, c1, c2)
	assert.Equal(t, first.Hash(), second.Hash())
}

func TestTreatResponse_SingleKeepsCriterion(t *testing.T) {
	specs := response.Specs{"y": {Criterion: response.Minimize, Transform: response.TransformLog}}
	d := newDesigner(t, factorSet(t, quantitative(t, "x", 0, 10, 4, 6)), specs)

	out, criterion, err := d.TreatResponse(column(t, "y", 1, math.E, 10), true)
	require.NoError(t, err)
	assert.Equal(t, response.Minimize, criterion)
	got, _ := out.Numeric("y")
	assert.InDeltaSlice(t, []float64{0, 1, math.Log(10)}, got, 1e-12)
	assert.Equal(t, response.TransformLog, d.Transform("y").Kind)

	// raw values pass through when the transform is not re-applied
	out, _, err = d.TreatResponse(column(t, "y", 1, 2), false)
	require.NoError(t, err)
	got, _ = out.Numeric("y")
	assert.Equal(t, []float64{1, 2}, got)
}

func TestTreatResponse_Errors(t *testing.T) {
	specs := response.Specs{"y": {Criterion: response.Maximize, Transform: response.TransformBoxCox}}
	d := newDesigner(t, factorSet(t, quantitative(t, "x", 0, 10, 4, 6)), specs)

	_, _, err := d.TreatResponse(column(t, "y", 1, -2), true)
	assert.ErrorIs(t, err, core.ErrNonPositiveResponse)

	_, _, err = d.TreatResponse(column(t, "z", 1, 2), true)
	assert.ErrorIs(t, err, core.ErrShapeMismatch)
}

func TestTreated_Rank(t *testing.T) {
	nan := math.NaN()
	tests := []struct {
		name string
		t    treated
		want []int
	}{
		{"maximize", treated{values: []float64{1, 3, nan, 3, 2}, criterion: response.Maximize}, []int{1, 3, 4, 0, 2}},
		{"minimize", treated{values: []float64{nan, 3, 1, 2}, criterion: response.Minimize}, []int{2, 3, 1, 0}},
		{"target", treated{values: []float64{9, 4, 6.5, 1}, criterion: response.Target, goal: 5}, []int{1, 2, 0, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.t.rank())
		})
	}
}

func TestTreated_Pick(t *testing.T) {
	tr := treated{values: []float64{1, 3, 2}, criterion: response.Maximize}
	row, err := tr.pick(2)
	require.NoError(t, err)
	assert.Equal(t, 2, row)

	_, err = tr.pick(4)
	assert.ErrorIs(t, err, core.ErrNoScreeningAlternatives)
	_, err = tr.pick(0)
	assert.ErrorIs(t, err, core.ErrNoScreeningAlternatives)
}
