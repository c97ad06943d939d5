package designer

import (
	"context"
	"testing"

	"godoe/domain/core"
	"godoe/domain/design"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestSnapshotRestore_ResumesScreening(t *testing.T) {
	d, _, resp := screenedDesigner(t)
	_, err := d.GetOptimalSettings(context.Background(), resp)
	require.NoError(t, err)

	raw, err := yaml.Marshal(d.Snapshot())
	require.NoError(t, err)
	var state State
	require.NoError(t, yaml.Unmarshal(raw, &state))

	resumed := newDesigner(t, factorSet(t,
		quantitative(t, "a", 0, 10, 4, 6),
		quantitative(t, "b", 0, 10, 4, 6),
	), maximize("y"))
	require.NoError(t, resumed.Restore(state))

	assert.Equal(t, design.PhaseOptimization, resumed.Phase())
	require.NotNil(t, resumed.BestExperiment())
	assert.Equal(t, d.BestExperiment().WeightedResponse, resumed.BestExperiment().WeightedResponse)
	assert.Equal(t, d.BestExperiment().OptimalSettings.Numeric, resumed.BestExperiment().OptimalSettings.Numeric)
	assert.Equal(t, d.Factors().StateTable(), resumed.Factors().StateTable())
	assert.Equal(t, d.CurrentDesign().Hash(), resumed.CurrentDesign().Hash())

	want, err := d.ReevaluateScreening()
	require.NoError(t, err)
	got, err := resumed.ReevaluateScreening()
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, d.Factors().StateTable(), resumed.Factors().StateTable())
}

func TestRestore_InvalidStateLeavesDesignerUntouched(t *testing.T) {
	d := newDesigner(t, factorSet(t, quantitative(t, "x", 0, 10, 4, 6)), maximize("y"))
	before := d.Snapshot()

	bad := d.Snapshot()
	bad.Phase = design.PhaseOptimization
	bad.Factors.Cells["current_low"]["x"] = "-3"
	err := d.Restore(bad)
	assert.ErrorIs(t, err, core.ErrInvalidRange)
	assert.Equal(t, before, d.Snapshot())

	bad = d.Snapshot()
	bad.Phase = "done"
	assert.ErrorIs(t, d.Restore(bad), core.ErrUnknownPhase)
	assert.Equal(t, design.PhaseScreening, d.Phase())
}

func TestRestore_RejectsInconsistentScreeningIndex(t *testing.T) {
	d := newDesigner(t, factorSet(t,
		quantitative(t, "a", 0, 10, 4, 6),
		categorical(t, "buffer", "tris", "hepes", "mops"),
	), maximize("y"))
	sheet, err := d.NewDesign()
	require.NoError(t, err)
	_, err = d.GetOptimalSettings(context.Background(), respond(t, sheet, "y", func(s design.Settings) float64 {
		return -(s.Numeric["a"] - 5) * (s.Numeric["a"] - 5)
	}))
	require.NoError(t, err)
	before := d.Snapshot()

	cases := map[string]func(st *State){
		"truncated rows": func(st *State) { st.Screening.Index = st.Screening.Index[:1] },
		"short row":      func(st *State) { st.Screening.Index[0] = st.Screening.Index[0][:1] },
		"level too high": func(st *State) { st.Screening.Index[0][1] = 3 },
		"negative level": func(st *State) { st.Screening.Index[0][0] = -1 },
		"unknown factor": func(st *State) { st.Screening.Factors[0] = "temperature" },
		"use index past runs": func(st *State) {
			st.Screening.UseIndex = st.Screening.Design.Rows + 1
		},
	}
	for name, corrupt := range cases {
		t.Run(name, func(t *testing.T) {
			bad := d.Snapshot()
			corrupt(&bad)
			assert.ErrorIs(t, d.Restore(bad), core.ErrShapeMismatch)
			assert.Equal(t, before, d.Snapshot())
		})
	}

	_, err = d.ReevaluateScreening()
	require.NoError(t, err)
}
