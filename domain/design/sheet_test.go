package design

import (
	"testing"

	"godoe/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSheet_Columns(t *testing.T) {
	s := NewSheet(3)
	require.NoError(t, s.SetNumeric("temp", []float64{20, 30, 40}))
	require.NoError(t, s.SetLabels("buffer", []string{"a", "b", "a"}))

	assert.Equal(t, []string{"temp", "buffer"}, s.Columns())
	assert.True(t, s.IsNumeric("temp"))
	assert.False(t, s.IsNumeric("buffer"))
	assert.ErrorIs(t, s.SetNumeric("short", []float64{1}), core.ErrShapeMismatch)

	v, ok := s.Value(1, "buffer")
	require.True(t, ok)
	assert.Equal(t, "b", v)

	row := s.Row(2)
	assert.Equal(t, 40.0, row.Numeric["temp"])
	assert.Equal(t, "a", row.Labels["buffer"])

	require.NoError(t, s.SetNumeric("buffer", []float64{1, 2, 3}))
	assert.Equal(t, []string{"temp", "buffer"}, s.Columns(), "replacing keeps position")
	assert.True(t, s.IsNumeric("buffer"))
}

func TestSheet_SelectAndRequire(t *testing.T) {
	s := NewSheet(2)
	require.NoError(t, s.SetNumeric("b", []float64{1, 2}))
	require.NoError(t, s.SetNumeric("a", []float64{3, 4}))

	sub, err := s.Select("a")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, sub.Columns())

	_, err = s.Select("missing")
	assert.ErrorIs(t, err, core.ErrShapeMismatch)

	assert.NoError(t, s.RequireColumns([]string{"a", "b"}))
	assert.ErrorIs(t, s.RequireColumns([]string{"a"}), core.ErrShapeMismatch)
	assert.ErrorIs(t, s.RequireColumns([]string{"a", "b", "c"}), core.ErrShapeMismatch)
}

func TestSheet_HashTracksContent(t *testing.T) {
	s := NewSheet(2)
	require.NoError(t, s.SetNumeric("x", []float64{1, 2}))
	c := s.Clone()
	assert.Equal(t, s.Hash(), c.Hash())

	require.NoError(t, c.SetNumeric("x", []float64{1, 3}))
	assert.NotEqual(t, s.Hash(), c.Hash())
}

func TestParseKindAndPhase(t *testing.T) {
	k, err := ParseKind("CCF")
	require.NoError(t, err)
	assert.Equal(t, CCF, k)

	_, err = ParseKind("latin-hypercube")
	assert.ErrorIs(t, err, core.ErrUnsupportedDesign)

	p, err := ParsePhase("Optimization")
	require.NoError(t, err)
	assert.Equal(t, PhaseOptimization, p)
	_, err = ParsePhase("finished")
	assert.ErrorIs(t, err, core.ErrUnknownPhase)
}

func TestParseFolds(t *testing.T) {
	f, err := ParseFolds("loo")
	require.NoError(t, err)
	assert.Equal(t, LeaveOneOut, f)
	assert.Equal(t, 9, f.For(9))

	f, err = ParseFolds("5")
	require.NoError(t, err)
	assert.Equal(t, 5, f.For(9))
	assert.Equal(t, 3, f.For(3))

	for _, bad := range []string{"0", "-2", "many", "3x"} {
		_, err := ParseFolds(bad)
		assert.ErrorIs(t, err, core.ErrInvalidKnob, bad)
	}
}

func TestSheet_DataRoundTrip(t *testing.T) {
	s := NewSheet(2)
	require.NoError(t, s.SetNumeric("x", []float64{1, 2}))
	require.NoError(t, s.SetLabels("c", []string{"p", "q"}))

	back, err := SheetFromData(s.Data())
	require.NoError(t, err)
	assert.Equal(t, s.Columns(), back.Columns())
	assert.Equal(t, s.Hash(), back.Hash())

	bad := s.Data()
	bad.Columns = append(bad.Columns, "ghost")
	_, err = SheetFromData(bad)
	assert.ErrorIs(t, err, core.ErrShapeMismatch)
}
