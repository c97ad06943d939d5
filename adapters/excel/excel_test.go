package excel

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"godoe/domain/core"
	"godoe/domain/design"
	"godoe/domain/factor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runSheet(t *testing.T) *design.Sheet {
	t.Helper()
	s := design.NewSheet(3)
	require.NoError(t, s.SetNumeric("temperature", []float64{30, 40.25, 50}))
	require.NoError(t, s.SetLabels("buffer", []string{"tris", "hepes", "tris"}))
	return s
}

func TestSheetRoundTrip(t *testing.T) {
	for _, ext := range []string{".xlsx", ".csv"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "runs"+ext)
			require.NoError(t, NewDataWriter(path, nil).WriteSheet(runSheet(t), "yield"))

			got, err := NewDataReader(path, nil).ReadSheet()
			require.NoError(t, err)
			assert.Equal(t, []string{"temperature", "buffer", "yield"}, got.Columns())

			temps, ok := got.Numeric("temperature")
			require.True(t, ok)
			assert.Equal(t, []float64{30, 40.25, 50}, temps)
			labels, _ := got.Labels("buffer")
			assert.Equal(t, []string{"tris", "hepes", "tris"}, labels)

			yield, ok := got.Numeric("yield")
			require.True(t, ok)
			for _, v := range yield {
				assert.True(t, math.IsNaN(v))
			}
		})
	}
}

func TestReadSheet_FilledResponses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filled.csv")
	content := "cycles,buffer,yield\n2,1,0.5\n4,2,\n\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	sheet, err := NewDataReader(path, nil).ReadSheet("buffer")
	require.NoError(t, err)
	assert.Equal(t, 2, sheet.Rows())
	assert.False(t, sheet.IsNumeric("buffer"))

	designPart, responsePart, err := Split(sheet, []string{"buffer", "cycles"}, []string{"yield"})
	require.NoError(t, err)
	assert.Equal(t, []string{"buffer", "cycles"}, designPart.Columns())
	yield, _ := responsePart.Numeric("yield")
	assert.Equal(t, 0.5, yield[0])
	assert.True(t, math.IsNaN(yield[1]))

	_, _, err = Split(sheet, []string{"buffer", "cycles"}, []string{"impurity"})
	assert.ErrorIs(t, err, core.ErrShapeMismatch)
}

func TestToSheet_Rejects(t *testing.T) {
	_, err := ToSheet(&RawTable{Headers: []string{"a", "a"}, Rows: [][]string{{"1", "2"}}})
	assert.ErrorIs(t, err, core.ErrShapeMismatch)

	_, err = ToSheet(&RawTable{Headers: []string{"a", ""}, Rows: [][]string{{"1", "2"}}})
	assert.ErrorIs(t, err, core.ErrShapeMismatch)
}

func TestReadTable_MissingFile(t *testing.T) {
	_, err := NewDataReader(filepath.Join(t.TempDir(), "nope.xlsx"), nil).ReadTable()
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestStateTableRoundTrip(t *testing.T) {
	set := factor.NewSet()
	q, err := factor.NewQuantitative("temperature", 20, 80, 30.5, 50)
	require.NoError(t, err)
	c, err := factor.NewCategorical("buffer", []string{"tris", "hepes"})
	require.NoError(t, err)
	require.NoError(t, set.Add(q))
	require.NoError(t, set.Add(c))
	require.NoError(t, c.SetFixedValue("hepes"))

	for _, ext := range []string{".xlsx", ".csv"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "factors"+ext)
			require.NoError(t, NewDataWriter(path, nil).WriteStateTable(set.StateTable()))

			table, err := NewDataReader(path, nil).ReadStateTable()
			require.NoError(t, err)
			assert.Equal(t, set.StateTable(), table)

			restored := set.Clone()
			require.NoError(t, restored.ApplyStateTable(table))
			assert.Equal(t, set.StateTable(), restored.StateTable())
		})
	}
}
