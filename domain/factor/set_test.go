package factor

import (
	"testing"

	"godoe/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSet(t *testing.T) *Set {
	t.Helper()
	s, err := NewSetFromSpecs(map[string]Spec{
		"temp":    {Type: KindQuantitative, Min: ptr(20), Max: ptr(90), LowInit: 30, HighInit: 50},
		"cycles":  {Type: KindOrdinal, Min: ptr(1), Max: ptr(40), LowInit: 10, HighInit: 20},
		"buffer":  {Type: KindCategorical, Values: []string{"tris", "hepes", "pbs"}},
		"agitate": {Type: KindQuantitative, LowInit: 100, HighInit: 300},
	})
	require.NoError(t, err)
	return s
}

func TestSet_CanonicalOrder(t *testing.T) {
	s := NewSet()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		q, err := NewQuantitative(name, 0, 1, 0, 1)
		require.NoError(t, err)
		require.NoError(t, s.Add(q))
	}

	assert.Equal(t, []string{"alpha", "mid", "zeta"}, s.Names())
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, s.DefinitionOrder())

	dup, _ := NewQuantitative("mid", 0, 1, 0, 1)
	assert.ErrorIs(t, s.Add(dup), core.ErrInvalidFactorSpec)
}

func TestSet_Partitions(t *testing.T) {
	s := testSet(t)

	var numeric []string
	for _, n := range s.Numeric() {
		numeric = append(numeric, n.Name())
	}
	assert.Equal(t, []string{"agitate", "cycles", "temp"}, numeric)
	require.Len(t, s.Categorical(), 1)
	assert.True(t, s.HasCategorical())
	assert.NoError(t, s.CheckInvariants())
}

func TestSet_CloneIsIndependent(t *testing.T) {
	s := testSet(t)
	c := s.Clone()

	f, _ := c.Get("temp")
	require.NoError(t, f.(Numeric).SetRange(60, 80))

	orig, _ := s.Get("temp")
	assert.Equal(t, 30.0, orig.(Numeric).Low())
}

func TestSet_StateTableRoundTrip(t *testing.T) {
	s := testSet(t)
	temp, _ := s.Get("temp")
	require.NoError(t, temp.(Numeric).SetRange(42.5, 61))
	buffer, _ := s.Get("buffer")
	require.NoError(t, buffer.(*Categorical).SetFixedValue("pbs"))

	table := s.StateTable()
	assert.Equal(t, "42.5", table.Cell(RowCurrentLow, "temp"))
	assert.Equal(t, "pbs", table.Cell(RowFixedValue, "buffer"))
	assert.Equal(t, "", table.Cell(RowFixedValue, "temp"))

	fresh := testSet(t)
	require.NoError(t, fresh.ApplyStateTable(table))
	assert.Equal(t, table, fresh.StateTable())

	table.Factors = append(table.Factors, "ghost")
	assert.ErrorIs(t, fresh.ApplyStateTable(table), core.ErrShapeMismatch)
}
