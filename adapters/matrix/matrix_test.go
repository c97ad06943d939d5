package matrix

import (
	"math"
	"testing"

	"godoe/domain/core"
	"godoe/domain/design"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func columnDot(m [][]float64, a, b int) float64 {
	var s float64
	for _, row := range m {
		s += row[a] * row[b]
	}
	return s
}

func TestFullFactorial2(t *testing.T) {
	m, err := FullFactorial2{}.Generate(3)
	require.NoError(t, err)
	require.Len(t, m, 8)
	assert.Equal(t, []float64{-1, -1, -1}, m[0])
	assert.Equal(t, []float64{1, -1, -1}, m[1], "first column varies fastest")
	assert.Equal(t, []float64{1, 1, 1}, m[7])

	_, err = FullFactorial2{}.Generate(0)
	assert.ErrorIs(t, err, core.ErrTooFewFactors)
}

func TestFullFactorial3(t *testing.T) {
	m, err := FullFactorial3{}.Generate(2)
	require.NoError(t, err)
	require.Len(t, m, 9)
	assert.Equal(t, []float64{-1, -1}, m[0])
	assert.Equal(t, []float64{0, -1}, m[1])
	assert.Equal(t, []float64{1, 1}, m[8])
}

func TestPlackettBurman_Orthogonal(t *testing.T) {
	tests := []struct {
		factors int
		runs    int
	}{
		{1, 4}, {3, 4}, {4, 8}, {7, 8}, {9, 12}, {11, 12}, {16, 20}, {19, 20}, {20, 24},
	}
	for _, tt := range tests {
		m, err := PlackettBurman{}.Generate(tt.factors)
		require.NoError(t, err, "factors=%d", tt.factors)
		require.Len(t, m, tt.runs, "factors=%d", tt.factors)
		for i := 0; i < tt.factors; i++ {
			require.Len(t, m[0], tt.factors)
			var sum float64
			for _, row := range m {
				sum += row[i]
				assert.Contains(t, []float64{-1, 1}, row[i])
			}
			assert.Zero(t, sum, "column %d balanced (factors=%d)", i, tt.factors)
			for j := i + 1; j < tt.factors; j++ {
				assert.Zero(t, columnDot(m, i, j), "columns %d,%d orthogonal (factors=%d)", i, j, tt.factors)
			}
		}
	}
}

func TestPlackettBurman_UnsupportedSize(t *testing.T) {
	_, err := PlackettBurman{}.Generate(25)
	assert.ErrorIs(t, err, core.ErrUnsupportedDesign)
}

func TestBoxBehnken(t *testing.T) {
	m, err := BoxBehnken{Center: 1}.Generate(3)
	require.NoError(t, err)
	require.Len(t, m, 13)
	assert.Equal(t, []float64{-1, -1, 0}, m[0])
	assert.Equal(t, []float64{0, 0, 0}, m[12])
	for _, row := range m {
		zeros := 0
		for _, v := range row {
			if v == 0 {
				zeros++
			}
		}
		assert.GreaterOrEqual(t, zeros, 1)
	}

	_, err = BoxBehnken{}.Generate(2)
	assert.ErrorIs(t, err, core.ErrTooFewFactors)
}

func TestCentralComposite(t *testing.T) {
	alpha := math.Sqrt(2 * (1 + 3.0/4))

	ccc, err := CentralComposite{Face: design.CCC, AxialCenter: 3}.Generate(2)
	require.NoError(t, err)
	require.Len(t, ccc, 4+4+3)
	assert.InDelta(t, -alpha, ccc[4][0], 1e-12)
	assert.Equal(t, []float64{0, 0}, ccc[10])

	ccf, err := CentralComposite{Face: design.CCF, AxialCenter: 3}.Generate(2)
	require.NoError(t, err)
	assert.Equal(t, -1.0, ccf[4][0])

	cci, err := CentralComposite{Face: design.CCI, AxialCenter: 3}.Generate(2)
	require.NoError(t, err)
	assert.InDelta(t, -1.0, cci[4][0], 1e-12)
	assert.InDelta(t, -1/alpha, cci[0][0], 1e-12)

	_, err = CentralComposite{Face: design.BoxBehnken}.Generate(2)
	assert.ErrorIs(t, err, core.ErrUnsupportedDesign)
}

func TestGSD(t *testing.T) {
	m, err := GSD{}.Generate([]int{5, 5}, 2)
	require.NoError(t, err)
	assert.Len(t, m, 13)

	seen := map[[2]int]bool{}
	for _, row := range m {
		key := [2]int{row[0], row[1]}
		assert.False(t, seen[key], "duplicate run %v", row)
		seen[key] = true
		assert.Equal(t, row[0]%2, row[1]%2, "partitions paired by the orthogonal array")
	}

	full, err := GSD{}.Generate([]int{3, 2, 2}, 1)
	require.NoError(t, err)
	assert.Len(t, full, 12)

	mixed, err := GSD{}.Generate([]int{4, 3, 6}, 3)
	require.NoError(t, err)
	for _, row := range mixed {
		assert.Less(t, row[0], 4)
		assert.Less(t, row[1], 3)
		assert.Less(t, row[2], 6)
	}

	_, err = GSD{}.Generate([]int{2, 5}, 3)
	assert.ErrorIs(t, err, core.ErrReductionTooLarge)
	_, err = GSD{}.Generate(nil, 1)
	assert.ErrorIs(t, err, core.ErrTooFewFactors)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	for _, kind := range design.Kinds {
		p, err := r.Provider(kind)
		require.NoError(t, err, kind)
		assert.Equal(t, kind, p.Kind())
	}
	_, err := r.Provider("taguchi")
	assert.ErrorIs(t, err, core.ErrUnsupportedDesign)
}
