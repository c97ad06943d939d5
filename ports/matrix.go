package ports

import "godoe/domain/design"

// DesignMatrixProvider generates a coded design matrix for a classical design.
// Rows are runs, columns are factors; values are coded levels (typically -1, 0, +1,
// or ±alpha for axial points). Providers are pure: identical inputs give identical
// matrices.
type DesignMatrixProvider interface {
	Kind() design.Kind
	Generate(factorCount int) ([][]float64, error)
}

// ScreeningMatrixProvider generates a generalized subset design. levels holds the
// number of levels per factor; each cell of the result is a level index in
// [0, levels[col]).
type ScreeningMatrixProvider interface {
	Generate(levels []int, reduction int) ([][]int, error)
}
