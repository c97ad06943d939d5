package matrix

import (
	"fmt"

	"godoe/domain/core"
)

// GSD builds generalized subset designs. Each factor's levels are split into
// reduction partitions (level l goes to partition l mod reduction); a cyclic
// orthogonal array over partition indices then picks which partition
// combinations are crossed in full. The result has roughly
// prod(levels)/reduction runs and reduction 1 gives the full factorial.
type GSD struct{}

func (GSD) Generate(levels []int, reduction int) ([][]int, error) {
	if len(levels) == 0 {
		return nil, fmt.Errorf("%w: generalized subset design needs factors", core.ErrTooFewFactors)
	}
	if reduction < 1 {
		return nil, fmt.Errorf("%w: reduction must be >= 1, got %d", core.ErrInvalidKnob, reduction)
	}
	for i, l := range levels {
		if l < 1 {
			return nil, fmt.Errorf("%w: factor %d has %d levels", core.ErrInvalidKnob, i, l)
		}
		if l < reduction {
			return nil, fmt.Errorf("%w: %d levels, reduction %d", core.ErrReductionTooLarge, l, reduction)
		}
	}

	partitions := make([][][]int, len(levels))
	for f, l := range levels {
		partitions[f] = make([][]int, reduction)
		for lvl := 0; lvl < l; lvl++ {
			p := lvl % reduction
			partitions[f][p] = append(partitions[f][p], lvl)
		}
	}

	var out [][]int
	for _, oaRow := range cyclicOrthogonalArray(len(levels), reduction) {
		sizes := make([]int, len(levels))
		for f, p := range oaRow {
			sizes[f] = len(partitions[f][p])
		}
		for _, idx := range fullFactorial(sizes) {
			row := make([]int, len(levels))
			for f, i := range idx {
				row[f] = partitions[f][oaRow[f]][i]
			}
			out = append(out, row)
		}
	}
	return out, nil
}

// cyclicOrthogonalArray returns every k-tuple over [0, m) whose sum is 0 mod m.
// The first column is determined by the others, which enumerate a full factorial.
func cyclicOrthogonalArray(k, m int) [][]int {
	if k == 1 {
		return [][]int{{0}}
	}
	var out [][]int
	for _, rest := range fullFactorial(repeatInt(m, k-1)) {
		sum := 0
		for _, v := range rest {
			sum += v
		}
		row := append([]int{(m - sum%m) % m}, rest...)
		out = append(out, row)
	}
	return out
}
