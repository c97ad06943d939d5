package matrix

import "godoe/domain/design"

// BoxBehnken places every pair of factors on a 2x2 factorial with all other
// factors at their center, followed by Center center points.
type BoxBehnken struct {
	Center int
}

func (BoxBehnken) Kind() design.Kind { return design.BoxBehnken }

func (b BoxBehnken) Generate(k int) ([][]float64, error) {
	if err := requireFactors(b.Kind(), k, 3); err != nil {
		return nil, err
	}
	pair := ff2n(2)
	var out [][]float64
	for i := 0; i < k-1; i++ {
		for j := i + 1; j < k; j++ {
			for _, p := range pair {
				row := make([]float64, k)
				row[i], row[j] = p[0], p[1]
				out = append(out, row)
			}
		}
	}
	for c := 0; c < b.Center; c++ {
		out = append(out, make([]float64, k))
	}
	return out, nil
}
