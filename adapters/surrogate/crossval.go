package surrogate

import (
	"math/rand"

	"gonum.org/v1/gonum/stat"
)

// assignFolds spreads n observations over k folds, shuffled when rng is set.
func assignFolds(n, k int, rng *rand.Rand) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	if rng != nil {
		rng.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })
	}
	folds := make([]int, n)
	for pos, idx := range order {
		folds[idx] = pos % k
	}
	return folds
}

// q2 is the cross-validated coefficient of determination, 1 - PRESS/SS.
// A model that cannot be fitted on some training split yields an error.
func q2(z [][]float64, y []float64, terms []term, folds []int, k int) (float64, error) {
	mean := stat.Mean(y, nil)
	var ssTot float64
	for _, v := range y {
		ssTot += (v - mean) * (v - mean)
	}

	var press float64
	for f := 0; f < k; f++ {
		var trainZ, testZ [][]float64
		var trainY, testY []float64
		for i := range z {
			if folds[i] == f {
				testZ, testY = append(testZ, z[i]), append(testY, y[i])
			} else {
				trainZ, trainY = append(trainZ, z[i]), append(trainY, y[i])
			}
		}
		if len(testZ) == 0 {
			continue
		}
		coef, err := fitOLS(trainZ, trainY, terms)
		if err != nil {
			return 0, err
		}
		for i, row := range testZ {
			d := testY[i] - predictCoded(coef, terms, row)
			press += d * d
		}
	}

	if ssTot == 0 {
		return 0, nil
	}
	return 1 - press/ssTot, nil
}
