package matrix_test

import (
	"fmt"

	"godoe/adapters/matrix"
)

func ExampleGSD_Generate() {
	m, _ := matrix.GSD{}.Generate([]int{3, 3}, 3)
	for _, row := range m {
		fmt.Println(row)
	}
	// Output:
	// [0 0]
	// [2 1]
	// [1 2]
}
