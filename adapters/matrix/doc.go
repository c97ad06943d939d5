// Package matrix provides the default design-matrix generators: two- and
// three-level full factorials, Plackett-Burman, Box-Behnken, central composite
// (circumscribed, faced, inscribed) and generalized subset designs.
//
// All generators are deterministic. Full factorial rows enumerate levels with
// the first column varying fastest.
package matrix
