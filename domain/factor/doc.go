// Package factor models the independent variables of an experiment campaign.
//
// Three variants exist. Quantitative factors are continuous, Ordinal factors are
// numeric but restricted to integers, and Categorical factors take one label out
// of a fixed list. Numeric factors carry hard bounds (Min, Max) and a working
// range (Low, High) that the designer narrows every iteration; the invariant
// Min <= Low <= High <= Max holds between any two calls.
//
// A Set keeps factors by name. Every component that must line factor columns up
// with design-matrix columns iterates a Set in name-sorted order.
package factor
