// Package surrogate fits quadratic response-surface models to a design and
// predicts where the fitted surface is optimal.
//
// Models are ordinary least squares over an intercept plus any subset of
// linear, two-factor interaction and pure quadratic terms, fitted in coded units
// (each factor centered on the design midpoint and scaled by its half range).
// Term subsets are chosen by cross-validated Q² using one of three strategies:
// brute (every hierarchical subset), greedy (backward elimination) or manual
// (a formula such as "y ~ a + b + a:b + I(a**2)").
package surrogate
