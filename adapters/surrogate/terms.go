package surrogate

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"godoe/domain/core"
)

// term is one model column. a and b index factors; b < 0 is a linear term and
// a == b a pure quadratic.
type term struct {
	a, b int
}

func linear(a int) term         { return term{a: a, b: -1} }
func interaction(a, b int) term { return term{a: min(a, b), b: max(a, b)} }
func square(a int) term         { return term{a: a, b: a} }

func (t term) isLinear() bool { return t.b < 0 }

// value evaluates the term on a coded point.
func (t term) value(x []float64) float64 {
	if t.isLinear() {
		return x[t.a]
	}
	return x[t.a] * x[t.b]
}

// parents lists the linear terms a higher-order term depends on.
func (t term) parents() []term {
	switch {
	case t.isLinear():
		return nil
	case t.a == t.b:
		return []term{linear(t.a)}
	}
	return []term{linear(t.a), linear(t.b)}
}

func (t term) format(names []string) string {
	switch {
	case t.isLinear():
		return names[t.a]
	case t.a == t.b:
		return fmt.Sprintf("I(%s**2)", names[t.a])
	}
	return names[t.a] + ":" + names[t.b]
}

// fullQuadratic returns linear, interaction and square terms in that order.
func fullQuadratic(k int) []term {
	var out []term
	for i := 0; i < k; i++ {
		out = append(out, linear(i))
	}
	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			out = append(out, interaction(i, j))
		}
	}
	for i := 0; i < k; i++ {
		out = append(out, square(i))
	}
	return out
}

// hierarchical reports whether every higher-order term has its parents present.
func hierarchical(terms []term) bool {
	for _, t := range terms {
		for _, p := range t.parents() {
			if !slices.Contains(terms, p) {
				return false
			}
		}
	}
	return true
}

func formatFormula(names []string, terms []term) string {
	parts := make([]string, 0, len(terms)+1)
	parts = append(parts, "1")
	for _, t := range terms {
		parts = append(parts, t.format(names))
	}
	return "y ~ " + strings.Join(parts, " + ")
}

var (
	squarePattern = regexp.MustCompile(`^I\(\s*([^()*\s]+)\s*(?:\*\*|\^)\s*2\s*\)$`)
	powerPattern  = regexp.MustCompile(`^([^()*\s]+)\s*(?:\*\*|\^)\s*2$`)
)

// parseFormula reads the right-hand side of a patsy-style formula. The
// intercept is implicit; "1" and "0" are ignored.
func parseFormula(formula string, names []string) ([]term, error) {
	rhs := formula
	if i := strings.Index(formula, "~"); i >= 0 {
		rhs = formula[i+1:]
	}
	index := func(name string) (int, error) {
		i := slices.Index(names, strings.TrimSpace(name))
		if i < 0 {
			return 0, fmt.Errorf("%w: unknown factor %q in %q", core.ErrInvalidFormula, name, formula)
		}
		return i, nil
	}

	var terms []term
	for _, raw := range strings.Split(rhs, "+") {
		part := strings.TrimSpace(raw)
		var (
			t   term
			err error
		)
		switch {
		case part == "":
			return nil, fmt.Errorf("%w: empty term in %q", core.ErrInvalidFormula, formula)
		case part == "1" || part == "0":
			continue
		case squarePattern.MatchString(part):
			var a int
			a, err = index(squarePattern.FindStringSubmatch(part)[1])
			t = square(a)
		case powerPattern.MatchString(part):
			var a int
			a, err = index(powerPattern.FindStringSubmatch(part)[1])
			t = square(a)
		case strings.Contains(part, ":"):
			pair := strings.Split(part, ":")
			if len(pair) != 2 {
				return nil, fmt.Errorf("%w: only two-factor interactions are supported, got %q", core.ErrInvalidFormula, part)
			}
			var a, b int
			if a, err = index(pair[0]); err == nil {
				b, err = index(pair[1])
			}
			if err == nil && a == b {
				t = square(a)
			} else {
				t = interaction(a, b)
			}
		default:
			var a int
			a, err = index(part)
			t = linear(a)
		}
		if err != nil {
			return nil, err
		}
		if !slices.Contains(terms, t) {
			terms = append(terms, t)
		}
	}
	return terms, nil
}
