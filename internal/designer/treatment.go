package designer

import (
	"fmt"
	"math"
	"slices"
	"sort"

	"godoe/domain/core"
	"godoe/domain/design"
	"godoe/domain/response"
	"godoe/internal/errors"

	"github.com/montanaflynn/stats"
)

// treated is a response table reduced to the single column that gets ranked
// and modelled.
type treated struct {
	name      string
	values    []float64
	criterion response.Criterion
	// goal is the treated-space value a target criterion aims for.
	goal float64
}

// TreatResponse reduces a response table to one column. A single response keeps
// its own criterion; several responses are mapped through their desirability
// functions and combined by geometric mean into combined_response, which is
// always maximized. With performTransform each response's configured transform
// is fitted and applied first.
func (d *Designer) TreatResponse(table *design.Sheet, performTransform bool) (*design.Sheet, response.Criterion, error) {
	t, err := d.treatResponse(table, performTransform)
	if err != nil {
		return nil, "", errors.Classify(err)
	}
	out := design.NewSheet(len(t.values))
	if err := out.SetNumeric(t.name, t.values); err != nil {
		return nil, "", err
	}
	return out, t.criterion, nil
}

func (d *Designer) treatResponse(table *design.Sheet, performTransform bool) (treated, error) {
	if table == nil {
		return treated{}, fmt.Errorf("%w: no response table", core.ErrShapeMismatch)
	}
	names := d.responses.Names()
	columns := make(map[string][]float64, len(names))
	for _, name := range names {
		raw, ok := table.Numeric(name)
		if !ok {
			return treated{}, fmt.Errorf("%w: response table has no numeric column %q", core.ErrShapeMismatch, name)
		}
		applied := response.Identity()
		if performTransform {
			var err error
			if applied, err = d.responses[name].Transform.Fit(raw); err != nil {
				return treated{}, fmt.Errorf("response %s: %w", name, err)
			}
			d.transforms[name] = applied
		}
		columns[name] = applied.ForwardAll(raw)
		d.lastTransform = applied
	}

	if len(names) == 1 {
		name := names[0]
		spec := d.responses[name]
		return treated{
			name:      name,
			values:    columns[name],
			criterion: spec.Criterion,
			goal:      d.lastTransform.Forward(spec.Goal()),
		}, nil
	}

	combined := make([]float64, table.Rows())
	scores := make([]float64, len(names))
	for row := range combined {
		for i, name := range names {
			scores[i] = d.desirability[name](columns[name][row])
		}
		combined[row] = geometricMean(scores)
	}
	return treated{name: response.CombinedName, values: combined, criterion: response.Maximize}, nil
}

func geometricMean(scores []float64) float64 {
	for _, s := range scores {
		if math.IsNaN(s) {
			return math.NaN()
		}
	}
	// stats.GeometricMean restarts its running product on a zero factor.
	if slices.Contains(scores, 0) {
		return 0
	}
	gm, err := stats.GeometricMean(scores)
	if err != nil {
		return math.NaN()
	}
	return gm
}

// rank orders row indices best first. Ties keep sheet order and NaN responses
// (failed runs) sort last.
func (t treated) rank() []int {
	idx := make([]int, len(t.values))
	for i := range idx {
		idx[i] = i
	}
	key := func(i int) float64 {
		v := t.values[i]
		switch t.criterion {
		case response.Maximize:
			return -v
		case response.Target:
			return math.Abs(v - t.goal)
		}
		return v
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ka, kb := key(idx[a]), key(idx[b])
		if math.IsNaN(kb) {
			return !math.IsNaN(ka)
		}
		return ka < kb
	})
	return idx
}

// pick returns the row ranked useIndex, counting from 1.
func (t treated) pick(useIndex int) (int, error) {
	if useIndex < 1 || useIndex > len(t.values) {
		return 0, fmt.Errorf("%w: rank %d of %d rows", core.ErrNoScreeningAlternatives, useIndex, len(t.values))
	}
	return t.rank()[useIndex-1], nil
}

// better reports whether a strictly improves on b.
func (t treated) better(a, b float64) bool {
	if t.criterion == response.Target {
		return math.Abs(a-t.goal) < math.Abs(b-t.goal)
	}
	return t.criterion.Better(a, b)
}
