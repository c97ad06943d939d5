package designer

import (
	"context"
	"testing"

	"godoe/domain/design"
	"godoe/domain/factor"
	"godoe/domain/response"
	"godoe/internal"
	"godoe/ports"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func quantitative(t *testing.T, name string, min, max, low, high float64) *factor.Quantitative {
	t.Helper()
	q, err := factor.NewQuantitative(name, min, max, low, high)
	require.NoError(t, err)
	return q
}

func ordinal(t *testing.T, name string, min, max, low, high float64) *factor.Ordinal {
	t.Helper()
	o, err := factor.NewOrdinal(name, min, max, low, high)
	require.NoError(t, err)
	return o
}

func categorical(t *testing.T, name string, values ...string) *factor.Categorical {
	t.Helper()
	c, err := factor.NewCategorical(name, values)
	require.NoError(t, err)
	return c
}

func factorSet(t *testing.T, factors ...factor.Factor) *factor.Set {
	t.Helper()
	s := factor.NewSet()
	for _, f := range factors {
		require.NoError(t, s.Add(f))
	}
	return s
}

func maximize(name string) response.Specs {
	return response.Specs{name: {Criterion: response.Maximize}}
}

func newDesigner(t *testing.T, set *factor.Set, responses response.Specs, opts ...Option) *Designer {
	t.Helper()
	return newDesignerKind(t, design.FullFactorial2, set, responses, opts...)
}

func newDesignerKind(t *testing.T, kind design.Kind, set *factor.Set, responses response.Specs, opts ...Option) *Designer {
	t.Helper()
	opts = append([]Option{WithLogger(internal.NewNopLogger())}, opts...)
	d, err := New(set, string(kind), responses, opts...)
	require.NoError(t, err)
	return d
}

// respond evaluates f on every run of sheet into a single-column response sheet.
func respond(t *testing.T, sheet *design.Sheet, name string, f func(design.Settings) float64) *design.Sheet {
	t.Helper()
	values := make([]float64, sheet.Rows())
	for r := range values {
		values[r] = f(sheet.Row(r))
	}
	out := design.NewSheet(sheet.Rows())
	require.NoError(t, out.SetNumeric(name, values))
	return out
}

func column(t *testing.T, name string, values ...float64) *design.Sheet {
	t.Helper()
	s := design.NewSheet(len(values))
	require.NoError(t, s.SetNumeric(name, values))
	return s
}

type mockFitter struct {
	mock.Mock
}

func (m *mockFitter) Fit(ctx context.Context, req ports.FitRequest) (ports.FitResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(ports.FitResult), args.Error(1)
}
