package rng

import (
	"context"
	"testing"

	"godoe/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func draw(t *testing.T, campaign, purpose string, iteration int, seed int64) []int {
	t.Helper()
	r, err := NewStreamAdapter().Stream(context.Background(), campaign, purpose, iteration, seed)
	require.NoError(t, err)
	out := make([]int, 8)
	for i := range out {
		out[i] = r.Intn(1000)
	}
	return out
}

func TestStream_Deterministic(t *testing.T) {
	assert.Equal(t, draw(t, "c1", "folds", 3, 42), draw(t, "c1", "folds", 3, 42))
}

func TestStream_CoordinatesSeparateStreams(t *testing.T) {
	base := draw(t, "c1", "folds", 3, 42)
	assert.NotEqual(t, base, draw(t, "c2", "folds", 3, 42))
	assert.NotEqual(t, base, draw(t, "c1", "noise", 3, 42))
	assert.NotEqual(t, base, draw(t, "c1", "folds", 4, 42))
	assert.NotEqual(t, base, draw(t, "c1", "folds", 3, 43))
}

func TestStream_Errors(t *testing.T) {
	_, err := NewStreamAdapter().Stream(context.Background(), "c", "p", -1, 0)
	assert.ErrorIs(t, err, core.ErrInvalidKnob)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewStreamAdapter().Stream(ctx, "c", "p", 0, 0)
	assert.ErrorIs(t, err, context.Canceled)
}
