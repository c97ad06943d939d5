package desirability

import (
	"testing"

	"godoe/domain/core"
	"godoe/domain/response"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fp(v float64) *float64 { return &v }

func TestBuild_Maximize(t *testing.T) {
	d, err := NewFactory().Build(response.Spec{Criterion: response.Maximize, LowLimit: fp(0), HighLimit: fp(10)})
	require.NoError(t, err)

	assert.Equal(t, 0.0, d(-1))
	assert.InDelta(t, 0.5, d(5), 1e-12)
	assert.Equal(t, 1.0, d(12))
}

func TestBuild_MinimizeWithExponent(t *testing.T) {
	d, err := NewFactory().Build(response.Spec{
		Criterion: response.Minimize, Target: fp(2), HighLimit: fp(6), Exponent: 2,
	})
	require.NoError(t, err)

	assert.Equal(t, 1.0, d(1))
	assert.InDelta(t, 0.25, d(4), 1e-12)
	assert.Equal(t, 0.0, d(7))
}

func TestBuild_Target(t *testing.T) {
	d, err := NewFactory().Build(response.Spec{Criterion: response.Target, LowLimit: fp(0), HighLimit: fp(4)})
	require.NoError(t, err)

	assert.Equal(t, 1.0, d(2))
	assert.InDelta(t, 0.5, d(1), 1e-12)
	assert.InDelta(t, 0.5, d(3), 1e-12)
	assert.Equal(t, 0.0, d(5))
}

func TestBuild_MissingAnchors(t *testing.T) {
	tests := []response.Spec{
		{Criterion: response.Maximize, HighLimit: fp(1)},
		{Criterion: response.Maximize, LowLimit: fp(1)},
		{Criterion: response.Maximize, LowLimit: fp(3), HighLimit: fp(1)},
		{Criterion: response.Minimize, LowLimit: fp(1)},
		{Criterion: response.Target, LowLimit: fp(1)},
		{Criterion: response.Target, LowLimit: fp(0), HighLimit: fp(4), Target: fp(4)},
		{Criterion: "sideways"},
	}
	for _, spec := range tests {
		_, err := NewFactory().Build(spec)
		assert.ErrorIs(t, err, core.ErrInvalidResponseSpec, "%+v", spec)
	}
}
