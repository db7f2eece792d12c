package performance

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "alphalab/internal/errors"
)

func TestOLS_RecoversExactFit(t *testing.T) {
	// y = 1 + 2x, noise-free.
	x := make([]float64, 10)
	y := make([]float64, 10)
	for i := range x {
		x[i] = float64(i + 1)
		y[i] = 1 + 2*x[i]
	}

	result, err := OLS(y, [][]float64{x}, []string{"x"})
	require.NoError(t, err)

	assert.InDelta(t, 1.0, result.Alpha(), 1e-9)
	beta, ok := result.Beta("x")
	require.True(t, ok)
	assert.InDelta(t, 2.0, beta, 1e-9)
	assert.InDelta(t, 1.0, result.R2, 1e-9)
	assert.Equal(t, 10, result.N)

	_, ok = result.Beta("missing")
	assert.False(t, ok)
}

func TestOLS_TwoFactors(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	n := 200
	f1 := make([]float64, n)
	f2 := make([]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		f1[i] = rng.NormFloat64()
		f2[i] = rng.NormFloat64()
		y[i] = 0.5 + 1.5*f1[i] - 0.8*f2[i] + 0.01*rng.NormFloat64()
	}

	result, err := OLS(y, [][]float64{f1, f2}, []string{"f1", "f2"})
	require.NoError(t, err)

	assert.InDelta(t, 0.5, result.Alpha(), 0.01)
	b1, _ := result.Beta("f1")
	b2, _ := result.Beta("f2")
	assert.InDelta(t, 1.5, b1, 0.01)
	assert.InDelta(t, -0.8, b2, 0.01)
	assert.Greater(t, result.R2, 0.99)
	assert.Greater(t, result.AdjR2, 0.99)

	// A strong noise-free loading produces a large t-statistic.
	assert.Greater(t, result.TStats[1], 10.0)

	require.Len(t, result.StdErrors, 3)
	for _, se := range result.StdErrors {
		assert.Greater(t, se, 0.0)
	}
}

func TestOLS_Errors(t *testing.T) {
	t.Run("too few observations", func(t *testing.T) {
		_, err := OLS([]float64{1, 2, 3}, [][]float64{{1, 2, 3}}, []string{"x"})
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrInsufficientData)
	})

	t.Run("length mismatch", func(t *testing.T) {
		_, err := OLS([]float64{1, 2, 3, 4, 5}, [][]float64{{1, 2}}, []string{"x"})
		assert.Error(t, err)
	})

	t.Run("names mismatch", func(t *testing.T) {
		_, err := OLS([]float64{1, 2, 3, 4, 5}, [][]float64{{1, 2, 3, 4, 5}}, []string{"x", "y"})
		assert.Error(t, err)
	})
}

func TestCAPM(t *testing.T) {
	// Portfolio = 0.001 + 1.2 * market, so alpha and beta are exact.
	market := []float64{0.01, -0.02, 0.03, 0.015, -0.005, 0.02, -0.01, 0.025}
	portfolio := make([]float64, len(market))
	for i, m := range market {
		portfolio[i] = 0.001 + 1.2*m
	}

	result, err := CAPM(portfolio, market, 0)
	require.NoError(t, err)

	assert.InDelta(t, 0.001, result.Alpha(), 1e-9)
	beta, ok := result.Beta("market")
	require.True(t, ok)
	assert.InDelta(t, 1.2, beta, 1e-9)
}

func TestCAPM_LengthMismatch(t *testing.T) {
	_, err := CAPM([]float64{0.01}, []float64{0.01, 0.02}, 0)
	assert.Error(t, err)
}
