package portfolio

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "alphalab/internal/errors"
)

func TestBreakpoints(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	tests := []struct {
		name    string
		buckets int
		want    []float64
	}{
		{name: "median split", buckets: 2, want: []float64{5}},
		{name: "quintiles", buckets: 5, want: []float64{2, 4, 6, 8}},
		{name: "deciles", buckets: 10, want: []float64{1, 2, 3, 4, 5, 6, 7, 8, 9}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cuts, err := Breakpoints(values, tt.buckets)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cuts)
		})
	}
}

func TestBreakpoints_IgnoresNaNAndInf(t *testing.T) {
	values := []float64{math.NaN(), 1, 2, math.Inf(1), 3, 4, math.Inf(-1)}

	cuts, err := Breakpoints(values, 2)
	require.NoError(t, err)

	assert.Equal(t, []float64{2}, cuts)
}

func TestBreakpoints_Errors(t *testing.T) {
	_, err := Breakpoints([]float64{1, 2, 3}, 1)
	assert.Error(t, err)

	_, err = Breakpoints([]float64{1, 2, math.NaN()}, 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInsufficientData, "NaN values do not count toward the minimum")
}

func TestAssignBucket(t *testing.T) {
	cuts := []float64{2, 4, 6, 8}

	tests := []struct {
		name  string
		value float64
		want  int
	}{
		{name: "below first cut", value: 1, want: 0},
		{name: "tie goes to lower bucket", value: 2, want: 0},
		{name: "interior", value: 5, want: 2},
		{name: "tie at upper cut", value: 8, want: 3},
		{name: "above last cut", value: 9, want: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AssignBucket(tt.value, cuts))
		})
	}
}
