package portfolio

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"alphalab/internal/errors"
)

// Breakpoints computes the signal cut points separating buckets from one
// period's cross-section. For b buckets it returns b-1 empirical quantiles of
// the values, each one an actual observed signal value.
func Breakpoints(values []float64, buckets int) ([]float64, error) {
	if buckets < 2 {
		return nil, fmt.Errorf("need at least 2 buckets, got %d", buckets)
	}

	clean := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			clean = append(clean, v)
		}
	}
	if len(clean) < buckets {
		return nil, fmt.Errorf("%w: %d values for %d buckets", errors.ErrInsufficientData, len(clean), buckets)
	}
	sort.Float64s(clean)

	cuts := make([]float64, buckets-1)
	for k := 1; k < buckets; k++ {
		cuts[k-1] = stat.Quantile(float64(k)/float64(buckets), stat.Empirical, clean, nil)
	}
	return cuts, nil
}

// AssignBucket places a signal value into a bucket given the cut points.
// Ties at a breakpoint go to the lower bucket.
func AssignBucket(value float64, breakpoints []float64) int {
	for j, cut := range breakpoints {
		if value <= cut {
			return j
		}
	}
	return len(breakpoints)
}
