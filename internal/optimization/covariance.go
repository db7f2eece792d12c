package optimization

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"alphalab/internal/errors"
)

// SampleCovariance computes the sample covariance matrix of aligned return
// series, ordered by symbols. Every symbol must have the same number of
// observations.
func SampleCovariance(returns map[string][]float64, symbols []string) ([][]float64, error) {
	if len(symbols) == 0 {
		return nil, fmt.Errorf("no symbols provided")
	}

	length := -1
	for _, symbol := range symbols {
		r, ok := returns[symbol]
		if !ok {
			return nil, fmt.Errorf("missing returns for symbol %s", symbol)
		}
		if length == -1 {
			length = len(r)
		}
		if len(r) != length {
			return nil, fmt.Errorf("inconsistent return lengths: expected %d, got %d for %s", length, len(r), symbol)
		}
	}
	if length < 2 {
		return nil, fmt.Errorf("%w: need at least 2 observations, got %d", errors.ErrInsufficientData, length)
	}

	n := len(symbols)
	cov := make([][]float64, n)
	for i := range cov {
		cov[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		ri := returns[symbols[i]]
		for j := i; j < n; j++ {
			c := stat.Covariance(ri, returns[symbols[j]], nil)
			cov[i][j] = c
			cov[j][i] = c
		}
	}

	return cov, nil
}

// LedoitWolfShrinkage shrinks a sample covariance matrix toward the constant
// correlation target, returning the shrunk matrix and the intensity used.
//
// The target keeps each asset's variance and replaces every off-diagonal
// element with the average covariance. Intensity is estimated from the
// dispersion of the sample around the target and capped at 0.5 so the data
// always dominate the structure.
//
// Reference: Ledoit & Wolf (2004), "A well-conditioned estimator for
// large-dimensional covariance matrices".
func LedoitWolfShrinkage(sample [][]float64) ([][]float64, float64, error) {
	n := len(sample)
	if n == 0 {
		return nil, 0, fmt.Errorf("empty covariance matrix")
	}
	for i := range sample {
		if len(sample[i]) != n {
			return nil, 0, fmt.Errorf("covariance matrix row %d has %d columns, expected %d", i, len(sample[i]), n)
		}
	}

	var avgVar, avgCov float64
	for i := 0; i < n; i++ {
		avgVar += sample[i][i]
		for j := 0; j < n; j++ {
			if i != j {
				avgCov += sample[i][j]
			}
		}
	}
	avgVar /= float64(n)
	if n > 1 {
		avgCov /= float64(n * (n - 1))
	}

	target := make([][]float64, n)
	for i := range target {
		target[i] = make([]float64, n)
		for j := range target[i] {
			if i == j {
				target[i][j] = sample[i][i]
			} else {
				target[i][j] = avgCov
			}
		}
	}

	intensity := estimateIntensity(sample, target, n, avgVar)

	shrunk := make([][]float64, n)
	for i := range shrunk {
		shrunk[i] = make([]float64, n)
		for j := range shrunk[i] {
			shrunk[i][j] = (1-intensity)*sample[i][j] + intensity*target[i][j]
		}
	}

	return shrunk, intensity, nil
}

// estimateIntensity picks the shrinkage weight from the dispersion of sample
// elements around the target relative to their overall variance.
func estimateIntensity(sample, target [][]float64, n int, avgVar float64) float64 {
	const defaultIntensity = 0.2
	if n <= 2 || avgVar <= 0 {
		return defaultIntensity
	}

	var sumSqDiff, sum, sumSq float64
	count := 0
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			diff := sample[i][j] - target[i][j]
			sumSqDiff += diff * diff
			sum += sample[i][j]
			sumSq += sample[i][j] * sample[i][j]
			count++
		}
	}
	meanSqDiff := sumSqDiff / float64(count)
	mean := sum / float64(count)
	variance := sumSq/float64(count) - mean*mean

	if variance <= 0 || meanSqDiff <= 0 {
		return defaultIntensity
	}
	return math.Min(0.5, math.Max(0.0, variance/(variance+meanSqDiff)))
}

// CorrelationFromCovariance converts a covariance matrix to correlations.
// Entries involving a non-positive variance are zero.
func CorrelationFromCovariance(cov [][]float64) [][]float64 {
	n := len(cov)
	corr := make([][]float64, n)
	for i := range corr {
		corr[i] = make([]float64, n)
		for j := range corr[i] {
			if cov[i][i] > 0 && cov[j][j] > 0 {
				corr[i][j] = cov[i][j] / math.Sqrt(cov[i][i]*cov[j][j])
			}
		}
	}
	return corr
}
