package performance

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Sharpe computes the annualized Sharpe ratio of a return series: mean excess
// return over its sample standard deviation, scaled by sqrt(periodsPerYear).
// riskFree is the per-period risk-free rate. A series too short or with zero
// dispersion yields 0 rather than a misleading ratio.
func Sharpe(returns []float64, riskFree float64, periodsPerYear int) float64 {
	if len(returns) < 2 {
		return 0
	}
	excess := make([]float64, len(returns))
	for i, r := range returns {
		excess[i] = r - riskFree
	}
	sd := stat.StdDev(excess, nil)
	if sd == 0 || math.IsNaN(sd) {
		return 0
	}
	ratio := stat.Mean(excess, nil) / sd
	if periodsPerYear > 0 {
		ratio *= math.Sqrt(float64(periodsPerYear))
	}
	return ratio
}

// Sortino computes the annualized Sortino ratio: mean excess return over the
// downside deviation (root mean square of negative excess returns).
func Sortino(returns []float64, riskFree float64, periodsPerYear int) float64 {
	if len(returns) < 2 {
		return 0
	}
	excess := make([]float64, len(returns))
	sumSqDown := 0.0
	for i, r := range returns {
		excess[i] = r - riskFree
		if excess[i] < 0 {
			sumSqDown += excess[i] * excess[i]
		}
	}
	downside := math.Sqrt(sumSqDown / float64(len(returns)))
	if downside == 0 {
		return 0
	}
	ratio := stat.Mean(excess, nil) / downside
	if periodsPerYear > 0 {
		ratio *= math.Sqrt(float64(periodsPerYear))
	}
	return ratio
}
