package performance

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Summary collects the headline statistics of one portfolio return series.
type Summary struct {
	Name             string  `json:"name"`
	Periods          int     `json:"periods"`
	MeanReturn       float64 `json:"mean_return"`
	AnnualizedReturn float64 `json:"annualized_return"`
	AnnualizedVol    float64 `json:"annualized_vol"`
	Sharpe           float64 `json:"sharpe"`
	Sortino          float64 `json:"sortino"`
	MaxDrawdown      float64 `json:"max_drawdown"`
	HitRate          float64 `json:"hit_rate"`
	BestPeriod       float64 `json:"best_period"`
	WorstPeriod      float64 `json:"worst_period"`
}

// Summarize computes the Summary of a return series. riskFree is the
// per-period risk-free rate used by the ratio statistics.
func Summarize(name string, returns []float64, riskFree float64, periodsPerYear int) Summary {
	s := Summary{Name: name, Periods: len(returns)}
	if len(returns) == 0 {
		return s
	}

	s.MeanReturn = stat.Mean(returns, nil)
	s.AnnualizedReturn = AnnualizedReturn(returns, periodsPerYear)
	if len(returns) > 1 {
		s.AnnualizedVol = stat.StdDev(returns, nil) * math.Sqrt(float64(periodsPerYear))
	}
	s.Sharpe = Sharpe(returns, riskFree, periodsPerYear)
	s.Sortino = Sortino(returns, riskFree, periodsPerYear)
	s.MaxDrawdown = MaxDrawdown(returns)

	wins := 0
	s.BestPeriod, s.WorstPeriod = returns[0], returns[0]
	for _, r := range returns {
		if r > 0 {
			wins++
		}
		if r > s.BestPeriod {
			s.BestPeriod = r
		}
		if r < s.WorstPeriod {
			s.WorstPeriod = r
		}
	}
	s.HitRate = float64(wins) / float64(len(returns))

	return s
}

// CumulativeWealth returns the running product of (1 + r), i.e. the growth of
// one unit invested at the start of the series.
func CumulativeWealth(returns []float64) []float64 {
	wealth := make([]float64, len(returns))
	acc := 1.0
	for i, r := range returns {
		acc *= 1 + r
		wealth[i] = acc
	}
	return wealth
}

// TotalReturn is the compounded return over the whole series.
func TotalReturn(returns []float64) float64 {
	acc := 1.0
	for _, r := range returns {
		acc *= 1 + r
	}
	return acc - 1
}

// AnnualizedReturn compounds the series and rescales it to a yearly rate.
func AnnualizedReturn(returns []float64, periodsPerYear int) float64 {
	if len(returns) == 0 || periodsPerYear <= 0 {
		return 0
	}
	growth := 1 + TotalReturn(returns)
	if growth <= 0 {
		return -1
	}
	return math.Pow(growth, float64(periodsPerYear)/float64(len(returns))) - 1
}

// MaxDrawdown returns the largest peak-to-trough decline of the cumulative
// wealth curve, as a positive fraction.
func MaxDrawdown(returns []float64) float64 {
	peak := 1.0
	wealth := 1.0
	maxDD := 0.0
	for _, r := range returns {
		wealth *= 1 + r
		if wealth > peak {
			peak = wealth
		}
		if dd := (peak - wealth) / peak; dd > maxDD {
			maxDD = dd
		}
	}
	return maxDD
}
