package dataset

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
)

// Derived-column helpers. Every function here is point-in-time correct: the
// value written at period i depends only on data at periods <= i. Holding-period
// alignment (shifting a signal forward relative to returns) is done with Lag.

// SimpleReturns adds out[i] = price[i]/price[i-1] - 1 per symbol. Periods
// without positive prices on both sides stay NaN: a zero price is a
// placeholder for a missing quote, not a wipeout.
func SimpleReturns(p *Panel, priceColumn, out string) error {
	return deriveEach(p, priceColumn, out, func(prices []float64) []float64 {
		returns := nanSlice(len(prices))
		for i := 1; i < len(prices); i++ {
			if prices[i-1] > 0 && prices[i] > 0 {
				returns[i] = prices[i]/prices[i-1] - 1
			}
		}
		return returns
	})
}

// LogReturns adds out[i] = ln(price[i]/price[i-1]) per symbol.
func LogReturns(p *Panel, priceColumn, out string) error {
	return deriveEach(p, priceColumn, out, func(prices []float64) []float64 {
		returns := nanSlice(len(prices))
		for i := 1; i < len(prices); i++ {
			if prices[i-1] > 0 && prices[i] > 0 {
				returns[i] = math.Log(prices[i] / prices[i-1])
			}
		}
		return returns
	})
}

// Lag adds out[i] = column[i-periods] per symbol. This is the building block of
// the lagged merge: a signal lagged by one period can be joined against the
// same period's return without explaining a return by information dated at or
// after it.
func Lag(p *Panel, column string, periods int, out string) error {
	if periods < 0 {
		return fmt.Errorf("lag periods must be non-negative, got %d", periods)
	}
	return deriveEach(p, column, out, func(values []float64) []float64 {
		lagged := nanSlice(len(values))
		for i := periods; i < len(values); i++ {
			lagged[i] = values[i-periods]
		}
		return lagged
	})
}

// RollingMean adds the trailing window mean of a column per symbol. Windows
// containing any NaN stay NaN, matching how gaps should poison a trailing stat.
func RollingMean(p *Panel, column string, window int, out string) error {
	if window < 1 {
		return fmt.Errorf("rolling window must be positive, got %d", window)
	}
	return deriveEach(p, column, out, func(values []float64) []float64 {
		result := nanSlice(len(values))
		for i := window - 1; i < len(values); i++ {
			sum, ok := 0.0, true
			for j := i - window + 1; j <= i; j++ {
				if math.IsNaN(values[j]) {
					ok = false
					break
				}
				sum += values[j]
			}
			if ok {
				result[i] = sum / float64(window)
			}
		}
		return result
	})
}

// RollingStd adds the trailing window sample standard deviation of a column.
func RollingStd(p *Panel, column string, window int, out string) error {
	if window < 2 {
		return fmt.Errorf("rolling std window must be at least 2, got %d", window)
	}
	return deriveEach(p, column, out, func(values []float64) []float64 {
		result := nanSlice(len(values))
		for i := window - 1; i < len(values); i++ {
			windowVals := make([]float64, 0, window)
			for j := i - window + 1; j <= i; j++ {
				if math.IsNaN(values[j]) {
					windowVals = nil
					break
				}
				windowVals = append(windowVals, values[j])
			}
			if len(windowVals) == window {
				if sd, err := stats.StandardDeviationSample(windowVals); err == nil {
					result[i] = sd
				}
			}
		}
		return result
	})
}

// Momentum adds the cumulative return from period i-lookback to i-skip per
// symbol. The classic 12-2 signal is Momentum(p, "close", 12, 2, "mom").
// Skipping the most recent periods sidesteps short-term reversal.
func Momentum(p *Panel, priceColumn string, lookback, skip int, out string) error {
	if lookback <= skip {
		return fmt.Errorf("momentum lookback (%d) must exceed skip (%d)", lookback, skip)
	}
	if skip < 0 {
		return fmt.Errorf("momentum skip must be non-negative, got %d", skip)
	}
	return deriveEach(p, priceColumn, out, func(prices []float64) []float64 {
		result := nanSlice(len(prices))
		for i := lookback; i < len(prices); i++ {
			p0 := prices[i-lookback]
			p1 := prices[i-skip]
			if p0 > 0 && p1 > 0 {
				result[i] = p1/p0 - 1
			}
		}
		return result
	})
}

// FillMissing forward-fills then back-fills NaN gaps in a column, in place.
// Leading gaps take the first observed value; interior gaps carry the last.
func FillMissing(p *Panel, column string) error {
	if !p.HasColumn(column) {
		return fmt.Errorf("column %q not found", column)
	}
	for _, symbol := range p.Symbols() {
		values := p.Series(column, symbol)
		if values == nil {
			continue
		}

		var lastValid float64
		hasLastValid := false
		for i := 0; i < len(values); i++ {
			if math.IsNaN(values[i]) {
				if hasLastValid {
					values[i] = lastValid
				}
			} else {
				lastValid = values[i]
				hasLastValid = true
			}
		}

		var nextValid float64
		hasNextValid := false
		for i := len(values) - 1; i >= 0; i-- {
			if math.IsNaN(values[i]) {
				if hasNextValid {
					values[i] = nextValid
				}
			} else {
				nextValid = values[i]
				hasNextValid = true
			}
		}

		if err := p.SetSeries(column, symbol, values); err != nil {
			return fmt.Errorf("fill %s[%s]: %w", column, symbol, err)
		}
	}
	return nil
}

// CrossSectionalZScore adds the per-period z-score of a column across the
// eligible cross-section. Periods with fewer than two observations stay NaN.
func CrossSectionalZScore(p *Panel, column, out string) error {
	if !p.HasColumn(column) {
		return fmt.Errorf("column %q not found", column)
	}
	for i := 0; i < p.Periods(); i++ {
		xs := p.CrossSection(column, i)
		if len(xs) < 2 {
			continue
		}
		values := make([]float64, 0, len(xs))
		for _, v := range xs {
			values = append(values, v)
		}
		mean, err := stats.Mean(values)
		if err != nil {
			return fmt.Errorf("cross-sectional mean at period %d: %w", i, err)
		}
		sd, err := stats.StandardDeviationSample(values)
		if err != nil {
			return fmt.Errorf("cross-sectional stdev at period %d: %w", i, err)
		}
		if sd == 0 {
			continue
		}
		for symbol, v := range xs {
			if err := p.Set(out, symbol, i, (v-mean)/sd); err != nil {
				return fmt.Errorf("set %s[%s]: %w", out, symbol, err)
			}
		}
	}
	return nil
}

// deriveEach applies a per-symbol transform of one column into a new column.
func deriveEach(p *Panel, column, out string, fn func([]float64) []float64) error {
	if !p.HasColumn(column) {
		return fmt.Errorf("column %q not found", column)
	}
	if out == "" {
		return fmt.Errorf("output column name is empty")
	}
	for _, symbol := range p.Symbols() {
		values := p.Series(column, symbol)
		if values == nil {
			continue
		}
		if err := p.SetSeries(out, symbol, fn(values)); err != nil {
			return fmt.Errorf("derive %s[%s]: %w", out, symbol, err)
		}
	}
	return nil
}

func nanSlice(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = math.NaN()
	}
	return s
}
