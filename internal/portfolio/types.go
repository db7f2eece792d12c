package portfolio

import (
	"fmt"
	"math"
	"strings"
	"time"

	"alphalab/internal/errors"
)

// Weighting selects how securities are weighted inside a bucket.
type Weighting int

const (
	// WeightEqual gives every security in a bucket the same weight.
	WeightEqual Weighting = iota
	// WeightValue weights securities by lagged market capitalization.
	WeightValue
)

// String returns the string representation of the weighting scheme.
func (w Weighting) String() string {
	switch w {
	case WeightEqual:
		return "equal"
	case WeightValue:
		return "value"
	default:
		return "unknown"
	}
}

// ParseWeighting parses a weighting scheme name.
func ParseWeighting(s string) (Weighting, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "equal", "ew":
		return WeightEqual, nil
	case "value", "vw":
		return WeightValue, nil
	default:
		return 0, fmt.Errorf("unknown weighting scheme: %q", s)
	}
}

// SortConfig describes one cross-sectional sort: which signal ranks the
// universe, how many buckets to form, how holdings are weighted, and how far
// the signal and weight basis are lagged relative to the holding return.
type SortConfig struct {
	// SignalColumn ranks the cross-section at formation.
	SignalColumn string
	// ReturnColumn holds the holding-period return being aggregated.
	ReturnColumn string
	// CapColumn holds market capitalization; required for value weighting.
	CapColumn string
	// Weighting selects equal or value weights within buckets.
	Weighting Weighting
	// Buckets is the number of portfolios formed per period.
	Buckets int
	// SignalLag is the number of periods between the signal observation and
	// the holding return it explains. Must be at least 1: a lag of 0 would
	// rank period t by information only known at t.
	SignalLag int
	// CapLag is the lag applied to the weight basis under value weighting.
	// Must be at least 1 for the same reason.
	CapLag int
	// MinCrossSection is the smallest eligible universe a period may have and
	// still be sorted. Periods below it are skipped with a warning.
	MinCrossSection int
}

// DefaultSortConfig returns a decile sort on the given signal with
// equal weights and one-period lags.
func DefaultSortConfig(signal, returns string) SortConfig {
	return SortConfig{
		SignalColumn:    signal,
		ReturnColumn:    returns,
		Weighting:       WeightEqual,
		Buckets:         10,
		SignalLag:       1,
		CapLag:          1,
		MinCrossSection: 10,
	}
}

// Validate checks the configuration for internal consistency.
func (c SortConfig) Validate() error {
	if c.SignalColumn == "" {
		return fmt.Errorf("%w: signal column is required", errors.ErrInvalidConfig)
	}
	if c.ReturnColumn == "" {
		return fmt.Errorf("%w: return column is required", errors.ErrInvalidConfig)
	}
	if c.Buckets < 2 {
		return fmt.Errorf("%w: need at least 2 buckets, got %d", errors.ErrInvalidConfig, c.Buckets)
	}
	if c.SignalLag < 1 {
		return fmt.Errorf("%w: signal lag %d lets the signal see the holding return", errors.ErrLookaheadViolation, c.SignalLag)
	}
	if c.Weighting == WeightValue {
		if c.CapColumn == "" {
			return fmt.Errorf("%w: value weighting requires a cap column", errors.ErrInvalidConfig)
		}
		if c.CapLag < 1 {
			return fmt.Errorf("%w: cap lag %d weights period t by capitalization formed at t", errors.ErrLookaheadViolation, c.CapLag)
		}
	}
	if c.MinCrossSection < c.Buckets {
		return fmt.Errorf("%w: minimum cross-section %d is below bucket count %d", errors.ErrInvalidConfig, c.MinCrossSection, c.Buckets)
	}
	return nil
}

// PeriodResult holds the outcome of one period's sort.
type PeriodResult struct {
	Date time.Time `json:"date"`
	// Universe is the number of eligible securities this period.
	Universe int `json:"universe"`
	// Breakpoints are the signal cut points separating buckets (Buckets-1 values).
	Breakpoints []float64 `json:"breakpoints"`
	// BucketReturns holds one weighted holding return per bucket, lowest
	// signal first. An empty bucket carries NaN.
	BucketReturns []float64 `json:"bucket_returns"`
	// BucketCounts holds the number of securities per bucket.
	BucketCounts []int `json:"bucket_counts"`
	// LongShort is the top bucket return minus the bottom bucket return.
	LongShort float64 `json:"long_short"`
	// MarketReturn is the weighted return of the whole eligible cross-section,
	// usable as the market factor in regressions.
	MarketReturn float64 `json:"market_return"`
}

// SortResult is the full time series produced by a sort.
type SortResult struct {
	Config  SortConfig     `json:"config"`
	RunID   string         `json:"run_id"`
	Periods []PeriodResult `json:"periods"`
}

// Dates returns the period dates in order.
func (r *SortResult) Dates() []time.Time {
	dates := make([]time.Time, len(r.Periods))
	for i, pr := range r.Periods {
		dates[i] = pr.Date
	}
	return dates
}

// LongShortSeries returns the long-short return series, excluding periods
// where either leg was empty.
func (r *SortResult) LongShortSeries() ([]time.Time, []float64) {
	dates := make([]time.Time, 0, len(r.Periods))
	returns := make([]float64, 0, len(r.Periods))
	for _, pr := range r.Periods {
		if math.IsNaN(pr.LongShort) {
			continue
		}
		dates = append(dates, pr.Date)
		returns = append(returns, pr.LongShort)
	}
	return dates, returns
}

// BucketSeries returns the return series of one bucket (0 = lowest signal),
// excluding periods where the bucket was empty.
func (r *SortResult) BucketSeries(bucket int) ([]time.Time, []float64) {
	dates := make([]time.Time, 0, len(r.Periods))
	returns := make([]float64, 0, len(r.Periods))
	for _, pr := range r.Periods {
		if bucket < 0 || bucket >= len(pr.BucketReturns) {
			continue
		}
		if math.IsNaN(pr.BucketReturns[bucket]) {
			continue
		}
		dates = append(dates, pr.Date)
		returns = append(returns, pr.BucketReturns[bucket])
	}
	return dates, returns
}

// MarketSeries returns the eligible-universe weighted return series.
func (r *SortResult) MarketSeries() ([]time.Time, []float64) {
	dates := make([]time.Time, 0, len(r.Periods))
	returns := make([]float64, 0, len(r.Periods))
	for _, pr := range r.Periods {
		if math.IsNaN(pr.MarketReturn) {
			continue
		}
		dates = append(dates, pr.Date)
		returns = append(returns, pr.MarketReturn)
	}
	return dates, returns
}
