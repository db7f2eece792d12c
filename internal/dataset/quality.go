package dataset

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
)

// SymbolQuality summarizes coverage of one symbol within a panel column.
type SymbolQuality struct {
	Symbol     string  `json:"symbol"`
	Total      int     `json:"total"`
	Observed   int     `json:"observed"`
	Coverage   float64 `json:"coverage"`
	Sufficient bool    `json:"sufficient"`
}

// QualityReport summarizes coverage of a panel column across the universe.
// It is the loader-side counterpart of validating inputs before portfolio
// construction: symbols below MinCoverage should be excluded upstream.
type QualityReport struct {
	Column         string          `json:"column"`
	Periods        int             `json:"periods"`
	Symbols        int             `json:"symbols"`
	MedianCoverage float64         `json:"median_coverage"`
	PerSymbol      []SymbolQuality `json:"per_symbol"`
}

// MinCoverage is the fraction of periods a symbol must have observed values
// for before it is considered usable in cross-sectional work.
const MinCoverage = 0.5

// AssessQuality builds a coverage report for one panel column.
func AssessQuality(p *Panel, column string) QualityReport {
	report := QualityReport{
		Column:  column,
		Periods: p.Periods(),
		Symbols: len(p.Symbols()),
	}

	coverages := make([]float64, 0, len(p.Symbols()))
	for _, symbol := range p.Symbols() {
		values := p.Series(column, symbol)
		observed := 0
		for _, v := range values {
			if !math.IsNaN(v) {
				observed++
			}
		}
		coverage := 0.0
		if p.Periods() > 0 {
			coverage = float64(observed) / float64(p.Periods())
		}
		coverages = append(coverages, coverage)
		report.PerSymbol = append(report.PerSymbol, SymbolQuality{
			Symbol:     symbol,
			Total:      p.Periods(),
			Observed:   observed,
			Coverage:   coverage,
			Sufficient: coverage >= MinCoverage,
		})
	}

	sort.Slice(report.PerSymbol, func(i, j int) bool {
		return report.PerSymbol[i].Symbol < report.PerSymbol[j].Symbol
	})

	if len(coverages) > 0 {
		if median, err := stats.Median(coverages); err == nil {
			report.MedianCoverage = median
		}
	}

	return report
}
