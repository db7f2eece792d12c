// Package portfolio forms long/short portfolios from cross-sectional sorts.
//
// Each holding period is processed independently: the eligible cross-section
// is ranked by a lagged signal, split into buckets at empirical quantile
// breakpoints, and each bucket's holding return is the equal- or value-weighted
// mean of its members. The long-short series is the top bucket minus the
// bottom bucket.
//
// # Point-in-time discipline
//
// The configuration enforces the timing that keeps the sort free of lookahead
// bias: the signal ranking period t must be observed at t-SignalLag (lag >= 1),
// and value weights use capitalization observed at t-CapLag (lag >= 1). A
// configuration that would violate either is rejected at construction.
//
// # Edge cases
//
//   - Securities missing the signal, the return, or (under value weighting) a
//     positive lagged capitalization are excluded from the cross-section.
//   - Periods with fewer eligible securities than MinCrossSection are skipped
//     with a warning rather than producing a degenerate sort.
//   - Ties at a breakpoint go to the lower bucket.
//   - An empty bucket carries a NaN return; the long-short return for that
//     period is NaN if either leg is empty.
//
// # Usage
//
//	cfg := portfolio.DefaultSortConfig("mom", "ret")
//	cfg.Weighting = portfolio.WeightValue
//	cfg.CapColumn = "market_cap"
//
//	builder, err := portfolio.NewBuilder(cfg, slog.Default())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := builder.Build(ctx, panel)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	dates, longShort := result.LongShortSeries()
package portfolio
