// Package dataset loads long-format security panels from flat files and
// derives the columns cross-sectional research needs.
//
// A Panel is a date-aligned table of per-symbol series sharing one sorted
// calendar; math.NaN marks missing cells. Files arrive in long format (one row
// per date and symbol) as CSV or XLSX and are pivoted on load.
//
// All derived columns are point-in-time correct: a value written at period i
// depends only on data at periods <= i. Aligning a signal against later
// holding-period returns is done explicitly with Lag, never implicitly, so a
// reader can audit the timing of every join.
//
// Typical flow:
//
//	p, err := dataset.LoadCSV("data/panel.csv", slog.Default())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	_ = dataset.SimpleReturns(p, "close", "ret")
//	_ = dataset.Momentum(p, "close", 12, 2, "mom")
//	_ = dataset.Lag(p, "market_cap", 1, "market_cap_lag1")
package dataset
