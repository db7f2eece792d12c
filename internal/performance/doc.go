// Package performance evaluates portfolio return series: Sharpe and Sortino
// ratios, drawdowns, compounded returns, and OLS factor regressions with
// t-statistics. All statistics take per-period returns and an explicit
// periods-per-year for annualization.
package performance
