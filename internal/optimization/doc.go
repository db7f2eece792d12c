// Package optimization builds shrunk covariance matrices and solves
// mean-variance portfolio problems.
//
// Covariance estimation follows Ledoit-Wolf: the sample matrix is shrunk
// toward the constant-correlation target with a data-driven intensity, which
// keeps the estimate well conditioned when the asset count is large relative
// to the observation count.
//
// The solver handles three objectives (min_volatility, max_sharpe,
// efficient_return) under per-asset box bounds and full investment, using a
// quadratic-penalty formulation over a derivative-free minimizer. After
// convergence the solution is projected to bounds and renormalized, so the
// returned weights always sum to one.
package optimization
