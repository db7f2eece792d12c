package performance

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"alphalab/internal/errors"
)

// RegressionResult holds an OLS fit of portfolio returns on factor returns.
// Index 0 of the coefficient slices is the intercept (the alpha); the rest
// follow the order of FactorNames.
type RegressionResult struct {
	FactorNames  []string  `json:"factor_names"`
	Coefficients []float64 `json:"coefficients"`
	StdErrors    []float64 `json:"std_errors"`
	TStats       []float64 `json:"t_stats"`
	R2           float64   `json:"r2"`
	AdjR2        float64   `json:"adj_r2"`
	N            int       `json:"n"`
}

// Alpha returns the regression intercept.
func (r *RegressionResult) Alpha() float64 {
	return r.Coefficients[0]
}

// AlphaTStat returns the t-statistic of the intercept.
func (r *RegressionResult) AlphaTStat() float64 {
	return r.TStats[0]
}

// Beta returns the loading on the named factor.
func (r *RegressionResult) Beta(factor string) (float64, bool) {
	for i, name := range r.FactorNames {
		if name == factor {
			return r.Coefficients[i+1], true
		}
	}
	return 0, false
}

// OLS regresses y on the factor columns with an intercept. Each factor slice
// must have the same length as y, and the sample must exceed the parameter
// count by at least two so the residual variance is defined.
func OLS(y []float64, factors [][]float64, names []string) (*RegressionResult, error) {
	n := len(y)
	if len(factors) != len(names) {
		return nil, fmt.Errorf("got %d factor columns but %d names", len(factors), len(names))
	}
	for i, f := range factors {
		if len(f) != n {
			return nil, fmt.Errorf("factor %q has %d observations, dependent has %d", names[i], len(f), n)
		}
	}
	k := len(factors) + 1 // parameters including intercept
	if n < k+2 {
		return nil, fmt.Errorf("%w: %d observations for %d parameters", errors.ErrInsufficientData, n, k)
	}

	X := mat.NewDense(n, k, nil)
	for i := 0; i < n; i++ {
		X.Set(i, 0, 1)
		for j, f := range factors {
			X.Set(i, j+1, f[i])
		}
	}

	yVec := mat.NewVecDense(n, nil)
	for i, v := range y {
		yVec.SetVec(i, v)
	}

	var qr mat.QR
	qr.Factorize(X)
	beta := mat.NewVecDense(k, nil)
	if err := qr.SolveVecTo(beta, false, yVec); err != nil {
		return nil, fmt.Errorf("solve least squares: %w", err)
	}

	// Residuals and fit quality.
	fitted := mat.NewVecDense(n, nil)
	fitted.MulVec(X, beta)
	rss := 0.0
	for i := 0; i < n; i++ {
		resid := y[i] - fitted.AtVec(i)
		rss += resid * resid
	}
	meanY := stat.Mean(y, nil)
	tss := 0.0
	for _, v := range y {
		tss += (v - meanY) * (v - meanY)
	}

	r2 := 0.0
	if tss > 0 {
		r2 = 1 - rss/tss
	}
	df := float64(n - k)
	adjR2 := 1 - (1-r2)*float64(n-1)/df

	// Standard errors from sigma^2 (X'X)^{-1}.
	sigma2 := rss / df
	var xtx, xtxInv mat.Dense
	xtx.Mul(X.T(), X)
	if err := xtxInv.Inverse(&xtx); err != nil {
		return nil, fmt.Errorf("invert X'X (collinear factors?): %w", err)
	}

	coefficients := make([]float64, k)
	stdErrors := make([]float64, k)
	tStats := make([]float64, k)
	for j := 0; j < k; j++ {
		coefficients[j] = beta.AtVec(j)
		variance := sigma2 * xtxInv.At(j, j)
		if variance > 0 {
			stdErrors[j] = math.Sqrt(variance)
			tStats[j] = coefficients[j] / stdErrors[j]
		} else {
			stdErrors[j] = 0
			tStats[j] = math.NaN()
		}
	}

	return &RegressionResult{
		FactorNames:  names,
		Coefficients: coefficients,
		StdErrors:    stdErrors,
		TStats:       tStats,
		R2:           r2,
		AdjR2:        adjR2,
		N:            n,
	}, nil
}

// CAPM regresses portfolio excess returns on market excess returns, returning
// the annualizable alpha (per-period intercept) and the market beta.
func CAPM(portfolio, market []float64, riskFree float64) (*RegressionResult, error) {
	if len(portfolio) != len(market) {
		return nil, fmt.Errorf("portfolio has %d observations, market has %d", len(portfolio), len(market))
	}
	excessP := make([]float64, len(portfolio))
	excessM := make([]float64, len(market))
	for i := range portfolio {
		excessP[i] = portfolio[i] - riskFree
		excessM[i] = market[i] - riskFree
	}
	return OLS(excessP, [][]float64{excessM}, []string{"market"})
}
