package optimization

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	"alphalab/internal/errors"
)

// Strategy selects the mean-variance objective.
type Strategy string

const (
	// StrategyMinVolatility minimizes w'Σw.
	StrategyMinVolatility Strategy = "min_volatility"
	// StrategyMaxSharpe maximizes (μ'w - rf) / sqrt(w'Σw).
	StrategyMaxSharpe Strategy = "max_sharpe"
	// StrategyEfficientReturn minimizes variance subject to μ'w = target.
	StrategyEfficientReturn Strategy = "efficient_return"
)

// ParseStrategy parses a strategy name.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case StrategyMinVolatility:
		return StrategyMinVolatility, nil
	case StrategyMaxSharpe:
		return StrategyMaxSharpe, nil
	case StrategyEfficientReturn:
		return StrategyEfficientReturn, nil
	default:
		return "", fmt.Errorf("unknown strategy: %q", s)
	}
}

// Config describes one optimization problem.
type Config struct {
	Strategy     Strategy
	RiskFree     float64 // per-period risk-free rate, used by max_sharpe
	TargetReturn float64 // per-period target, used by efficient_return
	MinWeight    float64 // lower bound per asset (0 forbids short positions)
	MaxWeight    float64 // upper bound per asset
}

// DefaultConfig returns a long-only max-Sharpe configuration.
func DefaultConfig() Config {
	return Config{
		Strategy:  StrategyMaxSharpe,
		MinWeight: 0,
		MaxWeight: 1,
	}
}

// Validate checks bound consistency against the full-investment constraint.
func (c Config) Validate(assets int) error {
	if assets == 0 {
		return fmt.Errorf("%w: no assets", errors.ErrInvalidConfig)
	}
	if c.MaxWeight < c.MinWeight {
		return fmt.Errorf("%w: max weight %.4f below min weight %.4f", errors.ErrInvalidConfig, c.MaxWeight, c.MinWeight)
	}
	if c.MinWeight*float64(assets) > 1 {
		return fmt.Errorf("%w: min weight %.4f infeasible for %d assets", errors.ErrInvalidConfig, c.MinWeight, assets)
	}
	if c.MaxWeight*float64(assets) < 1 {
		return fmt.Errorf("%w: max weight %.4f infeasible for %d assets", errors.ErrInvalidConfig, c.MaxWeight, assets)
	}
	return nil
}

// Result holds the solved portfolio.
type Result struct {
	Weights        map[string]float64 `json:"weights"`
	ExpectedReturn float64            `json:"expected_return"`
	Volatility     float64            `json:"volatility"`
	Sharpe         float64            `json:"sharpe"`
	Strategy       Strategy           `json:"strategy"`
}

// Optimizer solves mean-variance problems with box bounds and the
// full-investment constraint, using a penalty formulation.
type Optimizer struct {
	cfg    Config
	logger *slog.Logger
}

// NewOptimizer creates an optimizer with the given configuration.
func NewOptimizer(cfg Config, logger *slog.Logger) *Optimizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Optimizer{cfg: cfg, logger: logger}
}

// penaltyWeight scales the quadratic penalties that stand in for the equality
// constraints. Large enough to dominate the raw objectives on return-scale data.
const penaltyWeight = 1000.0

// Optimize solves for weights over the given symbols. expectedReturns is
// keyed by symbol and cov is ordered like symbols.
func (o *Optimizer) Optimize(expectedReturns map[string]float64, cov [][]float64, symbols []string) (*Result, error) {
	n := len(symbols)
	if err := o.cfg.Validate(n); err != nil {
		return nil, err
	}
	if len(cov) != n {
		return nil, fmt.Errorf("covariance matrix size %d does not match %d symbols", len(cov), n)
	}

	mu := make([]float64, n)
	for i, symbol := range symbols {
		r, ok := expectedReturns[symbol]
		if !ok {
			return nil, fmt.Errorf("missing expected return for symbol %s", symbol)
		}
		mu[i] = r
	}

	sigma := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		if len(cov[i]) != n {
			return nil, fmt.Errorf("covariance matrix row %d has %d columns, expected %d", i, len(cov[i]), n)
		}
		for j := 0; j < n; j++ {
			sigma.Set(i, j, cov[i][j])
		}
	}

	o.logger.Info("solving mean-variance problem",
		"strategy", string(o.cfg.Strategy),
		"assets", n,
		"min_weight", o.cfg.MinWeight,
		"max_weight", o.cfg.MaxWeight,
	)

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			w := o.projectToBounds(x)
			ret, variance := portfolioMoments(w, mu, sigma)

			var obj float64
			switch o.cfg.Strategy {
			case StrategyMinVolatility:
				obj = variance
			case StrategyMaxSharpe:
				sd := math.Sqrt(math.Max(variance, 1e-10))
				obj = -(ret - o.cfg.RiskFree) / sd
			case StrategyEfficientReturn:
				obj = variance
				diff := ret - o.cfg.TargetReturn
				obj += penaltyWeight * diff * diff
			}

			sum := 0.0
			for _, wi := range w {
				sum += wi
			}
			obj += penaltyWeight * (sum - 1) * (sum - 1)
			return obj
		},
	}

	initial := make([]float64, n)
	for i := range initial {
		initial[i] = 1.0 / float64(n)
	}

	result, err := optimize.Minimize(problem, initial, &optimize.Settings{}, &optimize.NelderMead{})
	if err != nil {
		return nil, fmt.Errorf("minimize: %w", err)
	}
	if !converged(result.Status) {
		return nil, fmt.Errorf("%w: status=%v", errors.ErrNotConverged, result.Status)
	}

	weights := o.projectToBounds(result.X)
	normalize(weights)

	ret, variance := portfolioMoments(weights, mu, sigma)
	sd := math.Sqrt(math.Max(variance, 0))

	out := &Result{
		Weights:        make(map[string]float64, n),
		ExpectedReturn: ret,
		Volatility:     sd,
		Strategy:       o.cfg.Strategy,
	}
	if sd > 0 {
		out.Sharpe = (ret - o.cfg.RiskFree) / sd
	}
	for i, symbol := range symbols {
		out.Weights[symbol] = weights[i]
	}

	o.logger.Info("mean-variance problem solved",
		"expected_return", ret,
		"volatility", sd,
		"sharpe", out.Sharpe,
	)

	return out, nil
}

func (o *Optimizer) projectToBounds(x []float64) []float64 {
	w := make([]float64, len(x))
	for i, v := range x {
		w[i] = math.Max(o.cfg.MinWeight, math.Min(o.cfg.MaxWeight, v))
	}
	return w
}

func converged(status optimize.Status) bool {
	switch status {
	case optimize.Success, optimize.FunctionConvergence, optimize.GradientThreshold:
		return true
	default:
		return false
	}
}

// portfolioMoments returns μ'w and w'Σw.
func portfolioMoments(w, mu []float64, sigma *mat.Dense) (ret, variance float64) {
	n := len(w)
	for i := 0; i < n; i++ {
		ret += mu[i] * w[i]
		for j := 0; j < n; j++ {
			variance += w[i] * w[j] * sigma.At(i, j)
		}
	}
	return ret, variance
}

func normalize(w []float64) {
	sum := 0.0
	for _, v := range w {
		sum += v
	}
	if sum <= 0 {
		return
	}
	for i := range w {
		w[i] /= sum
	}
}
