package portfolio

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"alphalab/internal/dataset"
	"alphalab/internal/errors"
)

// Builder forms bucket portfolios from cross-sectional sorts over a panel.
type Builder struct {
	cfg    SortConfig
	logger *slog.Logger
}

// NewBuilder creates a builder for the given sort configuration.
func NewBuilder(cfg SortConfig, logger *slog.Logger) (*Builder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate sort config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{cfg: cfg, logger: logger}, nil
}

// Build runs the sort over every period of the panel.
//
// For each holding period t it ranks the eligible cross-section by the signal
// observed at t-SignalLag, splits it into buckets at the breakpoints, weights
// holdings equally or by capitalization observed at t-CapLag, and aggregates
// the period-t returns of each bucket. Periods whose eligible universe is
// smaller than MinCrossSection are skipped with a warning.
func (b *Builder) Build(ctx context.Context, p *dataset.Panel) (*SortResult, error) {
	start := time.Now()
	cfg := b.cfg

	b.logger.InfoContext(ctx, "starting portfolio sort",
		"signal", cfg.SignalColumn,
		"returns", cfg.ReturnColumn,
		"buckets", cfg.Buckets,
		"weighting", cfg.Weighting.String(),
		"signal_lag", cfg.SignalLag,
		"periods", p.Periods(),
	)

	if err := b.checkColumns(p); err != nil {
		return nil, err
	}

	result := &SortResult{
		Config: cfg,
		RunID:  uuid.New().String(),
	}

	firstPeriod := cfg.SignalLag
	if cfg.Weighting == WeightValue && cfg.CapLag > firstPeriod {
		firstPeriod = cfg.CapLag
	}

	calendar := p.Calendar()
	skipped := 0
	for t := firstPeriod; t < p.Periods(); t++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("sort cancelled at period %d: %w", t, ctx.Err())
		default:
		}

		pr, err := b.buildPeriod(p, t)
		if err != nil {
			if errors.IsInsufficientData(err) {
				b.logger.WarnContext(ctx, "skipping period with thin cross-section",
					"date", calendar[t].Format("2006-01-02"),
					"error", err,
				)
				skipped++
				continue
			}
			return nil, fmt.Errorf("build period %s: %w", calendar[t].Format("2006-01-02"), err)
		}
		result.Periods = append(result.Periods, pr)
	}

	if len(result.Periods) == 0 {
		return nil, fmt.Errorf("%w: no period had an eligible cross-section of at least %d securities",
			errors.ErrInsufficientData, cfg.MinCrossSection)
	}

	b.logger.InfoContext(ctx, "portfolio sort completed",
		"run_id", result.RunID,
		"periods_built", len(result.Periods),
		"periods_skipped", skipped,
		"duration", time.Since(start),
	)

	return result, nil
}

func (b *Builder) checkColumns(p *dataset.Panel) error {
	required := []string{b.cfg.SignalColumn, b.cfg.ReturnColumn}
	if b.cfg.Weighting == WeightValue {
		required = append(required, b.cfg.CapColumn)
	}
	for _, col := range required {
		if !p.HasColumn(col) {
			return fmt.Errorf("%w: %q", errors.ErrMissingColumn, col)
		}
	}
	return nil
}

// buildPeriod runs the sort for one holding period t.
func (b *Builder) buildPeriod(p *dataset.Panel, t int) (PeriodResult, error) {
	cfg := b.cfg

	signals := p.CrossSection(cfg.SignalColumn, t-cfg.SignalLag)
	returns := p.CrossSection(cfg.ReturnColumn, t)

	var caps map[string]float64
	if cfg.Weighting == WeightValue {
		caps = p.CrossSection(cfg.CapColumn, t-cfg.CapLag)
	}

	// A security enters the cross-section only with a signal, a holding return,
	// and (under value weighting) a positive lagged capitalization. Missing
	// inputs exclude, never default.
	type member struct {
		symbol string
		signal float64
		ret    float64
		weight float64
	}
	members := make([]member, 0, len(signals))
	for symbol, signal := range signals {
		ret, ok := returns[symbol]
		if !ok {
			continue
		}
		weight := 1.0
		if cfg.Weighting == WeightValue {
			cap, ok := caps[symbol]
			if !ok || cap <= 0 {
				continue
			}
			weight = cap
		}
		members = append(members, member{symbol: symbol, signal: signal, ret: ret, weight: weight})
	}

	if len(members) < cfg.MinCrossSection {
		return PeriodResult{}, fmt.Errorf("%w: %d eligible securities, need %d",
			errors.ErrInsufficientData, len(members), cfg.MinCrossSection)
	}

	signalValues := make([]float64, len(members))
	for i, m := range members {
		signalValues[i] = m.signal
	}
	cuts, err := Breakpoints(signalValues, cfg.Buckets)
	if err != nil {
		return PeriodResult{}, fmt.Errorf("compute breakpoints: %w", err)
	}

	weightSums := make([]float64, cfg.Buckets)
	returnSums := make([]float64, cfg.Buckets)
	counts := make([]int, cfg.Buckets)
	marketWeight, marketReturn := 0.0, 0.0
	for _, m := range members {
		bucket := AssignBucket(m.signal, cuts)
		weightSums[bucket] += m.weight
		returnSums[bucket] += m.weight * m.ret
		counts[bucket]++
		marketWeight += m.weight
		marketReturn += m.weight * m.ret
	}

	bucketReturns := make([]float64, cfg.Buckets)
	for i := range bucketReturns {
		if weightSums[i] > 0 {
			bucketReturns[i] = returnSums[i] / weightSums[i]
		} else {
			bucketReturns[i] = math.NaN()
		}
	}

	longShort := math.NaN()
	top, bottom := bucketReturns[cfg.Buckets-1], bucketReturns[0]
	if !math.IsNaN(top) && !math.IsNaN(bottom) {
		longShort = top - bottom
	}

	return PeriodResult{
		Date:          p.Calendar()[t],
		Universe:      len(members),
		Breakpoints:   cuts,
		BucketReturns: bucketReturns,
		BucketCounts:  counts,
		LongShort:     longShort,
		MarketReturn:  marketReturn / marketWeight,
	}, nil
}
