// Command sortrun builds cross-sectional sort portfolios from a panel file and
// writes the bucket return series plus a performance report.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"alphalab/internal/config"
	"alphalab/internal/dataset"
	"alphalab/internal/exporter"
	"alphalab/internal/performance"
	"alphalab/internal/portfolio"
)

func main() {
	panelPath := flag.String("panel", "", "panel file (CSV or XLSX, long format with date and symbol columns)")
	configFile := flag.String("config", "alphalab.yaml", "configuration file")
	signal := flag.String("signal", "", "signal column to sort on")
	momentum := flag.String("momentum", "", "derive momentum signal from close prices, as lookback,skip (e.g. 12,2)")
	buckets := flag.Int("buckets", 0, "number of buckets (default from config)")
	lag := flag.Int("lag", 0, "signal lag in periods (default from config)")
	weighting := flag.String("weighting", "equal", "bucket weighting: equal or value")
	capColumn := flag.String("cap", "market_cap", "market capitalization column for value weighting")
	outPrefix := flag.String("out", "sort", "output file prefix within the reports directory")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := config.NewLogger(cfg.Logging)
	slog.SetDefault(logger)

	paths, err := config.NewPaths(cfg.Paths)
	if err != nil {
		slog.Error("Failed to initialize paths", "error", err)
		os.Exit(1)
	}

	if *panelPath == "" {
		slog.Error("No panel file specified", "hint", "use -panel data/panel.csv")
		os.Exit(1)
	}

	panel, err := loadPanel(*panelPath, logger)
	if err != nil {
		slog.Error("Failed to load panel", "path", *panelPath, "error", err)
		os.Exit(1)
	}
	slog.Info("Loaded panel",
		"symbols", len(panel.Symbols()),
		"periods", panel.Periods(),
		"columns", panel.Columns(),
	)
	reportCoverage(panel)

	// Returns column: derive from close prices unless the panel already has it.
	if !panel.HasColumn("ret") {
		if !panel.HasColumn("close") {
			slog.Error("Panel has neither a ret nor a close column")
			os.Exit(1)
		}
		if err := dataset.SimpleReturns(panel, "close", "ret"); err != nil {
			slog.Error("Failed to derive returns", "error", err)
			os.Exit(1)
		}
	}

	signalColumn := *signal
	if *momentum != "" {
		lookback, skip, err := parseMomentumSpec(*momentum)
		if err != nil {
			slog.Error("Invalid momentum spec", "spec", *momentum, "error", err)
			os.Exit(1)
		}
		signalColumn = fmt.Sprintf("mom_%d_%d", lookback, skip)
		if err := dataset.Momentum(panel, "close", lookback, skip, signalColumn); err != nil {
			slog.Error("Failed to derive momentum signal", "error", err)
			os.Exit(1)
		}
		slog.Info("Derived momentum signal", "column", signalColumn)
	}
	if signalColumn == "" {
		slog.Error("No signal specified", "hint", "use -signal <column> or -momentum <lookback,skip>")
		os.Exit(1)
	}

	sortCfg := portfolio.DefaultSortConfig(signalColumn, "ret")
	sortCfg.Buckets = cfg.Research.Buckets
	sortCfg.SignalLag = cfg.Research.SignalLag
	sortCfg.MinCrossSection = sortCfg.Buckets
	if *buckets > 0 {
		sortCfg.Buckets = *buckets
		sortCfg.MinCrossSection = *buckets
	}
	if *lag > 0 {
		sortCfg.SignalLag = *lag
	}
	if w, err := portfolio.ParseWeighting(*weighting); err != nil {
		slog.Error("Invalid weighting", "error", err)
		os.Exit(1)
	} else {
		sortCfg.Weighting = w
	}
	if sortCfg.Weighting == portfolio.WeightValue {
		sortCfg.CapColumn = *capColumn
		if !panel.HasColumn(*capColumn) {
			slog.Error("Market capitalization column missing", "column", *capColumn)
			os.Exit(1)
		}
	}

	builder, err := portfolio.NewBuilder(sortCfg, logger)
	if err != nil {
		slog.Error("Failed to create sort builder", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	result, err := builder.Build(ctx, panel)
	if err != nil {
		slog.Error("Portfolio sort failed", "error", err)
		os.Exit(1)
	}

	returnsPath := paths.GetReportPath(*outPrefix + "_returns.csv")
	if err := portfolio.SaveToCSV(result, returnsPath); err != nil {
		slog.Error("Failed to save sort returns", "error", err)
		os.Exit(1)
	}
	slog.Info("Saved sort returns", "path", returnsPath)

	workbookPath := paths.GetReportPath(*outPrefix + "_report.xlsx")
	if err := writePerformanceWorkbook(result, cfg.Research, workbookPath); err != nil {
		slog.Error("Failed to write performance workbook", "error", err)
		os.Exit(1)
	}
	slog.Info("Saved performance report", "path", workbookPath, "run_id", result.RunID)
}

// reportCoverage warns about symbols with too many gaps to sort reliably.
func reportCoverage(panel *dataset.Panel) {
	column := "close"
	if !panel.HasColumn(column) {
		if cols := panel.Columns(); len(cols) > 0 {
			column = cols[0]
		}
	}
	report := dataset.AssessQuality(panel, column)
	slog.Info("Panel coverage",
		"column", report.Column,
		"median_coverage", report.MedianCoverage,
	)
	for _, q := range report.PerSymbol {
		if !q.Sufficient {
			slog.Warn("Symbol has thin coverage",
				"symbol", q.Symbol,
				"observed", q.Observed,
				"periods", q.Total,
			)
		}
	}
}

// loadPanel dispatches on the file extension.
func loadPanel(path string, logger *slog.Logger) (*dataset.Panel, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return dataset.LoadXLSX(path, logger)
	default:
		return dataset.LoadCSV(path, logger)
	}
}

func parseMomentumSpec(spec string) (lookback, skip int, err error) {
	parts := strings.Split(spec, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected lookback,skip")
	}
	lookback, err = strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("parse lookback: %w", err)
	}
	skip, err = strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("parse skip: %w", err)
	}
	return lookback, skip, nil
}

// writePerformanceWorkbook summarizes each bucket, the long-short series, and
// the market series into one XLSX report.
func writePerformanceWorkbook(result *portfolio.SortResult, research config.ResearchConfig, path string) error {
	summaryHeaders := []string{
		"Portfolio", "Periods", "MeanReturn", "AnnualizedReturn", "AnnualizedVol",
		"Sharpe", "Sortino", "MaxDrawdown", "HitRate",
	}
	var rows [][]interface{}

	appendSummary := func(name string, returns []float64) {
		s := performance.Summarize(name, returns, research.RiskFreeRate, research.PeriodsPerYear)
		rows = append(rows, []interface{}{
			s.Name, s.Periods, s.MeanReturn, s.AnnualizedReturn, s.AnnualizedVol,
			s.Sharpe, s.Sortino, s.MaxDrawdown, s.HitRate,
		})
	}

	for b := 0; b < result.Config.Buckets; b++ {
		_, returns := result.BucketSeries(b)
		appendSummary(fmt.Sprintf("Bucket%d", b+1), returns)
	}
	_, longShort := result.LongShortSeries()
	appendSummary("LongShort", longShort)
	_, market := result.MarketSeries()
	appendSummary("Market", market)

	lsDates, lsReturns := result.LongShortSeries()
	wealth := performance.CumulativeWealth(lsReturns)
	lsRows := make([][]interface{}, len(lsDates))
	for i := range lsDates {
		lsRows[i] = []interface{}{lsDates[i].Format("2006-01-02"), lsReturns[i], wealth[i]}
	}

	return exporter.WriteWorkbook(path, result.RunID, []exporter.Sheet{
		{Name: "Summary", Headers: summaryHeaders, Rows: rows},
		{Name: "LongShort", Headers: []string{"Date", "Return", "Wealth"}, Rows: lsRows},
	})
}
