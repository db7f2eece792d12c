// Command mvopt solves a mean-variance allocation over the symbols of a panel
// file and writes the resulting weights.
package main

import (
	"flag"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"

	"alphalab/internal/config"
	"alphalab/internal/dataset"
	"alphalab/internal/exporter"
	"alphalab/internal/optimization"
)

func main() {
	panelPath := flag.String("panel", "", "panel file (CSV or XLSX, long format with date and symbol columns)")
	symbolList := flag.String("symbols", "", "comma-separated symbols to allocate over (default: all)")
	strategy := flag.String("strategy", "max_sharpe", "objective: min_volatility, max_sharpe, or efficient_return")
	target := flag.Float64("target", 0, "per-period target return for efficient_return")
	minWeight := flag.Float64("min", 0, "minimum weight per asset")
	maxWeight := flag.Float64("max", 1, "maximum weight per asset")
	shrink := flag.Bool("shrink", true, "apply Ledoit-Wolf shrinkage to the covariance matrix")
	configFile := flag.String("config", "alphalab.yaml", "configuration file")
	outPrefix := flag.String("out", "mvopt", "output file prefix within the reports directory")
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

	symbols := panel.Symbols()
	if *symbolList != "" {
		symbols = nil
		for _, s := range strings.Split(*symbolList, ",") {
			symbols = append(symbols, strings.ToUpper(strings.TrimSpace(s)))
		}
	}

	returns, periods := alignReturns(panel, symbols)
	slog.Info("Aligned return series",
		"symbols", len(symbols),
		"periods", periods,
	)

	cov, err := optimization.SampleCovariance(returns, symbols)
	if err != nil {
		slog.Error("Failed to estimate covariance", "error", err)
		os.Exit(1)
	}
	if *shrink {
		shrunk, intensity, err := optimization.LedoitWolfShrinkage(cov)
		if err != nil {
			slog.Error("Covariance shrinkage failed", "error", err)
			os.Exit(1)
		}
		cov = shrunk
		slog.Info("Applied covariance shrinkage", "intensity", intensity)
	}

	expected := make(map[string]float64, len(symbols))
	for _, symbol := range symbols {
		expected[symbol] = stat.Mean(returns[symbol], nil)
	}

	parsed, err := optimization.ParseStrategy(*strategy)
	if err != nil {
		slog.Error("Invalid strategy", "error", err)
		os.Exit(1)
	}
	optCfg := optimization.Config{
		Strategy:     parsed,
		RiskFree:     cfg.Research.RiskFreeRate,
		TargetReturn: *target,
		MinWeight:    *minWeight,
		MaxWeight:    *maxWeight,
	}

	result, err := optimization.NewOptimizer(optCfg, logger).Optimize(expected, cov, symbols)
	if err != nil {
		slog.Error("Optimization failed", "error", err)
		os.Exit(1)
	}

	runID := uuid.New().String()
	if err := writeWeights(paths, *outPrefix, runID, symbols, result); err != nil {
		slog.Error("Failed to save weights", "error", err)
		os.Exit(1)
	}
	slog.Info("Saved optimized weights",
		"strategy", string(result.Strategy),
		"expected_return", result.ExpectedReturn,
		"volatility", result.Volatility,
		"sharpe", result.Sharpe,
		"run_id", runID,
	)
}

func loadPanel(path string, logger *slog.Logger) (*dataset.Panel, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return dataset.LoadXLSX(path, logger)
	default:
		return dataset.LoadCSV(path, logger)
	}
}

// alignReturns extracts per-symbol return series over the periods where every
// symbol has a finite return, so the covariance estimate sees a balanced sample.
func alignReturns(panel *dataset.Panel, symbols []string) (map[string][]float64, int) {
	series := make(map[string][]float64, len(symbols))
	for _, symbol := range symbols {
		series[symbol] = panel.Series("ret", symbol)
	}

	keep := make([]int, 0, panel.Periods())
	for t := 0; t < panel.Periods(); t++ {
		complete := true
		for _, symbol := range symbols {
			s := series[symbol]
			if s == nil || math.IsNaN(s[t]) {
				complete = false
				break
			}
		}
		if complete {
			keep = append(keep, t)
		}
	}

	aligned := make(map[string][]float64, len(symbols))
	for _, symbol := range symbols {
		out := make([]float64, len(keep))
		for i, t := range keep {
			out[i] = series[symbol][t]
		}
		aligned[symbol] = out
	}
	return aligned, len(keep)
}

// writeWeights writes the solved weights as CSV and a summary workbook.
func writeWeights(paths *config.Paths, prefix, runID string, symbols []string, result *optimization.Result) error {
	records := make([][]string, len(symbols))
	rows := make([][]interface{}, len(symbols))
	for i, symbol := range symbols {
		w := result.Weights[symbol]
		records[i] = []string{symbol, strconv.FormatFloat(w, 'f', -1, 64)}
		rows[i] = []interface{}{symbol, w}
	}

	writer := exporter.NewCSVWriter(paths)
	if err := writer.WriteSimpleCSV(prefix+"_weights.csv", []string{"Symbol", "Weight"}, records); err != nil {
		return err
	}

	summaryRows := [][]interface{}{
		{"Strategy", string(result.Strategy)},
		{"ExpectedReturn", result.ExpectedReturn},
		{"Volatility", result.Volatility},
		{"Sharpe", result.Sharpe},
	}
	return exporter.WriteWorkbook(paths.GetReportPath(prefix+"_report.xlsx"), runID, []exporter.Sheet{
		{Name: "Weights", Headers: []string{"Symbol", "Weight"}, Rows: rows},
		{Name: "Summary", Headers: []string{"Statistic", "Value"}, Rows: summaryRows},
	})
}
