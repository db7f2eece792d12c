// Command factorreg regresses a portfolio return series on factor returns and
// writes the fitted loadings, alpha, and fit statistics.
package main

import (
	"flag"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"alphalab/internal/config"
	"alphalab/internal/dataset"
	"alphalab/internal/exporter"
	"alphalab/internal/performance"
)

func main() {
	portfolioPath := flag.String("portfolio", "", "portfolio return CSV (date column plus return columns)")
	column := flag.String("column", "longshort", "portfolio column to explain")
	factorsPath := flag.String("factors", "", "factor return CSV (date column plus one column per factor)")
	factorList := flag.String("cols", "", "comma-separated factor columns (default: every non-date column)")
	capm := flag.Bool("capm", false, "run a single-factor CAPM instead of a multi-factor regression")
	market := flag.String("market", "market", "market column for -capm")
	configFile := flag.String("config", "alphalab.yaml", "configuration file")
	outPrefix := flag.String("out", "factorreg", "output file prefix within the reports directory")
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

	if *portfolioPath == "" || *factorsPath == "" {
		slog.Error("Both -portfolio and -factors are required")
		os.Exit(1)
	}

	portfolios, err := dataset.LoadSeriesCSV(*portfolioPath, logger)
	if err != nil {
		slog.Error("Failed to load portfolio returns", "path", *portfolioPath, "error", err)
		os.Exit(1)
	}
	factors, err := dataset.LoadSeriesCSV(*factorsPath, logger)
	if err != nil {
		slog.Error("Failed to load factor returns", "path", *factorsPath, "error", err)
		os.Exit(1)
	}

	factorNames := factors.Names
	if *capm {
		factorNames = []string{strings.ToLower(strings.TrimSpace(*market))}
	} else if *factorList != "" {
		factorNames = nil
		for _, name := range strings.Split(*factorList, ",") {
			factorNames = append(factorNames, strings.ToLower(strings.TrimSpace(name)))
		}
	}

	dates, left, right, err := portfolios.AlignSeries([]string{strings.ToLower(*column)}, factors, factorNames)
	if err != nil {
		slog.Error("Failed to align portfolio and factor series", "error", err)
		os.Exit(1)
	}
	slog.Info("Aligned series",
		"column", *column,
		"factors", factorNames,
		"observations", len(dates),
	)

	var result *performance.RegressionResult
	if *capm {
		result, err = performance.CAPM(left[0], right[0], cfg.Research.RiskFreeRate)
	} else {
		result, err = performance.OLS(left[0], right, factorNames)
	}
	if err != nil {
		slog.Error("Regression failed", "error", err)
		os.Exit(1)
	}

	slog.Info("Regression fitted",
		"alpha", result.Alpha(),
		"alpha_t", result.AlphaTStat(),
		"r2", result.R2,
		"adj_r2", result.AdjR2,
		"n", result.N,
	)

	runID := uuid.New().String()
	if err := writeRegressionReport(paths, *outPrefix, runID, *column, result); err != nil {
		slog.Error("Failed to write regression report", "error", err)
		os.Exit(1)
	}
	slog.Info("Saved regression report", "prefix", *outPrefix, "run_id", runID)
}

// writeRegressionReport writes the loadings as CSV and a two-sheet XLSX report.
func writeRegressionReport(paths *config.Paths, prefix, runID, column string, result *performance.RegressionResult) error {
	names := append([]string{"alpha"}, result.FactorNames...)

	records := make([][]string, len(names))
	coefRows := make([][]interface{}, len(names))
	for i, name := range names {
		records[i] = []string{
			name,
			strconv.FormatFloat(result.Coefficients[i], 'f', -1, 64),
			strconv.FormatFloat(result.StdErrors[i], 'f', -1, 64),
			strconv.FormatFloat(result.TStats[i], 'f', -1, 64),
		}
		coefRows[i] = []interface{}{name, result.Coefficients[i], result.StdErrors[i], result.TStats[i]}
	}

	writer := exporter.NewCSVWriter(paths)
	headers := []string{"Term", "Coefficient", "StdError", "TStat"}
	if err := writer.WriteSimpleCSV(prefix+"_loadings.csv", headers, records); err != nil {
		return err
	}

	fitRows := [][]interface{}{
		{"Portfolio", column},
		{"Observations", result.N},
		{"R2", result.R2},
		{"AdjR2", result.AdjR2},
	}
	return exporter.WriteWorkbook(paths.GetReportPath(prefix+"_report.xlsx"), runID, []exporter.Sheet{
		{Name: "Loadings", Headers: headers, Rows: coefRows},
		{Name: "Fit", Headers: []string{"Statistic", "Value"}, Rows: fitRows},
	})
}
