package dataset

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"
)

// Column names every panel file must carry. All remaining columns are loaded
// as numeric panel columns under their lower-cased header name.
const (
	ColDate   = "date"
	ColSymbol = "symbol"
)

// LoadCSV reads a long-format panel file (one row per date and symbol) and
// pivots it into a Panel. Rows that fail to parse are skipped with a warning
// rather than failing the whole load.
func LoadCSV(path string, logger *slog.Logger) (*Panel, error) {
	if logger == nil {
		logger = slog.Default()
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open panel file: %w", err)
	}
	defer file.Close()

	df := dataframe.ReadCSV(file,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("read CSV %s: %w", filepath.Base(path), df.Err)
	}
	if df.Nrow() == 0 {
		return nil, fmt.Errorf("empty panel file: %s", filepath.Base(path))
	}

	names := make(map[string]string, len(df.Names())) // normalized -> original
	for _, n := range df.Names() {
		names[normalizeColumn(n)] = n
	}
	dateCol, ok := names[ColDate]
	if !ok {
		return nil, fmt.Errorf("panel file missing %q column", ColDate)
	}
	symbolCol, ok := names[ColSymbol]
	if !ok {
		return nil, fmt.Errorf("panel file missing %q column", ColSymbol)
	}

	dates := df.Col(dateCol).Records()
	symbols := df.Col(symbolCol).Records()

	valueCols := make(map[string][]float64)
	for normalized, original := range names {
		if normalized == ColDate || normalized == ColSymbol {
			continue
		}
		valueCols[normalized] = df.Col(original).Float()
	}
	if len(valueCols) == 0 {
		return nil, fmt.Errorf("panel file has no value columns beyond %q and %q", ColDate, ColSymbol)
	}

	observations := make([]Observation, 0, df.Nrow())
	skipped := 0
	for i := 0; i < df.Nrow(); i++ {
		date, err := parseDate(strings.TrimSpace(dates[i]))
		if err != nil {
			logger.Warn("skipping unparsable panel row",
				"file", filepath.Base(path),
				"line", i+2,
				"error", err,
			)
			skipped++
			continue
		}
		symbol := strings.ToUpper(strings.TrimSpace(symbols[i]))
		if symbol == "" {
			logger.Warn("skipping panel row with empty symbol",
				"file", filepath.Base(path),
				"line", i+2,
			)
			skipped++
			continue
		}

		values := make(map[string]float64, len(valueCols))
		for col, floats := range valueCols {
			values[col] = floats[i]
		}
		observations = append(observations, Observation{Date: date, Symbol: symbol, Values: values})
	}

	if len(observations) == 0 {
		return nil, fmt.Errorf("no valid rows in panel file: %s", filepath.Base(path))
	}
	if skipped > 0 {
		logger.Warn("panel load skipped rows",
			"file", filepath.Base(path),
			"skipped", skipped,
			"loaded", len(observations),
		)
	}

	return FromObservations(observations)
}

// LoadXLSX reads a long-format panel from the first sheet of an Excel workbook.
// The first row is treated as the header.
func LoadXLSX(path string, logger *slog.Logger) (*Panel, error) {
	if logger == nil {
		logger = slog.Default()
	}

	wb, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer wb.Close()

	sheet := wb.GetSheetName(0)
	rows, err := wb.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("sheet %q has no data rows", sheet)
	}

	header := rows[0]
	dateIdx, symbolIdx := -1, -1
	valueIdx := make(map[string]int)
	for i, h := range header {
		switch normalized := normalizeColumn(h); normalized {
		case ColDate:
			dateIdx = i
		case ColSymbol:
			symbolIdx = i
		default:
			if normalized != "" {
				valueIdx[normalized] = i
			}
		}
	}
	if dateIdx < 0 || symbolIdx < 0 {
		return nil, fmt.Errorf("sheet %q missing %q or %q column", sheet, ColDate, ColSymbol)
	}

	observations := make([]Observation, 0, len(rows)-1)
	for line, row := range rows[1:] {
		if dateIdx >= len(row) || symbolIdx >= len(row) {
			continue
		}
		date, err := parseDate(strings.TrimSpace(row[dateIdx]))
		if err != nil {
			logger.Warn("skipping unparsable workbook row",
				"file", filepath.Base(path),
				"line", line+2,
				"error", err,
			)
			continue
		}
		symbol := strings.ToUpper(strings.TrimSpace(row[symbolIdx]))
		if symbol == "" {
			continue
		}

		values := make(map[string]float64, len(valueIdx))
		for col, idx := range valueIdx {
			if idx >= len(row) {
				values[col] = math.NaN()
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(row[idx]), 64)
			if err != nil {
				values[col] = math.NaN()
				continue
			}
			values[col] = v
		}
		observations = append(observations, Observation{Date: date, Symbol: symbol, Values: values})
	}

	if len(observations) == 0 {
		return nil, fmt.Errorf("no valid rows in sheet %q", sheet)
	}

	return FromObservations(observations)
}

// FromObservations pivots long-format observations into a Panel. Later
// observations win when the same (date, symbol, column) cell appears twice.
func FromObservations(observations []Observation) (*Panel, error) {
	if len(observations) == 0 {
		return nil, fmt.Errorf("no observations provided")
	}

	dates := make([]time.Time, 0, len(observations))
	symbols := make([]string, 0, len(observations))
	for _, o := range observations {
		if !o.IsValid() {
			continue
		}
		dates = append(dates, o.Date)
		symbols = append(symbols, o.Symbol)
	}
	if len(dates) == 0 {
		return nil, fmt.Errorf("no valid observations provided")
	}

	p := NewPanel(dates, symbols)
	for _, o := range observations {
		if !o.IsValid() {
			continue
		}
		i, ok := p.DateIndex(o.Date)
		if !ok {
			continue
		}
		for col, v := range o.Values {
			if err := p.Set(col, o.Symbol, i, v); err != nil {
				return nil, fmt.Errorf("set %s[%s]: %w", col, o.Symbol, err)
			}
		}
	}

	return p, nil
}

// normalizeColumn lower-cases and trims a header cell so files with mixed
// header casing load the same way.
func normalizeColumn(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// parseDate attempts to parse date strings in the formats seen across the
// supported datasets.
func parseDate(dateStr string) (time.Time, error) {
	dateFormats := []string{
		"2006-01-02",
		"2006/01/02",
		"01/02/2006",
		"2006-01-02 15:04:05",
		"200601",
		"2006-01",
	}

	for _, format := range dateFormats {
		if date, err := time.Parse(format, dateStr); err == nil {
			return date, nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse date: %s", dateStr)
}
