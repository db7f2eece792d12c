package portfolio

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
)

// SaveToCSV writes a sort result as one row per period: date, universe size,
// each bucket's return and count, the long-short return, and the market return.
func SaveToCSV(result *SortResult, path string) error {
	if result == nil || len(result.Periods) == 0 {
		return fmt.Errorf("no periods to save")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	buckets := result.Config.Buckets
	header := []string{"Date", "Universe"}
	for i := 1; i <= buckets; i++ {
		header = append(header, fmt.Sprintf("Bucket%d", i))
	}
	for i := 1; i <= buckets; i++ {
		header = append(header, fmt.Sprintf("Count%d", i))
	}
	header = append(header, "LongShort", "Market")
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, pr := range result.Periods {
		record := []string{
			pr.Date.Format("2006-01-02"),
			strconv.Itoa(pr.Universe),
		}
		for _, r := range pr.BucketReturns {
			record = append(record, formatReturn(r))
		}
		for _, c := range pr.BucketCounts {
			record = append(record, strconv.Itoa(c))
		}
		record = append(record, formatReturn(pr.LongShort), formatReturn(pr.MarketReturn))
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write record for %s: %w", pr.Date.Format("2006-01-02"), err)
		}
	}

	return writer.Error()
}

// formatReturn renders a return with enough precision for downstream analysis;
// NaN cells are left empty so spreadsheet tools treat them as missing.
func formatReturn(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', 8, 64)
}
