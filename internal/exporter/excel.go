package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// Sheet is one worksheet of a report workbook.
type Sheet struct {
	Name    string
	Headers []string
	Rows    [][]interface{}
}

// WriteWorkbook writes a multi-sheet XLSX report. runID is stamped into the
// document properties so a workbook can be traced back to the run that
// produced it.
func WriteWorkbook(path, runID string, sheets []Sheet) error {
	if len(sheets) == 0 {
		return fmt.Errorf("no sheets to write")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	wb := excelize.NewFile()
	defer wb.Close()

	for i, sheet := range sheets {
		if sheet.Name == "" {
			return fmt.Errorf("sheet %d has no name", i)
		}
		if i == 0 {
			// The default sheet becomes the first report sheet.
			if err := wb.SetSheetName("Sheet1", sheet.Name); err != nil {
				return fmt.Errorf("rename first sheet: %w", err)
			}
		} else {
			if _, err := wb.NewSheet(sheet.Name); err != nil {
				return fmt.Errorf("create sheet %q: %w", sheet.Name, err)
			}
		}

		for col, header := range sheet.Headers {
			cell, err := excelize.CoordinatesToCellName(col+1, 1)
			if err != nil {
				return fmt.Errorf("header cell for %q: %w", sheet.Name, err)
			}
			if err := wb.SetCellValue(sheet.Name, cell, header); err != nil {
				return fmt.Errorf("write header in %q: %w", sheet.Name, err)
			}
		}

		for row, values := range sheet.Rows {
			for col, v := range values {
				cell, err := excelize.CoordinatesToCellName(col+1, row+2)
				if err != nil {
					return fmt.Errorf("cell for %q: %w", sheet.Name, err)
				}
				if err := wb.SetCellValue(sheet.Name, cell, v); err != nil {
					return fmt.Errorf("write cell in %q: %w", sheet.Name, err)
				}
			}
		}
	}

	if runID != "" {
		if err := wb.SetDocProps(&excelize.DocProperties{Identifier: runID}); err != nil {
			return fmt.Errorf("set document properties: %w", err)
		}
	}

	if err := wb.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}

	slog.Info("wrote report workbook",
		slog.String("path", path),
		slog.Int("sheets", len(sheets)),
		slog.String("run_id", runID))

	return nil
}
