package dataset

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// SeriesTable is a wide-format table of date-indexed series, one column per
// series. It is the shape of factor files and of saved portfolio returns,
// where a single date identifies the whole row.
type SeriesTable struct {
	Dates   []time.Time
	Names   []string
	Columns map[string][]float64
}

// LoadSeriesCSV reads a wide-format CSV with a date column and one numeric
// column per series. Column names are lower-cased; blank or unparsable cells
// load as NaN. Rows are sorted by date.
func LoadSeriesCSV(path string, logger *slog.Logger) (*SeriesTable, error) {
	if logger == nil {
		logger = slog.Default()
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open series file: %w", err)
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
		return nil, fmt.Errorf("empty series file: %s", filepath.Base(path))
	}

	names := make(map[string]string, len(df.Names()))
	for _, n := range df.Names() {
		names[normalizeColumn(n)] = n
	}
	dateCol, ok := names[ColDate]
	if !ok {
		return nil, fmt.Errorf("series file missing %q column", ColDate)
	}

	dateStrs := df.Col(dateCol).Records()
	valueCols := make(map[string][]float64, len(names)-1)
	order := make([]string, 0, len(names)-1)
	for normalized, original := range names {
		if normalized == ColDate {
			continue
		}
		valueCols[normalized] = df.Col(original).Float()
		order = append(order, normalized)
	}
	sort.Strings(order)
	if len(valueCols) == 0 {
		return nil, fmt.Errorf("series file has no value columns beyond %q", ColDate)
	}

	type row struct {
		date   time.Time
		values []float64
	}
	rows := make([]row, 0, df.Nrow())
	skipped := 0
	for i := 0; i < df.Nrow(); i++ {
		date, err := parseDate(strings.TrimSpace(dateStrs[i]))
		if err != nil {
			logger.Warn("skipping unparsable series row",
				"file", filepath.Base(path),
				"line", i+2,
				"error", err,
			)
			skipped++
			continue
		}
		values := make([]float64, len(order))
		for j, name := range order {
			values[j] = valueCols[name][i]
		}
		rows = append(rows, row{date: date, values: values})
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no valid rows in series file: %s", filepath.Base(path))
	}
	if skipped > 0 {
		logger.Warn("series load skipped rows",
			"file", filepath.Base(path),
			"skipped", skipped,
			"loaded", len(rows),
		)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].date.Before(rows[j].date) })

	t := &SeriesTable{
		Dates:   make([]time.Time, len(rows)),
		Names:   order,
		Columns: make(map[string][]float64, len(order)),
	}
	for _, name := range order {
		t.Columns[name] = make([]float64, len(rows))
	}
	for i, r := range rows {
		t.Dates[i] = r.date
		for j, name := range order {
			t.Columns[name][i] = r.values[j]
		}
	}
	return t, nil
}

// HasColumn reports whether the named series exists.
func (t *SeriesTable) HasColumn(name string) bool {
	_, ok := t.Columns[normalizeColumn(name)]
	return ok
}

// Column returns the named series, or nil when absent.
func (t *SeriesTable) Column(name string) []float64 {
	return t.Columns[normalizeColumn(name)]
}

// AlignSeries intersects two tables on date and returns the rows where the
// named columns are all finite in both. left names come from t, right names
// from other. The result keeps date order.
func (t *SeriesTable) AlignSeries(left []string, other *SeriesTable, right []string) ([]time.Time, [][]float64, [][]float64, error) {
	for _, name := range left {
		if !t.HasColumn(name) {
			return nil, nil, nil, fmt.Errorf("missing column %q", name)
		}
	}
	for _, name := range right {
		if !other.HasColumn(name) {
			return nil, nil, nil, fmt.Errorf("missing column %q", name)
		}
	}

	otherIdx := make(map[time.Time]int, len(other.Dates))
	for i, d := range other.Dates {
		otherIdx[d] = i
	}

	dates := make([]time.Time, 0, len(t.Dates))
	leftOut := make([][]float64, len(left))
	rightOut := make([][]float64, len(right))
	for i, d := range t.Dates {
		j, ok := otherIdx[d]
		if !ok {
			continue
		}
		finite := true
		for _, name := range left {
			if math.IsNaN(t.Column(name)[i]) {
				finite = false
				break
			}
		}
		if finite {
			for _, name := range right {
				if math.IsNaN(other.Column(name)[j]) {
					finite = false
					break
				}
			}
		}
		if !finite {
			continue
		}
		dates = append(dates, d)
		for k, name := range left {
			leftOut[k] = append(leftOut[k], t.Column(name)[i])
		}
		for k, name := range right {
			rightOut[k] = append(rightOut[k], other.Column(name)[j])
		}
	}
	return dates, leftOut, rightOut, nil
}
