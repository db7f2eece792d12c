package dataset

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Observation represents a single (date, symbol) row of a long-format panel file.
// Values holds the numeric columns keyed by their lower-cased header name.
type Observation struct {
	Date   time.Time
	Symbol string
	Values map[string]float64
}

// IsValid checks that the observation carries the minimum required identity fields.
func (o Observation) IsValid() bool {
	return o.Symbol != "" && !o.Date.IsZero() && len(o.Values) > 0
}

// Panel is a date-aligned collection of per-symbol series. Every column stores
// one value per calendar period and symbol; math.NaN marks a missing value.
// The calendar is sorted ascending and shared by all columns, which is what
// makes cross-sectional operations (breakpoints, ranking) well defined.
type Panel struct {
	calendar []time.Time
	symbols  []string
	dateIdx  map[time.Time]int
	columns  map[string]map[string][]float64
}

// NewPanel creates an empty panel over the given calendar and symbol universe.
// Dates are sorted and de-duplicated; symbols are sorted for deterministic output.
func NewPanel(dates []time.Time, symbols []string) *Panel {
	dateSet := make(map[time.Time]bool, len(dates))
	for _, d := range dates {
		dateSet[d] = true
	}
	calendar := make([]time.Time, 0, len(dateSet))
	for d := range dateSet {
		calendar = append(calendar, d)
	}
	sort.Slice(calendar, func(i, j int) bool { return calendar[i].Before(calendar[j]) })

	symSet := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		symSet[s] = true
	}
	uniq := make([]string, 0, len(symSet))
	for s := range symSet {
		uniq = append(uniq, s)
	}
	sort.Strings(uniq)

	dateIdx := make(map[time.Time]int, len(calendar))
	for i, d := range calendar {
		dateIdx[d] = i
	}

	return &Panel{
		calendar: calendar,
		symbols:  uniq,
		dateIdx:  dateIdx,
		columns:  make(map[string]map[string][]float64),
	}
}

// Calendar returns the sorted trading calendar shared by all columns.
func (p *Panel) Calendar() []time.Time {
	return p.calendar
}

// Symbols returns the sorted symbol universe.
func (p *Panel) Symbols() []string {
	return p.symbols
}

// Periods returns the number of calendar periods in the panel.
func (p *Panel) Periods() int {
	return len(p.calendar)
}

// Columns returns the sorted names of all columns present in the panel.
func (p *Panel) Columns() []string {
	names := make([]string, 0, len(p.columns))
	for name := range p.columns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasColumn reports whether the named column exists.
func (p *Panel) HasColumn(name string) bool {
	_, ok := p.columns[name]
	return ok
}

// DateIndex returns the calendar index of the given date.
func (p *Panel) DateIndex(date time.Time) (int, bool) {
	i, ok := p.dateIdx[date]
	return i, ok
}

// ensureColumn creates the column map and NaN-filled series on first use.
func (p *Panel) ensureColumn(name string) map[string][]float64 {
	col, ok := p.columns[name]
	if !ok {
		col = make(map[string][]float64, len(p.symbols))
		p.columns[name] = col
	}
	return col
}

func (p *Panel) ensureSeries(col map[string][]float64, symbol string) []float64 {
	s, ok := col[symbol]
	if !ok {
		s = make([]float64, len(p.calendar))
		for i := range s {
			s[i] = math.NaN()
		}
		col[symbol] = s
	}
	return s
}

// Set assigns a single value for (column, symbol, period).
func (p *Panel) Set(column, symbol string, period int, value float64) error {
	if period < 0 || period >= len(p.calendar) {
		return fmt.Errorf("period %d out of range [0,%d)", period, len(p.calendar))
	}
	col := p.ensureColumn(column)
	s := p.ensureSeries(col, symbol)
	s[period] = value
	return nil
}

// SetSeries assigns a full per-symbol series for a column. The series length
// must match the panel calendar.
func (p *Panel) SetSeries(column, symbol string, values []float64) error {
	if len(values) != len(p.calendar) {
		return fmt.Errorf("series length %d does not match calendar length %d", len(values), len(p.calendar))
	}
	col := p.ensureColumn(column)
	s := make([]float64, len(values))
	copy(s, values)
	col[symbol] = s
	return nil
}

// Value returns the value at (column, symbol, period), or NaN when absent.
func (p *Panel) Value(column, symbol string, period int) float64 {
	col, ok := p.columns[column]
	if !ok {
		return math.NaN()
	}
	s, ok := col[symbol]
	if !ok || period < 0 || period >= len(s) {
		return math.NaN()
	}
	return s[period]
}

// Series returns a copy of the per-symbol series for a column, or nil when the
// column or symbol is absent.
func (p *Panel) Series(column, symbol string) []float64 {
	col, ok := p.columns[column]
	if !ok {
		return nil
	}
	s, ok := col[symbol]
	if !ok {
		return nil
	}
	out := make([]float64, len(s))
	copy(out, s)
	return out
}

// CrossSection returns the symbol -> value map for one period, excluding NaN
// entries. Symbols with missing values are simply absent from the map.
func (p *Panel) CrossSection(column string, period int) map[string]float64 {
	xs := make(map[string]float64)
	col, ok := p.columns[column]
	if !ok {
		return xs
	}
	for symbol, s := range col {
		if period < 0 || period >= len(s) {
			continue
		}
		if v := s[period]; !math.IsNaN(v) {
			xs[symbol] = v
		}
	}
	return xs
}
