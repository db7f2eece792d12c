package dataset

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "panel.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadCSV(t *testing.T) {
	path := writeTempCSV(t, `Date,Symbol,Close,Market_Cap
2024-01-31,aaa,100,1000
2024-02-29,AAA,110,1100
2024-01-31,BBB,50,500
2024-02-29,BBB,55,550
`)

	p, err := LoadCSV(path, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, p.Periods())
	assert.Equal(t, []string{"AAA", "BBB"}, p.Symbols(), "symbols are upper-cased")
	assert.Equal(t, []string{"close", "market_cap"}, p.Columns(), "headers are lower-cased")
	assert.Equal(t, 110.0, p.Value("close", "AAA", 1))
	assert.Equal(t, 500.0, p.Value("market_cap", "BBB", 0))
}

func TestLoadCSV_SkipsBadRows(t *testing.T) {
	path := writeTempCSV(t, `date,symbol,close
2024-01-31,AAA,100
not-a-date,AAA,110
2024-02-29,,120
2024-02-29,AAA,130
`)

	p, err := LoadCSV(path, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, p.Periods())
	assert.Equal(t, []string{"AAA"}, p.Symbols())
	assert.Equal(t, 130.0, p.Value("close", "AAA", 1))
}

func TestLoadCSV_BlankCellLoadsAsNaN(t *testing.T) {
	path := writeTempCSV(t, `date,symbol,close
2024-01-31,AAA,
2024-02-29,AAA,110
`)

	p, err := LoadCSV(path, nil)
	require.NoError(t, err)

	assert.True(t, math.IsNaN(p.Value("close", "AAA", 0)))
	assert.Equal(t, 110.0, p.Value("close", "AAA", 1))
}

func TestLoadCSV_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "missing date column",
			content: "symbol,close\nAAA,100\n",
		},
		{
			name:    "missing symbol column",
			content: "date,close\n2024-01-31,100\n",
		},
		{
			name:    "no value columns",
			content: "date,symbol\n2024-01-31,AAA\n",
		},
		{
			name:    "no valid rows",
			content: "date,symbol,close\nbad,AAA,100\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTempCSV(t, tt.content)
			_, err := LoadCSV(path, nil)
			assert.Error(t, err)
		})
	}
}

func TestLoadCSV_FileNotFound(t *testing.T) {
	_, err := LoadCSV(filepath.Join(t.TempDir(), "missing.csv"), nil)
	assert.Error(t, err)
}

func TestFromObservations_LaterWins(t *testing.T) {
	obs := []Observation{
		{Date: d("2024-01-31"), Symbol: "AAA", Values: map[string]float64{"close": 100}},
		{Date: d("2024-01-31"), Symbol: "AAA", Values: map[string]float64{"close": 101}},
	}

	p, err := FromObservations(obs)
	require.NoError(t, err)

	assert.Equal(t, 101.0, p.Value("close", "AAA", 0))
}

func TestParseDate_Formats(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"2024-01-31", "2024-01-31"},
		{"2024/01/31", "2024-01-31"},
		{"01/31/2024", "2024-01-31"},
		{"2024-01-31 15:04:05", "2024-01-31"},
		{"202401", "2024-01-01"},
		{"2024-01", "2024-01-01"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseDate(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Format("2006-01-02"))
		})
	}

	_, err := parseDate("31 Jan 2024")
	assert.Error(t, err)
}
