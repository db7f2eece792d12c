package portfolio

import (
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveToCSV(t *testing.T) {
	result := &SortResult{
		Config: SortConfig{Buckets: 2},
		RunID:  "test-run",
		Periods: []PeriodResult{
			{
				Date:          time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
				Universe:      4,
				BucketReturns: []float64{0.015, 0.035},
				BucketCounts:  []int{2, 2},
				LongShort:     0.02,
				MarketReturn:  0.025,
			},
			{
				Date:          time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
				Universe:      2,
				BucketReturns: []float64{0.01, math.NaN()},
				BucketCounts:  []int{2, 0},
				LongShort:     math.NaN(),
				MarketReturn:  0.01,
			},
		},
	}

	path := filepath.Join(t.TempDir(), "reports", "sort_returns.csv")
	require.NoError(t, SaveToCSV(result, path))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []string{"Date", "Universe", "Bucket1", "Bucket2", "Count1", "Count2", "LongShort", "Market"}, records[0])
	assert.Equal(t, "2024-02-29", records[1][0])
	assert.Equal(t, "4", records[1][1])
	assert.Equal(t, "0.01500000", records[1][2])
	assert.Equal(t, "", records[2][3], "empty bucket renders as a blank cell")
	assert.Equal(t, "", records[2][6], "undefined long-short renders as a blank cell")
}

func TestSaveToCSV_NoPeriods(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")

	assert.Error(t, SaveToCSV(nil, path))
	assert.Error(t, SaveToCSV(&SortResult{}, path))
}

func TestSortResult_Series(t *testing.T) {
	result := &SortResult{
		Config: SortConfig{Buckets: 2},
		Periods: []PeriodResult{
			{
				Date:          time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
				BucketReturns: []float64{0.01, 0.03},
				LongShort:     0.02,
				MarketReturn:  0.02,
			},
			{
				Date:          time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
				BucketReturns: []float64{0.01, math.NaN()},
				LongShort:     math.NaN(),
				MarketReturn:  0.01,
			},
		},
	}

	dates, returns := result.LongShortSeries()
	require.Len(t, dates, 1)
	assert.Equal(t, []float64{0.02}, returns)

	_, low := result.BucketSeries(0)
	assert.Equal(t, []float64{0.01, 0.01}, low)

	_, high := result.BucketSeries(1)
	assert.Equal(t, []float64{0.03}, high, "empty periods drop out of the bucket series")

	_, market := result.MarketSeries()
	assert.Equal(t, []float64{0.02, 0.01}, market)

	assert.Len(t, result.Dates(), 2)
}
