package dataset

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssessQuality(t *testing.T) {
	p := NewPanel(monthlyCalendar(4), []string{"FULL", "HALF", "NONE"})
	require.NoError(t, p.SetSeries("close", "FULL", []float64{1, 2, 3, 4}))
	require.NoError(t, p.SetSeries("close", "HALF", []float64{1, math.NaN(), 3, math.NaN()}))
	require.NoError(t, p.SetSeries("close", "NONE", []float64{math.NaN(), math.NaN(), math.NaN(), math.NaN()}))

	report := AssessQuality(p, "close")

	assert.Equal(t, "close", report.Column)
	assert.Equal(t, 4, report.Periods)
	assert.Equal(t, 3, report.Symbols)
	assert.InDelta(t, 0.5, report.MedianCoverage, 1e-12)

	require.Len(t, report.PerSymbol, 3)
	bySymbol := make(map[string]SymbolQuality, 3)
	for _, q := range report.PerSymbol {
		bySymbol[q.Symbol] = q
	}

	assert.Equal(t, 4, bySymbol["FULL"].Observed)
	assert.True(t, bySymbol["FULL"].Sufficient)

	assert.Equal(t, 2, bySymbol["HALF"].Observed)
	assert.True(t, bySymbol["HALF"].Sufficient, "coverage at the threshold counts as sufficient")

	assert.Equal(t, 0, bySymbol["NONE"].Observed)
	assert.False(t, bySymbol["NONE"].Sufficient)
}

func TestAssessQuality_EmptyPanel(t *testing.T) {
	p := NewPanel(nil, nil)

	report := AssessQuality(p, "close")

	assert.Equal(t, 0, report.Periods)
	assert.Empty(t, report.PerSymbol)
	assert.Zero(t, report.MedianCoverage)
}
