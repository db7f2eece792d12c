package dataset

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestNewPanel_SortsAndDeduplicates(t *testing.T) {
	p := NewPanel(
		[]time.Time{d("2024-03-31"), d("2024-01-31"), d("2024-02-29"), d("2024-01-31")},
		[]string{"BBB", "AAA", "BBB"},
	)

	require.Equal(t, 3, p.Periods())
	assert.Equal(t, []time.Time{d("2024-01-31"), d("2024-02-29"), d("2024-03-31")}, p.Calendar())
	assert.Equal(t, []string{"AAA", "BBB"}, p.Symbols())
}

func TestPanel_SetAndValue(t *testing.T) {
	p := NewPanel([]time.Time{d("2024-01-31"), d("2024-02-29")}, []string{"AAA"})

	require.NoError(t, p.Set("close", "AAA", 0, 10.5))

	assert.Equal(t, 10.5, p.Value("close", "AAA", 0))
	assert.True(t, math.IsNaN(p.Value("close", "AAA", 1)), "unset period should be NaN")
	assert.True(t, math.IsNaN(p.Value("close", "ZZZ", 0)), "unknown symbol should be NaN")
	assert.True(t, math.IsNaN(p.Value("volume", "AAA", 0)), "unknown column should be NaN")

	err := p.Set("close", "AAA", 5, 1.0)
	assert.Error(t, err, "out-of-range period should be rejected")
}

func TestPanel_SetSeriesLengthMismatch(t *testing.T) {
	p := NewPanel([]time.Time{d("2024-01-31"), d("2024-02-29")}, []string{"AAA"})

	err := p.SetSeries("close", "AAA", []float64{1, 2, 3})
	assert.Error(t, err)
}

func TestPanel_SeriesReturnsCopy(t *testing.T) {
	p := NewPanel([]time.Time{d("2024-01-31"), d("2024-02-29")}, []string{"AAA"})
	require.NoError(t, p.SetSeries("close", "AAA", []float64{1, 2}))

	s := p.Series("close", "AAA")
	s[0] = 99

	assert.Equal(t, 1.0, p.Value("close", "AAA", 0), "mutating the returned slice must not touch the panel")
	assert.Nil(t, p.Series("close", "ZZZ"))
	assert.Nil(t, p.Series("volume", "AAA"))
}

func TestPanel_CrossSectionExcludesNaN(t *testing.T) {
	p := NewPanel([]time.Time{d("2024-01-31")}, []string{"AAA", "BBB", "CCC"})
	require.NoError(t, p.Set("signal", "AAA", 0, 1.0))
	require.NoError(t, p.Set("signal", "BBB", 0, math.NaN()))
	require.NoError(t, p.Set("signal", "CCC", 0, 3.0))

	xs := p.CrossSection("signal", 0)

	assert.Equal(t, map[string]float64{"AAA": 1.0, "CCC": 3.0}, xs)
	assert.Empty(t, p.CrossSection("signal", 7))
	assert.Empty(t, p.CrossSection("missing", 0))
}

func TestObservation_IsValid(t *testing.T) {
	tests := []struct {
		name string
		obs  Observation
		want bool
	}{
		{
			name: "complete observation",
			obs:  Observation{Date: d("2024-01-31"), Symbol: "AAA", Values: map[string]float64{"close": 1}},
			want: true,
		},
		{
			name: "missing symbol",
			obs:  Observation{Date: d("2024-01-31"), Values: map[string]float64{"close": 1}},
			want: false,
		},
		{
			name: "zero date",
			obs:  Observation{Symbol: "AAA", Values: map[string]float64{"close": 1}},
			want: false,
		},
		{
			name: "no values",
			obs:  Observation{Date: d("2024-01-31"), Symbol: "AAA"},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.obs.IsValid())
		})
	}
}
