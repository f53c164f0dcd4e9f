package internal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func values(s Series) []float64 {
	out := make([]float64, len(s))
	for i, sample := range s {
		out[i] = sample.Value
	}
	return out
}

func TestParseTimestamp(t *testing.T) {
	ts, ok := ParseTimestamp("2024-01-01T00:05:00.000Z")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 5, 0, 0, time.UTC), ts)

	_, ok = ParseTimestamp("2024-01-01 00:05:00")
	assert.False(t, ok)
	_, ok = ParseTimestamp("")
	assert.False(t, ok)
}

func TestParseSeries(t *testing.T) {
	text := "" +
		"2024-01-01T00:00:00.000Z,3.7,1\n" +
		"garbage\n" +
		"not-a-time,3.9,1\n" +
		"2024-01-01T00:01:00.000Z,,1\n" +
		"2024-01-01T00:02:00.000Z,abc,1\n" +
		"2024-01-01T00:03:00.000Z,NaN,1\n" +
		"2024-01-01T00:03:20.000Z,inf,1\n" +
		"2024-01-01T00:03:40.000Z,-Infinity,1\n" +
		"2024-01-01T00:04:00.000Z\n" +
		"2024-01-01T00:05:00.000Z,3.8,1\n"

	t.Run("drops malformed rows", func(t *testing.T) {
		series := MapValues(text, 1, time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), time.UTC, nil)
		require.Len(t, series, 2)
		assert.Equal(t, []float64{3.7, 3.8}, values(series))
		assert.Equal(t, time.Date(2024, 1, 1, 0, 5, 0, 0, time.UTC), series[1].Timestamp)
	})

	t.Run("column out of range", func(t *testing.T) {
		assert.Empty(t, MapValues(text, 7, time.Now(), time.UTC, nil))
		assert.Empty(t, MapValues(text, 0, time.Now(), time.UTC, nil))
	})

	t.Run("empty text", func(t *testing.T) {
		assert.Empty(t, MapValues("", 1, time.Now(), time.UTC, nil))
	})
}

func TestTrimToDay(t *testing.T) {
	text := "" +
		"2024-01-01T23:58:00.000Z,1\n" +
		"2024-01-01T23:59:00.000Z,2\n" +
		"2024-01-02T00:00:00.000Z,3\n" +
		"2024-01-02T00:01:00.000Z,4\n"

	t.Run("keeps samples from midnight", func(t *testing.T) {
		now := time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC)
		assert.Equal(t, []float64{3, 4}, values(MapValues(text, 1, now, time.UTC, nil)))
	})

	t.Run("keeps everything when nothing is from today", func(t *testing.T) {
		now := time.Date(2024, 1, 5, 8, 0, 0, 0, time.UTC)
		assert.Equal(t, []float64{1, 2, 3, 4}, values(MapValues(text, 1, now, time.UTC, nil)))
	})

	t.Run("uses the local day", func(t *testing.T) {
		// Midnight in UTC+1 is 23:00 UTC the day before.
		loc := time.FixedZone("CET", 60*60)
		now := time.Date(2024, 1, 2, 0, 30, 0, 0, time.UTC)
		assert.Equal(t, []float64{1, 2, 3, 4}, values(MapValues(text, 1, now, loc, nil)))
	})
}

func TestBaseline(t *testing.T) {
	text := "" +
		"2024-01-01T00:00:00.000Z,100\n" +
		"2024-01-01T00:01:00.000Z,105\n" +
		"2024-01-01T00:02:00.000Z,103\n" +
		"2024-01-01T00:03:00.000Z,110\n"
	now := time.Date(2024, 1, 1, 1, 0, 0, 0, time.UTC)

	series := MapValues(text, 1, now, time.UTC, Baseline())
	assert.Equal(t, []float64{0, 5, 3, 10}, values(series))

	// Each series needs its own baseline.
	transform := Baseline()
	MapValues(text, 1, now, time.UTC, transform)
	assert.Equal(t, []float64{100, 105, 103, 110}, values(MapValues(text, 1, now, time.UTC, nil)))
	assert.Equal(t, 10.0, transform(110))
}

func TestExtents(t *testing.T) {
	var empty Series
	_, _, ok := empty.Extent()
	assert.False(t, ok)
	_, ok = empty.Last()
	assert.False(t, ok)

	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	series := Series{
		{Timestamp: t0.Add(time.Minute), Value: 4},
		{Timestamp: t0, Value: -1},
		{Timestamp: t0.Add(2 * time.Minute), Value: 2},
	}
	lo, hi, ok := series.Extent()
	require.True(t, ok)
	assert.Equal(t, -1.0, lo)
	assert.Equal(t, 4.0, hi)

	first, last, ok := series.TimeExtent()
	require.True(t, ok)
	assert.Equal(t, t0, first)
	assert.Equal(t, t0.Add(2*time.Minute), last)

	latest, ok := series.Last()
	require.True(t, ok)
	assert.Equal(t, 2.0, latest.Value)
}

func TestMovingAverage(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var series Series
	for i, v := range []float64{1, 2, 3, 4, 5} {
		series = append(series, Sample{Timestamp: t0.Add(time.Duration(i) * time.Minute), Value: v})
	}

	t.Run("zero window copies the series", func(t *testing.T) {
		assert.Equal(t, series, MovingAverage(series, 0))
	})

	t.Run("window of two", func(t *testing.T) {
		avg := MovingAverage(series, 2)
		assert.InDeltaSlice(t, []float64{1, 1.5, 2, 3, 4}, values(avg), 1e-9)
		assert.Equal(t, series[3].Timestamp, avg[3].Timestamp)
	})

	t.Run("window wider than the series", func(t *testing.T) {
		assert.InDeltaSlice(t, []float64{1, 1.5, 2, 2.5, 3}, values(MovingAverage(series, 10)), 1e-9)
	})

	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, MovingAverage(nil, 3))
	})
}

func TestRegression(t *testing.T) {
	t.Run("exact line", func(t *testing.T) {
		trend, ok := Regression([]float64{0, 1, 2, 3}, []float64{1, 3, 5, 7})
		require.True(t, ok)
		assert.InDelta(t, 2, trend.Slope, 1e-9)
		assert.InDelta(t, 1, trend.Intercept, 1e-9)
		assert.InDelta(t, 1, trend.R2, 1e-9)
		assert.InDelta(t, 21, trend.At(10), 1e-9)
	})

	t.Run("flat", func(t *testing.T) {
		trend, ok := Regression([]float64{0, 1, 2}, []float64{4, 4, 4})
		require.True(t, ok)
		assert.InDelta(t, 0, trend.Slope, 1e-9)
		assert.InDelta(t, 4, trend.Intercept, 1e-9)
		assert.Equal(t, 1.0, trend.R2)
	})

	t.Run("no fit", func(t *testing.T) {
		_, ok := Regression([]float64{1}, []float64{1})
		assert.False(t, ok)
		_, ok = Regression([]float64{2, 2}, []float64{1, 3})
		assert.False(t, ok)
	})
}
