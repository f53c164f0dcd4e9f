package internal

import (
	"encoding/csv"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
)

// TimestampLayout is the layout of the first column of every CSV row.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Sample is a single measurement from one CSV column.
type Sample struct {
	Timestamp time.Time
	Value     float64
}

// Series is an ordered run of samples for one channel, in file order.
type Series []Sample

// ValueFunc transforms a raw value before it is stored in a Sample.
type ValueFunc func(float64) float64

// ParseTimestamp parses a row timestamp. Anything not in TimestampLayout is rejected.
func ParseTimestamp(s string) (time.Time, bool) {
	t, err := time.ParseInLocation(TimestampLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ParseSeries reads the raw samples of one column without trimming or transforming them.
// Rows with a bad timestamp, or a missing, empty or non-numeric value are dropped.
func ParseSeries(r io.Reader, column int) Series {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = true

	var series Series
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				continue
			}
			break
		}
		if column <= 0 || column >= len(record) || len(record[column]) == 0 {
			continue
		}
		timestamp, ok := ParseTimestamp(record[0])
		if !ok {
			continue
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(record[column]), 64)
		if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
			continue
		}
		series = append(series, Sample{Timestamp: timestamp, Value: value})
	}
	return series
}

// MapValues parses one column of the CSV text, keeps the samples of the day
// that contains now (in loc) and applies transform to what is left.
func MapValues(text string, column int, now time.Time, loc *time.Location, transform ValueFunc) Series {
	series := TrimToDay(ParseSeries(strings.NewReader(text), column), now, loc)
	if transform != nil {
		for i := range series {
			series[i].Value = transform(series[i].Value)
		}
	}
	return series
}

// StartOfDay returns local midnight of the day containing t.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// TrimToDay drops the samples before the first one at or after local midnight.
// If every sample is older than midnight the series is returned untouched.
func TrimToDay(series Series, now time.Time, loc *time.Location) Series {
	midnight := StartOfDay(now, loc)
	for i, s := range series {
		if !s.Timestamp.Before(midnight) {
			return series[i:]
		}
	}
	return series
}

// Baseline returns a transform that reads the first value it sees as zero.
// A new one is needed per series.
func Baseline() ValueFunc {
	var base float64
	started := false
	return func(v float64) float64 {
		if !started {
			base = v
			started = true
		}
		return v - base
	}
}

// Extent returns the smallest and largest value of the series.
func (s Series) Extent() (float64, float64, bool) {
	if len(s) == 0 {
		return 0, 0, false
	}
	lo, hi := s[0].Value, s[0].Value
	for _, sample := range s[1:] {
		lo = math.Min(lo, sample.Value)
		hi = math.Max(hi, sample.Value)
	}
	return lo, hi, true
}

// TimeExtent returns the earliest and latest timestamp of the series.
func (s Series) TimeExtent() (time.Time, time.Time, bool) {
	if len(s) == 0 {
		return time.Time{}, time.Time{}, false
	}
	first, last := s[0].Timestamp, s[0].Timestamp
	for _, sample := range s[1:] {
		if sample.Timestamp.Before(first) {
			first = sample.Timestamp
		}
		if sample.Timestamp.After(last) {
			last = sample.Timestamp
		}
	}
	return first, last, true
}

// Last returns the most recent sample.
func (s Series) Last() (Sample, bool) {
	if len(s) == 0 {
		return Sample{}, false
	}
	return s[len(s)-1], true
}

// MovingAverage returns a series where every value is the mean of the sample
// and up to n samples before it.
func MovingAverage(series Series, n int) Series {
	out := make(Series, len(series))
	if n < 0 {
		n = 0
	}
	var sum float64
	for i, s := range series {
		sum += s.Value
		if i > n {
			sum -= series[i-n-1].Value
		}
		count := min(i, n) + 1
		out[i] = Sample{Timestamp: s.Timestamp, Value: sum / float64(count)}
	}
	return out
}

// Trend is a least-squares fit y = Slope*x + Intercept.
type Trend struct {
	Slope     float64
	Intercept float64
	R2        float64
}

// At evaluates the trend line at x.
func (t Trend) At(x float64) float64 {
	return t.Slope*x + t.Intercept
}

// Regression fits a line through the points. Fewer than two points, or
// points sharing the same x, have no fit.
func Regression(xs, ys []float64) (Trend, bool) {
	n := min(len(xs), len(ys))
	if n < 2 {
		return Trend{}, false
	}

	var sumX, sumY, sumXY, sumXX, sumYY float64
	for i := range n {
		sumX += xs[i]
		sumY += ys[i]
		sumXY += xs[i] * ys[i]
		sumXX += xs[i] * xs[i]
		sumYY += ys[i] * ys[i]
	}

	count := float64(n)
	denom := count*sumXX - sumX*sumX
	if denom == 0 {
		return Trend{}, false
	}
	trend := Trend{}
	trend.Slope = (count*sumXY - sumX*sumY) / denom
	trend.Intercept = (sumY - trend.Slope*sumX) / count

	if spread := count*sumYY - sumY*sumY; spread > 0 {
		r := (count*sumXY - sumX*sumY) / math.Sqrt(denom*spread)
		trend.R2 = r * r
	} else {
		// A flat series is fitted exactly.
		trend.R2 = 1
	}
	return trend, true
}
