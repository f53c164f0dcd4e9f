package internal

import (
	"math"
	"time"
)

// LinearScale maps a numeric domain onto a pixel range. Mapped values are
// rounded to whole pixels.
type LinearScale struct {
	Domain [2]float64
	Range  [2]float64
}

// NewLinearScale returns a scale from [d0, d1] to [r0, r1].
func NewLinearScale(d0, d1, r0, r1 float64) LinearScale {
	return LinearScale{Domain: [2]float64{d0, d1}, Range: [2]float64{r0, r1}}
}

// Map converts a domain value to a pixel.
func (s LinearScale) Map(v float64) float64 {
	span := s.Domain[1] - s.Domain[0]
	if span == 0 {
		return math.Round((s.Range[0] + s.Range[1]) / 2)
	}
	t := (v - s.Domain[0]) / span
	return math.Round(s.Range[0] + t*(s.Range[1]-s.Range[0]))
}

// Invert converts a pixel back to a domain value.
func (s LinearScale) Invert(px float64) float64 {
	span := s.Range[1] - s.Range[0]
	if span == 0 {
		return s.Domain[0]
	}
	t := (px - s.Range[0]) / span
	return s.Domain[0] + t*(s.Domain[1]-s.Domain[0])
}

// Ticks returns about count evenly spaced round values inside the domain.
func (s LinearScale) Ticks(count int) []float64 {
	lo, hi := s.Domain[0], s.Domain[1]
	if hi < lo {
		lo, hi = hi, lo
	}
	if count <= 0 || hi == lo {
		return []float64{lo}
	}
	step := tickStep(lo, hi, count)
	// The epsilon keeps bounds like 3.5/0.05 from rounding off the end.
	start := math.Ceil(lo/step - 1e-9)
	stop := math.Floor(hi/step + 1e-9)

	var ticks []float64
	for i := start; i <= stop; i++ {
		// Multiplying avoids accumulating float error across steps.
		ticks = append(ticks, cleanFloat(i*step))
	}
	return ticks
}

// TickPrecision is the number of decimals needed to print the ticks of this scale.
func (s LinearScale) TickPrecision(count int) int {
	lo, hi := s.Domain[0], s.Domain[1]
	if hi == lo || count <= 0 {
		return 0
	}
	step := tickStep(math.Min(lo, hi), math.Max(lo, hi), count)
	return max(0, -int(math.Floor(math.Log10(step))))
}

func tickStep(lo, hi float64, count int) float64 {
	raw := (hi - lo) / float64(count)
	power := math.Pow(10, math.Floor(math.Log10(raw)))
	switch ratio := raw / power; {
	case ratio >= math.Sqrt(50):
		return power * 10
	case ratio >= math.Sqrt(10):
		return power * 5
	case ratio >= math.Sqrt(2):
		return power * 2
	default:
		return power
	}
}

func cleanFloat(v float64) float64 {
	return math.Round(v*1e9) / 1e9
}

// TimeScale maps a time domain onto a pixel range.
type TimeScale struct {
	Domain [2]time.Time
	Range  [2]float64
}

// NewTimeScale returns a scale from [t0, t1] to [r0, r1].
func NewTimeScale(t0, t1 time.Time, r0, r1 float64) TimeScale {
	return TimeScale{Domain: [2]time.Time{t0, t1}, Range: [2]float64{r0, r1}}
}

func (s TimeScale) linear() LinearScale {
	return NewLinearScale(
		float64(s.Domain[0].UnixMilli()),
		float64(s.Domain[1].UnixMilli()),
		s.Range[0],
		s.Range[1],
	)
}

// Map converts a time to a pixel.
func (s TimeScale) Map(t time.Time) float64 {
	return s.linear().Map(float64(t.UnixMilli()))
}

// Invert converts a pixel back to a time.
func (s TimeScale) Invert(px float64) time.Time {
	return time.UnixMilli(int64(math.Round(s.linear().Invert(px)))).In(s.Domain[0].Location())
}

var timeTickSteps = []time.Duration{
	time.Minute,
	5 * time.Minute,
	15 * time.Minute,
	30 * time.Minute,
	time.Hour,
	3 * time.Hour,
	6 * time.Hour,
	12 * time.Hour,
	24 * time.Hour,
}

// Ticks returns about count times at round minute or hour boundaries in loc.
func (s TimeScale) Ticks(count int, loc *time.Location) []time.Time {
	if loc == nil {
		loc = time.Local
	}
	lo, hi := s.Domain[0], s.Domain[1]
	if hi.Before(lo) {
		lo, hi = hi, lo
	}
	if count <= 0 || !hi.After(lo) {
		return []time.Time{lo}
	}

	target := hi.Sub(lo) / time.Duration(count)
	step := timeTickSteps[len(timeTickSteps)-1]
	for _, candidate := range timeTickSteps {
		if candidate >= target {
			step = candidate
			break
		}
	}

	// Align to the step relative to local midnight so hour ticks land on the hour.
	midnight := StartOfDay(lo, loc)
	first := midnight.Add(((lo.Sub(midnight) + step - 1) / step) * step)

	var ticks []time.Time
	for t := first; !t.After(hi); t = t.Add(step) {
		ticks = append(ticks, t)
	}
	return ticks
}
