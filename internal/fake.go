package internal

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"
)

// Returns n random values between min and max, biased towards min, with smooth transitions.
func getBiasedSmoothRandomValues(n int, min, max float64) []float64 {
	values := make([]float64, n)

	for i := range values {
		// Prefer lower values.
		bias := rand.Float64()
		target := min + math.Pow(bias, 4)*(max-min)

		next := target
		if i > 0 {
			// Smooth the change from one value to the next.
			step := (rand.Float64() - 0.5) * (max - min) / 50
			next = values[i-1] + step
			next = (next*15 + target) / 16
		}

		values[i] = math.Max(min, math.Min(max, next))
	}

	return values
}

// FakeSource generates a day of samples, one per minute from local midnight
// until now, in the same column layout the energy monitor writes.
type FakeSource struct {
	Location *time.Location
	Now      func() time.Time
}

func (f FakeSource) Fetch(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	now := time.Now()
	if f.Now != nil {
		now = f.Now()
	}
	start := StartOfDay(now, f.Location)
	minutes := int(now.Sub(start).Minutes()) + 1

	grid := getBiasedSmoothRandomValues(minutes, 0, 350)
	house := getBiasedSmoothRandomValues(minutes, 20, 250)
	volts := getBiasedSmoothRandomValues(minutes, 3.45*BatteryCells, 4.15*BatteryCells)

	var b strings.Builder
	var gridWh, houseWh float64
	for i := range minutes {
		t := start.Add(time.Duration(i) * time.Minute).UTC()
		gridWh += grid[i] / 60
		houseWh += house[i] / 60
		fmt.Fprintf(&b, "%s,%.2f,%.2f,%.1f,%.2f,%.1f,%.2f,%.1f,%.2f,%.1f\n",
			t.Format(TimestampLayout),
			volts[i], grid[i]/volts[i], grid[i], grid[i]*60, gridWh,
			house[i]/volts[i], house[i], house[i]*60, houseWh,
		)
	}
	return b.String(), nil
}
