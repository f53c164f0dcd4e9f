package internal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinearScale(t *testing.T) {
	s := NewLinearScale(0, 10, 200, 0)

	assert.Equal(t, 200.0, s.Map(0))
	assert.Equal(t, 0.0, s.Map(10))
	assert.Equal(t, 100.0, s.Map(5))
	assert.Equal(t, 67.0, s.Map(6.66))
	assert.InDelta(t, 2.5, s.Invert(150), 1e-9)

	t.Run("degenerate domain", func(t *testing.T) {
		flat := NewLinearScale(3, 3, 200, 0)
		assert.Equal(t, 100.0, flat.Map(3))
		assert.Equal(t, []float64{3}, flat.Ticks(10))
	})

	t.Run("degenerate range", func(t *testing.T) {
		assert.Equal(t, 1.0, NewLinearScale(1, 2, 5, 5).Invert(5))
	})
}

func TestLinearScaleTicks(t *testing.T) {
	t.Run("unit steps", func(t *testing.T) {
		s := NewLinearScale(0, 10, 100, 0)
		assert.Equal(t, []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, s.Ticks(10))
		assert.Equal(t, 0, s.TickPrecision(10))
	})

	t.Run("fractional steps", func(t *testing.T) {
		s := NewLinearScale(3.5, 3.9, 100, 0)
		assert.Equal(t, []float64{3.5, 3.55, 3.6, 3.65, 3.7, 3.75, 3.8, 3.85, 3.9}, s.Ticks(10))
		assert.Equal(t, 2, s.TickPrecision(10))
	})

	t.Run("large values", func(t *testing.T) {
		s := NewLinearScale(0, 3400, 100, 0)
		assert.Equal(t, []float64{0, 500, 1000, 1500, 2000, 2500, 3000}, s.Ticks(10))
	})
}

func TestTimeScale(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewTimeScale(t0, t0.Add(10*time.Hour), 0, 1000)

	assert.Equal(t, 0.0, s.Map(t0))
	assert.Equal(t, 500.0, s.Map(t0.Add(5*time.Hour)))
	assert.True(t, t0.Add(time.Hour).Equal(s.Invert(100)))
	assert.Equal(t, time.UTC, s.Invert(100).Location())

	t.Run("hour ticks", func(t *testing.T) {
		ticks := s.Ticks(10, time.UTC)
		require.Len(t, ticks, 11)
		assert.True(t, t0.Equal(ticks[0]))
		assert.True(t, t0.Add(10*time.Hour).Equal(ticks[10]))
	})

	t.Run("ticks align to the local clock", func(t *testing.T) {
		start := time.Date(2024, 1, 1, 0, 7, 0, 0, time.UTC)
		ticks := NewTimeScale(start, start.Add(2*time.Hour), 0, 1000).Ticks(4, time.UTC)
		require.NotEmpty(t, ticks)
		assert.True(t, time.Date(2024, 1, 1, 0, 30, 0, 0, time.UTC).Equal(ticks[0]))
		assert.Len(t, ticks, 4)
		for _, tick := range ticks {
			assert.Zero(t, tick.Minute()%30)
		}
	})

	t.Run("empty domain", func(t *testing.T) {
		assert.Equal(t, []time.Time{t0}, NewTimeScale(t0, t0, 0, 10).Ticks(5, time.UTC))
	})
}
