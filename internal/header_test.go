package internal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMakeHeader(t *testing.T) {
	now := time.Date(2024, 1, 3, 14, 5, 9, 0, time.UTC)
	days := []string{"2024-01-02", "2024-01-01", "2023-12-31"}

	t.Run("today", func(t *testing.T) {
		weather := &WeatherInfo{Condition: "clear sky"}
		h := makeHeader(now, time.UTC, "", days, weather)
		assert.Equal(t, "Wednesday 3 January", h.Title)
		assert.Equal(t, "14:05:09", h.Updated)
		assert.Equal(t, "2024-01-02", h.Prev)
		assert.Empty(t, h.Next)
		assert.Same(t, weather, h.Weather)
	})

	t.Run("past day", func(t *testing.T) {
		h := makeHeader(now, time.UTC, "2024-01-01", days, nil)
		assert.Equal(t, "Monday 1 January", h.Title)
		assert.Equal(t, "2023-12-31", h.Prev)
		assert.Equal(t, "2024-01-02", h.Next)
	})

	t.Run("oldest day", func(t *testing.T) {
		h := makeHeader(now, time.UTC, "2023-12-31", days, nil)
		assert.Empty(t, h.Prev)
		assert.Equal(t, "2024-01-01", h.Next)
	})

	t.Run("unknown date keeps today's title", func(t *testing.T) {
		h := makeHeader(now, time.UTC, "yesterday", days, nil)
		assert.Equal(t, "Wednesday 3 January", h.Title)
		assert.Empty(t, h.Prev)
		assert.Empty(t, h.Next)
	})
}
