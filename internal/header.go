package internal

import (
	"slices"
	"time"
)

// Header holds information for the header section of the dashboard.
type Header struct {
	Title   string
	Date    string // The requested date, empty for the default day.
	Updated string

	Weather *WeatherInfo

	Days []string // Days available on the data server, newest first.
	Prev string
	Next string
}

func makeHeader(now time.Time, loc *time.Location, date string, days []string, weather *WeatherInfo) Header {
	h := Header{
		Title:   now.In(loc).Format("Monday 2 January"),
		Date:    date,
		Updated: now.In(loc).Format("15:04:05"),
		Weather: weather,
		Days:    days,
	}
	if date != "" {
		if t, err := time.ParseInLocation(time.DateOnly, date, loc); err == nil {
			h.Title = t.Format("Monday 2 January")
		}
	}

	// Days are sorted newest first, so the previous day is the next entry.
	if i := slices.Index(days, date); i >= 0 {
		if i+1 < len(days) {
			h.Prev = days[i+1]
		}
		if i > 0 {
			h.Next = days[i-1]
		}
	} else if len(days) > 0 && date == "" {
		h.Prev = days[0]
	}
	return h
}
