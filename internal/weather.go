package internal

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/innotechdevops/openmeteo"
)

const weatherRefresh = time.Hour

type LatLng struct {
	Lat float32
	Lng float32
}

type WeatherOptions struct {
	Location LatLng
}

func (c Config) GetWeatherOptions() WeatherOptions {
	return WeatherOptions{
		Location: LatLng(c.Weather.Location),
	}
}

// Enabled reports whether a location was configured.
func (o WeatherOptions) Enabled() bool {
	return o.Location.Lat != 0 || o.Location.Lng != 0
}

// WeatherInfo holds the forecast for the current day, which is what the
// solar panels will see.
type WeatherInfo struct {
	Condition      string
	MaxTemperature int
	MinTemperature int
	SunshineHours  float64
}

// Forecast caches the weather, refreshing it at most once an hour.
type Forecast struct {
	mu      sync.Mutex
	fetched time.Time
	info    WeatherInfo
	err     error

	fetch func() (WeatherInfo, error)
}

// NewForecast creates a forecast for the given location.
func NewForecast(options WeatherOptions) *Forecast {
	return &Forecast{fetch: func() (WeatherInfo, error) {
		return fetchWeatherData(options.Location)
	}}
}

// NewFakeForecast creates a forecast with random data for testing purposes.
func NewFakeForecast() *Forecast {
	conditions := []string{"clear-sky", "mainly-clear", "partly-cloudy", "overcast", "rain-slight"}
	return &Forecast{fetch: func() (WeatherInfo, error) {
		max := rand.Intn(25) + 10
		return WeatherInfo{
			Condition:      describeCondition(conditions[rand.Intn(len(conditions))]),
			MaxTemperature: max,
			MinTemperature: max - rand.Intn(12),
			SunshineHours:  float64(rand.Intn(120)) / 10,
		}, nil
	}}
}

// Load returns the cached forecast, fetching it when it is older than an hour.
func (w *Forecast) Load() (WeatherInfo, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.fetched.IsZero() || time.Since(w.fetched) > weatherRefresh {
		info, err := w.fetch()
		w.fetched = time.Now()
		w.err = err
		if err == nil {
			w.info = info
		}
	}
	return w.info, w.err
}

func fetchWeatherData(location LatLng) (WeatherInfo, error) {
	var result WeatherInfo

	param := openmeteo.Parameter{
		Latitude:  openmeteo.Float32(location.Lat),
		Longitude: openmeteo.Float32(location.Lng),
		Timezone:  openmeteo.String("auto"),
		Daily: &[]string{
			openmeteo.DailyWeatherCode,
			openmeteo.DailyTemperature2mMin,
			openmeteo.DailyTemperature2mMax,
			"sunshine_duration",
		},
		ForecastDays: openmeteo.Int(1),
	}

	m := openmeteo.New()
	resp, err := m.Execute(param)
	if err != nil {
		return result, fmt.Errorf("failed to get forecast: %w", err)
	}

	var response struct {
		Daily struct {
			Condition []int     `json:"weathercode"`
			MinTemps  []float64 `json:"temperature_2m_min"`
			MaxTemps  []float64 `json:"temperature_2m_max"`
			Sunshine  []float64 `json:"sunshine_duration"`
		} `json:"daily"`
	}

	if err := json.NewDecoder(strings.NewReader(resp)).Decode(&response); err != nil {
		return result, fmt.Errorf("failed to decode forecast: %w", err)
	}
	daily := response.Daily
	if len(daily.Condition) == 0 || len(daily.MinTemps) == 0 || len(daily.MaxTemps) == 0 {
		return result, fmt.Errorf("forecast has no daily values")
	}

	result.Condition = describeCondition(openmeteo.WeatherCodeName(daily.Condition[0]))
	result.MaxTemperature = int(daily.MaxTemps[0])
	result.MinTemperature = int(daily.MinTemps[0])
	if len(daily.Sunshine) > 0 {
		result.SunshineHours = daily.Sunshine[0] / 3600
	}
	return result, nil
}

// Open-Meteo names conditions like "rain-slight"; the header shows "rain slight".
func describeCondition(name string) string {
	return strings.ReplaceAll(name, "-", " ")
}
