package internal

import (
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadConfigDefaults(t *testing.T) {
	config, err := ReadConfig(strings.NewReader(""))
	require.NoError(t, err)

	assert.Equal(t, ".csv", config.Source.Extension)
	assert.Equal(t, "today", config.Source.DefaultDate)
	assert.Equal(t, 30*time.Second, config.Refresh)
	require.Len(t, config.Charts, 3)
	assert.Equal(t, "energy_graph", config.Charts[0].ID)
	assert.Equal(t, "house_energy_graph", config.Charts[1].ID)
	assert.Equal(t, "voltage_graph", config.Charts[2].ID)

	var thresholds []float64
	for _, th := range config.Charts[2].ToThresholds() {
		thresholds = append(thresholds, th.Value)
	}
	assert.InDeltaSlice(t, []float64{14.6, 14.0, 16.4, 16.6}, thresholds, 1e-9)
}

func TestReadConfig(t *testing.T) {
	yaml := `
source:
  base_url: http://pi.local/energy/
  index_url: http://pi.local/energy/
refresh: 10s
timezone: America/Toronto
layout:
  width: 800
  height: 240
charts:
  - id: solar
    title: Solar
    label: Power
    unit: W
    column: 2
    avg_points: 5
    trend: true
    extents:
      below: 10
      above: 50
    thresholds:
      - value: 300
        color: red
weather:
  location:
    lat: 45.5
    lng: -73.6
`
	config, err := ReadConfig(strings.NewReader(yaml))
	require.NoError(t, err)

	assert.Equal(t, "http://pi.local/energy/", config.Source.BaseURL)
	assert.Equal(t, ".csv", config.Source.Extension, "unset fields keep their default")
	assert.Equal(t, 10*time.Second, config.Refresh)
	assert.Equal(t, 800, config.Layout.Width)

	loc, err := config.GetLocation()
	require.NoError(t, err)
	assert.Equal(t, "America/Toronto", loc.String())

	require.Len(t, config.Charts, 1)
	chart := config.Charts[0]
	options := chart.ToChartOptions()
	assert.Equal(t, 5, options.AvgPoints)
	assert.True(t, options.Trend)
	require.NotNil(t, options.Extents)
	lo, hi := options.Extents(100, 200)
	assert.Equal(t, 90.0, lo)
	assert.Equal(t, 250.0, hi)
	assert.Equal(t, []Threshold{{Value: 300, Color: "red"}}, chart.ToThresholds())

	assert.True(t, config.GetWeatherOptions().Enabled())
}

func TestReadConfigInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"refresh", "refresh: 0s", "refresh must be positive"},
		{"timezone", "timezone: Mars/Olympus", "invalid timezone"},
		{"layout", "layout: {width: 50, height: 300}", "leaves no room"},
		{"no charts", "charts: []", "no charts configured"},
		{"column", "charts: [{id: a, column: 0}]", "column must be at least 1"},
		{"duplicate", "charts: [{id: a, column: 1}, {id: a, column: 2}]", "duplicate chart id"},
		{"secondary", "charts: [{id: a, column: 1, secondary: {column: 0}}]", "secondary column"},
		{"negative", "charts: [{id: a, column: 1, avg_points: -1}]", "can't be negative"},
		{"malformed", "charts: {", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadConfig(strings.NewReader(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestChartOptionsWithoutExtents(t *testing.T) {
	options := ChartConfig{DecimalPlaces: 1}.ToChartOptions()
	assert.Nil(t, options.Extents)
	assert.Equal(t, 1, options.DecimalPlaces)
	assert.Nil(t, ChartConfig{}.ToThresholds())
}
