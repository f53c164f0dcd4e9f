package internal

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForecastLoad(t *testing.T) {
	calls := 0
	f := &Forecast{fetch: func() (WeatherInfo, error) {
		calls++
		return WeatherInfo{Condition: "clear sky", MaxTemperature: 21}, nil
	}}

	info, err := f.Load()
	require.NoError(t, err)
	assert.Equal(t, 21, info.MaxTemperature)
	f.Load()
	assert.Equal(t, 1, calls, "fetched at most once an hour")
}

func TestForecastLoadError(t *testing.T) {
	f := &Forecast{fetch: func() (WeatherInfo, error) {
		return WeatherInfo{}, errors.New("offline")
	}}
	_, err := f.Load()
	assert.Error(t, err)
}

func TestDescribeCondition(t *testing.T) {
	assert.Equal(t, "rain slight", describeCondition("rain-slight"))
	assert.Equal(t, "overcast", describeCondition("overcast"))
}

func TestWeatherOptions(t *testing.T) {
	assert.False(t, defaultConfig().GetWeatherOptions().Enabled())

	config := defaultConfig()
	config.Weather.Location = Location{Lat: 45.5, Lng: -73.6}
	assert.True(t, config.GetWeatherOptions().Enabled())
}
