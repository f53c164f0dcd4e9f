package internal

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

func TestParseColor(t *testing.T) {
	assert.Equal(t, drawing.Color{R: 255, G: 165, B: 0, A: 255}, parseColor("orange"))
	assert.Equal(t, drawing.Color{R: 255, G: 0, B: 0, A: 255}, parseColor("Red"))
	assert.Equal(t, drawing.ColorFromHex("00d700"), parseColor(primaryColor))
	assert.Equal(t, drawing.ColorBlack, parseColor("chartreuse-ish"))
}

func TestRenderChartPNG(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	spec := ChartSpec{
		ID:    "energy_graph",
		Label: "Power",
		Unit:  "W",
		Primary: Series{
			{Timestamp: t0, Value: 100},
			{Timestamp: t0.Add(time.Minute), Value: 250},
			{Timestamp: t0.Add(2 * time.Minute), Value: 180},
		},
		Secondary: Series{
			{Timestamp: t0, Value: 0},
			{Timestamp: t0.Add(time.Minute), Value: 4},
			{Timestamp: t0.Add(2 * time.Minute), Value: 7},
		},
		SecondaryLabel: "Energy",
		SecondaryUnit:  "Wh",
		Options:        ChartOptions{AvgPoints: 1},
		Width:          1000,
		Height:         300,
		Location:       time.UTC,
	}
	drawn, ctx, err := RenderChart(spec, nil)
	require.NoError(t, err)
	card := &Card{
		ID:         spec.ID,
		Type:       CardTypeChart,
		Chart:      &drawn,
		spec:       spec,
		context:    ctx,
		thresholds: []Threshold{{Value: 200, Color: "red"}, {Value: 900, Color: "red"}},
	}

	var buf bytes.Buffer
	require.NoError(t, RenderChartPNG(&buf, card))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))

	err = RenderChartPNG(&buf, &Card{ID: "failed", Type: CardTypeChart, Error: "No data yet"})
	assert.True(t, errors.Is(err, ErrNoData))
}

func TestRenderChartPNGSingleSample(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for name, spec := range map[string]ChartSpec{
		"one sample": {
			Primary: Series{{Timestamp: t0, Value: 14.3}},
		},
		"flat at zero": {
			Primary: Series{{Timestamp: t0, Value: 0}, {Timestamp: t0.Add(time.Minute), Value: 0}},
		},
		"one sample with secondary": {
			Primary:   Series{{Timestamp: t0, Value: 250}},
			Secondary: Series{{Timestamp: t0, Value: 4}},
		},
	} {
		t.Run(name, func(t *testing.T) {
			spec.ID = "voltage_graph"
			spec.Width = 1000
			spec.Height = 300
			spec.Location = time.UTC
			drawn, ctx, err := RenderChart(spec, nil)
			require.NoError(t, err)
			card := &Card{
				ID:         spec.ID,
				Type:       CardTypeChart,
				Chart:      &drawn,
				spec:       spec,
				context:    ctx,
				thresholds: []Threshold{{Value: 14.3, Color: "red"}},
			}

			var buf bytes.Buffer
			require.NoError(t, RenderChartPNG(&buf, card))
			assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))
		})
	}
}
