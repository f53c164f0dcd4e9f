package internal

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var namedColors = map[string]drawing.Color{
	"orange": {R: 255, G: 165, B: 0, A: 255},
	"red":    {R: 255, G: 0, B: 0, A: 255},
	"green":  {R: 0, G: 128, B: 0, A: 255},
	"blue":   {R: 0, G: 0, B: 255, A: 255},
	"black":  {R: 0, G: 0, B: 0, A: 255},
}

func parseColor(name string) drawing.Color {
	if c, ok := namedColors[strings.ToLower(name)]; ok {
		return c
	}
	if strings.HasPrefix(name, "#") {
		return drawing.ColorFromHex(strings.TrimPrefix(name, "#"))
	}
	return drawing.ColorBlack
}

func timeSeries(name string, series Series, color string) chart.TimeSeries {
	ts := chart.TimeSeries{
		Name: name,
		Style: chart.Style{
			StrokeColor: parseColor(color),
			StrokeWidth: 1,
		},
		XValues: make([]time.Time, 0, len(series)),
		YValues: make([]float64, 0, len(series)),
	}
	for _, s := range series {
		ts.XValues = append(ts.XValues, s.Timestamp)
		ts.YValues = append(ts.YValues, s.Value)
	}
	return ts
}

// paddedRange widens an empty range by pad on both sides. Chart libraries
// refuse to draw an axis without extent.
func paddedRange(lo, hi, pad float64) (float64, float64) {
	if hi <= lo {
		return lo - pad, lo + pad
	}
	return lo, hi
}

func continuousRange(lo, hi, pad float64) *chart.ContinuousRange {
	lo, hi = paddedRange(lo, hi, pad)
	return &chart.ContinuousRange{Min: lo, Max: hi}
}

func valuePad(v float64) float64 {
	if v == 0 {
		return 1
	}
	return math.Abs(v) * 0.01
}

// RenderChartPNG draws the chart of a card as a static PNG image, with the
// same y domain and threshold lines as its SVG.
func RenderChartPNG(w io.Writer, card *Card) error {
	if card.Chart == nil {
		return fmt.Errorf("chart %s: %w", card.ID, ErrNoData)
	}
	spec, ctx := card.spec, card.context
	loc := ctx.Location
	if loc == nil {
		loc = time.Local
	}
	first, last := ctx.X.Domain[0], ctx.X.Domain[1]

	graph := chart.Chart{
		Width:  int(spec.Width),
		Height: int(spec.Height),
		Background: chart.Style{
			Padding: chart.Box{
				Top:    int(chartMargin.Top),
				Left:   int(chartMargin.Left),
				Right:  int(chartMargin.Right),
				Bottom: int(chartMargin.Bottom),
			},
		},
		XAxis: chart.XAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return chart.TimeFromFloat64(f).In(loc).Format("15:04")
				}
				return ""
			},
			Range: continuousRange(chart.TimeToFloat64(first), chart.TimeToFloat64(last), chart.TimeToFloat64(first.Add(time.Minute))-chart.TimeToFloat64(first)),
		},
		YAxis: chart.YAxis{
			Name: axisLabel(spec.Label, spec.Unit),
			Range: continuousRange(ctx.YExtents[0], ctx.YExtents[1], valuePad(ctx.YExtents[0])),
		},
	}

	graph.Series = append(graph.Series, timeSeries(spec.Label, spec.Primary, primaryColor))
	if spec.Options.AvgPoints > 0 {
		graph.Series = append(graph.Series, timeSeries("average", MovingAverage(spec.Primary, spec.Options.AvgPoints), averageColor))
	}
	if len(spec.Secondary) > 0 {
		secondary := timeSeries(spec.SecondaryLabel, spec.Secondary, secondaryColor)
		secondary.YAxis = chart.YAxisSecondary
		graph.Series = append(graph.Series, secondary)
		lo, hi, _ := spec.Secondary.Extent()
		graph.YAxisSecondary = chart.YAxis{
			Name:  axisLabel(spec.SecondaryLabel, spec.SecondaryUnit),
			Range: continuousRange(lo, hi+(hi-lo)*0.2, valuePad(lo)),
		}
	}
	for _, t := range card.thresholds {
		if !ctx.InDomain(t.Value) {
			continue
		}
		graph.Series = append(graph.Series, chart.TimeSeries{
			Style: chart.Style{
				StrokeColor:     parseColor(t.Color),
				StrokeWidth:     1,
				StrokeDashArray: []float64{4, 4},
			},
			XValues: []time.Time{first, last},
			YValues: []float64{t.Value, t.Value},
		})
	}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("failed to render chart %s: %w", spec.ID, err)
	}
	return nil
}
