package internal

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrNoData is returned when a chart has no samples to draw.
var ErrNoData = errors.New("no data")

const (
	primaryColor   = "#00d700"
	averageColor   = "orange"
	secondaryColor = "orange"
	trendColor     = "#888888"

	yTickCount = 10
)

// Margin is the space around the plot area of a chart.
type Margin struct {
	Top, Right, Bottom, Left float64
}

var chartMargin = Margin{Top: 20, Right: 40, Bottom: 30, Left: 50}

// ChartOptions controls how a chart is drawn.
type ChartOptions struct {
	DecimalPlaces int  // Decimals of the latest value and the crosshair value.
	AvgPoints     int  // Window of the moving average line; 0 disables it.
	Trend         bool // Draw a linear regression of the primary series.
	ShowCharge    bool // Append the battery state of charge to the latest value.

	// Extents remaps the primary value extent before it becomes the y domain.
	Extents func(lo, hi float64) (float64, float64)
}

// ChartSpec is everything needed to draw one chart.
type ChartSpec struct {
	ID    string
	Title string

	Primary Series
	Label   string
	Unit    string

	// Optional, drawn against its own axis on the right.
	Secondary      Series
	SecondaryLabel string
	SecondaryUnit  string

	Options ChartOptions

	Width    float64 // Full width of the chart, margins included.
	Height   float64 // Full height of the chart, margins included.
	Location *time.Location
}

// ChartContext holds the scales of a drawn chart, for overlays and the crosshair.
type ChartContext struct {
	X        TimeScale
	Y        LinearScale
	Width    float64 // Plot width.
	Height   float64 // Plot height.
	YExtents [2]float64

	DecimalPlaces int
	Location      *time.Location
}

// Drawing is the SVG of one chart as plain data. Coordinates of everything
// but the outer size are relative to the plot origin.
type Drawing struct {
	ID     string
	Title  string
	Width  float64
	Height float64
	Margin Margin

	PlotWidth  float64
	PlotHeight float64

	Axes  []Axis
	Paths []Path
	Lines []Line
	Texts []Text

	Tracking TrackingElements
	Scale    ScaleData
}

type AxisSide int

const (
	AxisBottom AxisSide = iota
	AxisLeft
	AxisRight
)

// Axis is a row or column of ticks with an optional rotated label.
type Axis struct {
	Side   AxisSide
	Offset float64 // Distance of the axis line from the plot origin.
	Length float64
	Ticks  []Tick
	Label  string
}

type Tick struct {
	Pos   float64
	Label string
}

type Path struct {
	Class  string
	Stroke string
	Width  float64
	Dash   string
	D      string
}

type Line struct {
	Class  string
	X1, Y1 float64
	X2, Y2 float64
	Stroke string
	Dash   string
}

type Text struct {
	Class  string
	X, Y   float64
	Anchor string
	Value  string
}

// TrackingElements are the ids of a chart's crosshair lines and labels.
type TrackingElements struct {
	HorizontalLine string
	HorizontalText string
	Vertical       TrackingPair

	// Start places the hidden crosshair on the latest sample.
	Start Tracking
}

// ScaleData is what the browser needs to invert the chart's scales.
type ScaleData struct {
	XDomain  [2]int64 // Unix milliseconds.
	YDomain  [2]float64
	Decimals int
	Zone     string // IANA name of the chart's time zone.
}

// Vertical is used by the template to orient ticks.
func (a Axis) Vertical() bool {
	return a.Side != AxisBottom
}

// Transform is the SVG transform of an axis group.
func (a Axis) Transform() string {
	switch a.Side {
	case AxisBottom:
		return fmt.Sprintf("translate(0,%s)", formatNumber(a.Offset))
	default:
		return fmt.Sprintf("translate(%s,0)", formatNumber(a.Offset))
	}
}

// RenderChart lays out a chart for the given series. The vertical crosshair
// of the chart is registered in overlay so that all charts of an update move
// together.
func RenderChart(spec ChartSpec, overlay *Overlay) (Drawing, ChartContext, error) {
	var ctx ChartContext
	if len(spec.Primary) == 0 {
		return Drawing{}, ctx, fmt.Errorf("chart %s: %w", spec.ID, ErrNoData)
	}

	loc := spec.Location
	if loc == nil {
		loc = time.Local
	}
	width := spec.Width - chartMargin.Left - chartMargin.Right
	height := spec.Height - chartMargin.Top - chartMargin.Bottom
	if width <= 0 || height <= 0 {
		return Drawing{}, ctx, fmt.Errorf("chart %s is too small (%vx%v)", spec.ID, spec.Width, spec.Height)
	}

	first, last, _ := spec.Primary.TimeExtent()
	lo, hi, _ := spec.Primary.Extent()
	if spec.Options.Extents != nil {
		lo, hi = spec.Options.Extents(lo, hi)
	}

	ctx = ChartContext{
		X:             NewTimeScale(first.In(loc), last.In(loc), 0, width),
		Y:             NewLinearScale(lo, hi, height, 0),
		Width:         width,
		Height:        height,
		YExtents:      [2]float64{lo, hi},
		DecimalPlaces: spec.Options.DecimalPlaces,
		Location:      loc,
	}

	d := Drawing{
		ID:         spec.ID,
		Title:      spec.Title,
		Width:      spec.Width,
		Height:     spec.Height,
		Margin:     chartMargin,
		PlotWidth:  width,
		PlotHeight: height,
		Scale: ScaleData{
			XDomain:  [2]int64{first.UnixMilli(), last.UnixMilli()},
			YDomain:  [2]float64{lo, hi},
			Decimals: spec.Options.DecimalPlaces,
			Zone:     loc.String(),
		},
	}

	d.Axes = append(d.Axes,
		timeAxis(ctx.X, height, int(math.Ceil(spec.Width/100.0)), loc),
		valueAxis(ctx.Y, AxisLeft, 0, axisLabel(spec.Label, spec.Unit)),
	)

	d.Paths = append(d.Paths, Path{
		Class:  "line primary",
		Stroke: primaryColor,
		Width:  1,
		D:      linePath(spec.Primary, ctx.X, ctx.Y),
	})
	if spec.Options.AvgPoints > 0 {
		d.Paths = append(d.Paths, Path{
			Class:  "line average",
			Stroke: averageColor,
			Width:  1,
			D:      linePath(MovingAverage(spec.Primary, spec.Options.AvgPoints), ctx.X, ctx.Y),
		})
	}
	if spec.Options.Trend {
		if line, ok := trendLine(spec.Primary, ctx); ok {
			d.Lines = append(d.Lines, line)
		}
	}

	if len(spec.Secondary) > 0 {
		lo2, hi2, _ := spec.Secondary.Extent()
		y2 := NewLinearScale(lo2, hi2+(hi2-lo2)*0.2, height, 0)
		d.Axes = append(d.Axes, valueAxis(y2, AxisRight, width, axisLabel(spec.SecondaryLabel, spec.SecondaryUnit)))
		d.Paths = append(d.Paths, Path{
			Class:  "line secondary",
			Stroke: secondaryColor,
			Width:  1,
			D:      linePath(spec.Secondary, ctx.X, y2),
		})
	}

	d.Texts = append(d.Texts, Text{
		Class:  "main-value",
		X:      30,
		Y:      20,
		Anchor: "start",
		Value:  latestValue(spec),
	})

	d.Tracking = TrackingElements{
		HorizontalLine: spec.ID + "-tracking-y",
		HorizontalText: spec.ID + "-tracking-y-text",
	}
	if overlay != nil {
		d.Tracking.Vertical = overlay.Track(spec.ID)
	} else {
		d.Tracking.Vertical = newTrackingPair(spec.ID)
	}
	latest, _ := spec.Primary.Last()
	d.Tracking.Start = ctx.Track(ctx.X.Map(latest.Timestamp), ctx.Y.Map(latest.Value))

	return d, ctx, nil
}

func axisLabel(label, unit string) string {
	if label == "" {
		return ""
	}
	return fmt.Sprintf("%s (%s)", label, unit)
}

func latestValue(spec ChartSpec) string {
	var b strings.Builder
	last, _ := spec.Primary.Last()
	b.WriteString(strconv.FormatFloat(last.Value, 'f', spec.Options.DecimalPlaces, 64))
	b.WriteString(spec.Unit)
	if spec.Options.ShowCharge {
		if pct, ok := PackPercent(last.Value); ok {
			fmt.Fprintf(&b, " (%s%%)", strconv.FormatFloat(pct, 'f', 1, 64))
		}
	}
	if last2, ok := spec.Secondary.Last(); ok {
		b.WriteString(" ")
		b.WriteString(strconv.FormatFloat(math.Round(last2.Value), 'f', 0, 64))
		b.WriteString(spec.SecondaryUnit)
	}
	return b.String()
}

func timeAxis(x TimeScale, offset float64, count int, loc *time.Location) Axis {
	axis := Axis{Side: AxisBottom, Offset: offset, Length: x.Range[1]}
	for _, t := range x.Ticks(count, loc) {
		axis.Ticks = append(axis.Ticks, Tick{Pos: x.Map(t), Label: formatTickTime(t.In(loc))})
	}
	return axis
}

func formatTickTime(t time.Time) string {
	if t.Minute() == 0 {
		if t.Hour() == 0 {
			return t.Format("Jan 2")
		}
		return t.Format("3 PM")
	}
	return t.Format("3:04")
}

func valueAxis(y LinearScale, side AxisSide, offset float64, label string) Axis {
	axis := Axis{Side: side, Offset: offset, Length: y.Range[0], Label: label}
	precision := y.TickPrecision(yTickCount)
	for _, v := range y.Ticks(yTickCount) {
		axis.Ticks = append(axis.Ticks, Tick{Pos: y.Map(v), Label: strconv.FormatFloat(v, 'f', precision, 64)})
	}
	return axis
}

func linePath(series Series, x TimeScale, y LinearScale) string {
	var b strings.Builder
	for i, s := range series {
		if i == 0 {
			b.WriteString("M")
		} else {
			b.WriteString("L")
		}
		b.WriteString(formatNumber(x.Map(s.Timestamp)))
		b.WriteString(",")
		b.WriteString(formatNumber(y.Map(s.Value)))
	}
	return b.String()
}

func trendLine(series Series, ctx ChartContext) (Line, bool) {
	origin := series[0].Timestamp
	xs := make([]float64, len(series))
	ys := make([]float64, len(series))
	for i, s := range series {
		xs[i] = s.Timestamp.Sub(origin).Seconds()
		ys[i] = s.Value
	}
	trend, ok := Regression(xs, ys)
	if !ok {
		return Line{}, false
	}
	_, last, _ := series.TimeExtent()
	return Line{
		Class:  "trend",
		X1:     ctx.X.Map(origin),
		Y1:     ctx.Y.Map(trend.At(0)),
		X2:     ctx.X.Map(last),
		Y2:     ctx.Y.Map(trend.At(last.Sub(origin).Seconds())),
		Stroke: trendColor,
		Dash:   "4 4",
	}, true
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
