package internal

import (
	"math"
	"strconv"
	"time"
)

// TrackingPair is the vertical crosshair line and time label of one chart.
type TrackingPair struct {
	Line string
	Text string
}

func newTrackingPair(chartID string) TrackingPair {
	return TrackingPair{Line: chartID + "-tracking-x", Text: chartID + "-tracking-x-text"}
}

// Overlay collects the vertical crosshairs of every chart drawn in one
// update. Pointer movement over any chart moves all of them.
type Overlay struct {
	pairs []TrackingPair
}

func NewOverlay() *Overlay {
	return &Overlay{}
}

// Track registers the vertical crosshair of a chart and returns its ids.
func (o *Overlay) Track(chartID string) TrackingPair {
	pair := newTrackingPair(chartID)
	o.pairs = append(o.pairs, pair)
	return pair
}

// Vertical returns the crosshairs registered so far.
func (o *Overlay) Vertical() []TrackingPair {
	return append([]TrackingPair(nil), o.pairs...)
}

// Tracking is the state of the crosshair for one pointer position.
type Tracking struct {
	ShowHorizontal bool // Horizontal line and value label of the hovered chart.
	ShowVertical   bool // Vertical lines and time labels of every chart.

	X, Y  float64
	Value string
	Time  string
}

// TrackingTimeLayout is the layout of the crosshair time label.
const TrackingTimeLayout = "3:04 pm"

// Track computes the crosshair for a pointer at (px, py), relative to the plot
// origin. The value and time are read back from the scales every time.
func (c ChartContext) Track(px, py float64) Tracking {
	loc := c.Location
	if loc == nil {
		loc = time.Local
	}
	scale := math.Pow(10, float64(c.DecimalPlaces))
	value := math.Round(c.Y.Invert(py)*scale) / scale
	return Tracking{
		ShowHorizontal: py >= 0 && py <= c.Height,
		ShowVertical:   px >= 0 && px <= c.Width,
		X:              px,
		Y:              py,
		Value:          strconv.FormatFloat(value, 'f', c.DecimalPlaces, 64),
		Time:           c.X.Invert(px).In(loc).Format(TrackingTimeLayout),
	}
}
