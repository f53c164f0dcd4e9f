package internal

// Threshold is a fixed horizontal reference line.
type Threshold struct {
	Value float64
	Color string
}

// DrawThreshold adds a full width line at the threshold's value if it lies
// inside the y domain of the chart, lower bound excluded.
func DrawThreshold(d *Drawing, ctx ChartContext, t Threshold) bool {
	if !ctx.InDomain(t.Value) {
		return false
	}
	y := ctx.Y.Map(t.Value)
	d.Lines = append(d.Lines, Line{
		Class:  "threshold",
		X1:     0,
		Y1:     y,
		X2:     ctx.Width,
		Y2:     y,
		Stroke: t.Color,
	})
	return true
}

// InDomain reports whether a value is above the bottom of the y domain and
// not above its top.
func (c ChartContext) InDomain(v float64) bool {
	return v > c.YExtents[0] && v <= c.YExtents[1]
}
