package internal

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// interactiveLabels returns the sorted distinct times of the series as
// category labels in loc. Labels carry the day when the series span more
// than one.
func interactiveLabels(loc *time.Location, series ...Series) ([]time.Time, map[int64]string) {
	var times []time.Time
	seen := map[int64]bool{}
	for _, s := range series {
		for _, sample := range s {
			ms := sample.Timestamp.UnixMilli()
			if !seen[ms] {
				seen[ms] = true
				times = append(times, sample.Timestamp)
			}
		}
	}
	slices.SortFunc(times, func(a, b time.Time) int { return a.Compare(b) })

	layout := "3:04 pm"
	if len(times) > 0 && !StartOfDay(times[0], loc).Equal(StartOfDay(times[len(times)-1], loc)) {
		layout = "Jan 2 3:04 pm"
	}
	labels := make(map[int64]string, len(times))
	for _, t := range times {
		labels[t.UnixMilli()] = t.In(loc).Format(layout)
	}
	return times, labels
}

func lineData(series Series, labels map[int64]string) []opts.LineData {
	data := make([]opts.LineData, 0, len(series))
	for _, s := range series {
		data = append(data, opts.LineData{Value: []any{labels[s.Timestamp.UnixMilli()], s.Value}})
	}
	return data
}

// InteractiveChart builds an ECharts line chart of a card with the same y
// domain and threshold lines as its SVG. It returns nil for cards without a
// chart.
func InteractiveChart(card *Card) *charts.Line {
	if card.Chart == nil {
		return nil
	}
	spec, ctx := card.spec, card.context
	loc := ctx.Location
	if loc == nil {
		loc = time.Local
	}
	times, labels := interactiveLabels(loc, spec.Primary, spec.Secondary)
	categories := make([]string, 0, len(times))
	for _, t := range times {
		categories = append(categories, labels[t.UnixMilli()])
	}

	lo, hi := paddedRange(ctx.YExtents[0], ctx.YExtents[1], valuePad(ctx.YExtents[0]))
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			ChartID: spec.ID + "-interactive",
			Width:   strconv.Itoa(int(spec.Width)) + "px",
			Height:  strconv.Itoa(int(spec.Height)) + "px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    spec.Title,
			Subtitle: latestValue(spec),
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(false),
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Type: "category",
			AxisPointer: &opts.AxisPointer{
				Show: opts.Bool(true),
				Snap: opts.Bool(false),
			},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: axisLabel(spec.Label, spec.Unit),
			Type: "value",
			Min:  lo,
			Max:  hi,
		}),
	)
	line.SetXAxis(categories)

	plain := charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)})
	line.AddSeries(spec.Label, lineData(spec.Primary, labels),
		plain,
		charts.WithLineStyleOpts(opts.LineStyle{Color: primaryColor}),
	)
	if spec.Options.AvgPoints > 0 {
		line.AddSeries("average", lineData(MovingAverage(spec.Primary, spec.Options.AvgPoints), labels),
			plain,
			charts.WithLineStyleOpts(opts.LineStyle{Color: averageColor}),
		)
	}
	if len(spec.Secondary) > 0 {
		lo2, hi2, _ := spec.Secondary.Extent()
		lo2, hi2 = paddedRange(lo2, hi2+(hi2-lo2)*0.2, valuePad(lo2))
		line.ExtendYAxis(opts.YAxis{
			Name: axisLabel(spec.SecondaryLabel, spec.SecondaryUnit),
			Type: "value",
			Min:  lo2,
			Max:  hi2,
		})
		line.AddSeries(spec.SecondaryLabel, lineData(spec.Secondary, labels),
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false), YAxisIndex: 1}),
			charts.WithLineStyleOpts(opts.LineStyle{Color: secondaryColor}),
		)
	}

	if len(categories) > 0 {
		first, last := categories[0], categories[len(categories)-1]
		for _, t := range card.thresholds {
			if !ctx.InDomain(t.Value) {
				continue
			}
			line.AddSeries(fmt.Sprintf("threshold %s", formatNumber(t.Value)),
				[]opts.LineData{{Value: []any{first, t.Value}}, {Value: []any{last, t.Value}}},
				plain,
				charts.WithLineStyleOpts(opts.LineStyle{Color: t.Color, Type: "dashed"}),
			)
		}
	}
	return line
}

// RenderInteractive writes a standalone ECharts page with the charts of a
// snapshot. Cards without a chart are left out.
func RenderInteractive(w io.Writer, snapshot *Snapshot) error {
	page := components.NewPage()
	page.PageTitle = snapshot.Header.Title
	for _, card := range snapshot.Cards {
		if line := InteractiveChart(card); line != nil {
			page.AddCharts(line)
		}
	}
	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render interactive page: %w", err)
	}
	return nil
}
