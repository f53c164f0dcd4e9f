package internal

import (
	"html/template"
)

// CardType represents the type of content a Card holds.
type CardType int

const (
	CardTypeUnknown CardType = iota
	CardTypeText             // Supports title and body.
	CardTypeChart            // Supports title and chart, or an error in place of the chart.
)

// Card represents a single panel of the dashboard.
type Card struct {
	ID    string
	Title template.HTML
	Type  CardType

	// For CardTypeText
	Body template.HTML

	// For CardTypeChart
	Chart *Drawing
	Error string

	Priority int

	spec       ChartSpec
	context    ChartContext
	thresholds []Threshold
}

func titleHTML(title string) template.HTML {
	return template.HTML(template.HTMLEscapeString(title))
}

// Returns whether a card is valid and should be displayed.
func (c Card) Valid() bool {
	if c.Type == CardTypeText {
		return len(c.Body) > 0
	}
	if c.Type == CardTypeChart {
		// A chart that failed still takes its place to show the error.
		return c.Chart != nil || c.Error != ""
	}
	return false
}

// IsChart is used by the template.
func (c Card) IsChart() bool {
	return c.Type == CardTypeChart
}

// Stats summarizes the series of a chart card.
func (c Card) Stats() (ChartStats, bool) {
	if c.Chart == nil {
		return ChartStats{}, false
	}
	lo, hi, _ := c.spec.Primary.Extent()
	last, _ := c.spec.Primary.Last()
	stats := ChartStats{
		Title: string(c.Title),
		Label: c.spec.Label,
		Unit:  c.spec.Unit,
		Min:   lo,
		Max:   hi,
		Last:  last.Value,
	}
	if last2, ok := c.spec.Secondary.Last(); ok {
		stats.SecondaryLabel = c.spec.SecondaryLabel
		stats.SecondaryUnit = c.spec.SecondaryUnit
		stats.SecondaryLast = last2.Value
		stats.HasSecondary = true
	}
	return stats, true
}

// ChartStats are the headline numbers of one chart.
type ChartStats struct {
	Title string
	Label string
	Unit  string
	Min   float64
	Max   float64
	Last  float64

	HasSecondary   bool
	SecondaryLabel string
	SecondaryUnit  string
	SecondaryLast  float64
}
