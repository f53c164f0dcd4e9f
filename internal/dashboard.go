package internal

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"sync"
	"time"
)

// Snapshot is the dashboard for one date as of one update.
type Snapshot struct {
	Date    string // As requested, empty for the default day.
	File    string
	Updated time.Time

	Header   Header
	Cards    []*Card
	Tracking []TrackingPair // Vertical crosshairs of every chart in Cards.
	Err      string
}

// Card returns the card with the given id.
func (s *Snapshot) Card(id string) (*Card, bool) {
	for _, card := range s.Cards {
		if card.ID == id {
			return card, true
		}
	}
	return nil, false
}

// Dashboard fetches the data, draws the charts and keeps the latest snapshot
// of every date it was asked for.
type Dashboard struct {
	config  Config
	loc     *time.Location
	source  DataSource
	metrics *Metrics

	// Optional collaborators.
	Index    *DayIndex
	Forecast *Forecast
	Summary  *Summarizer

	// Publish receives every snapshot produced by Run.
	Publish func(*Snapshot)
	// Watched returns the dates with live viewers, refreshed by Run.
	Watched func() []string

	now func() time.Time

	mu         sync.Mutex
	latest     map[string]*Snapshot
	generation uint64
}

// NewDashboard creates a Dashboard reading from source.
func NewDashboard(config Config, source DataSource, metrics *Metrics) (*Dashboard, error) {
	loc, err := config.GetLocation()
	if err != nil {
		return nil, err
	}
	if metrics == nil {
		metrics = NewMetrics()
	}
	return &Dashboard{
		config:  config,
		loc:     loc,
		source:  source,
		metrics: metrics,
		now:     time.Now,
		latest:  map[string]*Snapshot{},
	}, nil
}

// Update fetches the file for date and draws every chart. Failures end up in
// the snapshot so they can be shown in place of the charts.
func (d *Dashboard) Update(ctx context.Context, date string) *Snapshot {
	now := d.now()
	file := ResolveFile(date, d.config.Source.DefaultDate, d.config.Source.Extension)
	snapshot := &Snapshot{Date: date, File: file, Updated: now}
	overlay := NewOverlay()

	start := time.Now()
	csv, err := d.source.Fetch(ctx, file)
	d.metrics.observeFetch(start)
	d.metrics.observeUpdate(err)

	if err != nil {
		snapshot.Err = fmt.Sprintf("failed to fetch %s: %v", file, err)
		if !errors.Is(err, context.Canceled) {
			log.Println(snapshot.Err)
		}
	}

	var stats []ChartStats
	for i, chart := range d.config.Charts {
		card := &Card{
			ID:       chart.ID,
			Title:    titleHTML(chart.Title),
			Type:     CardTypeChart,
			Priority: 100 - i,
		}
		snapshot.Cards = append(snapshot.Cards, card)
		if err != nil {
			card.Error = snapshot.Err
			continue
		}
		d.drawChart(card, chart, csv, now, overlay)
		if s, ok := card.Stats(); ok {
			stats = append(stats, s)
		}
	}
	snapshot.Tracking = overlay.Vertical()

	if d.Summary != nil && err == nil {
		card, err := d.Summary.Card(ctx, date, stats)
		if err != nil {
			log.Println("failed to load summary:", err)
		}
		if card.Valid() {
			snapshot.Cards = append(snapshot.Cards, &card)
		}
	}

	// Sort higher priority cards first.
	slices.SortStableFunc(snapshot.Cards, func(a, b *Card) int {
		return -1 * cmp.Compare(a.Priority, b.Priority)
	})

	snapshot.Header = d.header(ctx, now, date)
	return snapshot
}

func (d *Dashboard) drawChart(card *Card, chart ChartConfig, csv string, now time.Time, overlay *Overlay) {
	spec := ChartSpec{
		ID:       chart.ID,
		Title:    chart.Title,
		Label:    chart.Label,
		Unit:     chart.Unit,
		Options:  chart.ToChartOptions(),
		Width:    float64(d.config.Layout.Width),
		Height:   float64(d.config.Layout.Height),
		Location: d.loc,
	}

	var transform ValueFunc
	if chart.Baseline {
		transform = Baseline()
	}
	spec.Primary = MapValues(csv, chart.Column, now, d.loc, transform)

	if chart.Secondary != nil {
		var transform ValueFunc
		if chart.Secondary.Baseline {
			transform = Baseline()
		}
		spec.Secondary = MapValues(csv, chart.Secondary.Column, now, d.loc, transform)
		spec.SecondaryLabel = chart.Secondary.Label
		spec.SecondaryUnit = chart.Secondary.Unit
	}

	drawing, ctx, err := RenderChart(spec, overlay)
	if errors.Is(err, ErrNoData) {
		card.Error = "No data yet"
		return
	} else if err != nil {
		card.Error = err.Error()
		return
	}
	card.thresholds = chart.ToThresholds()
	for _, t := range card.thresholds {
		DrawThreshold(&drawing, ctx, t)
	}

	card.Chart = &drawing
	card.spec = spec
	card.context = ctx
	d.metrics.observeChart(spec)
}

func (d *Dashboard) header(ctx context.Context, now time.Time, date string) Header {
	var days []string
	if d.Index != nil {
		var err error
		if days, err = d.Index.Days(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Println("failed to list days:", err)
		}
		days = slices.DeleteFunc(slices.Clone(days), func(day string) bool {
			return day == d.config.Source.DefaultDate
		})
	}

	var weather *WeatherInfo
	// The forecast only makes sense for today.
	if d.Forecast != nil && (date == "" || date == d.config.Source.DefaultDate) {
		info, err := d.Forecast.Load()
		if err != nil {
			log.Println("failed to load forecast:", err)
		} else {
			weather = &info
		}
	}
	return makeHeader(now, d.loc, date, days, weather)
}

// Latest returns the last snapshot stored for date.
func (d *Dashboard) Latest(date string) (*Snapshot, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	s, ok := d.latest[date]
	return s, ok
}

// Snapshot returns a stored snapshot younger than the refresh interval, or
// makes a new one. Storing it drops the expired snapshots of dates nobody
// watches.
func (d *Dashboard) Snapshot(ctx context.Context, date string) *Snapshot {
	if s, ok := d.Latest(date); ok && d.now().Sub(s.Updated) < d.config.Refresh {
		return s
	}
	s := d.Update(ctx, date)
	if ctx.Err() == nil {
		keep := d.dates()
		d.mu.Lock()
		d.latest[date] = s
		d.evict(s.Updated, keep)
		d.mu.Unlock()
	}
	return s
}

// evict drops the snapshots older than the refresh interval, except for the
// dates in keep. Must hold mu.
func (d *Dashboard) evict(now time.Time, keep []string) {
	for date, s := range d.latest {
		if now.Sub(s.Updated) >= d.config.Refresh && !slices.Contains(keep, date) {
			delete(d.latest, date)
		}
	}
}

// Run updates the dashboard now and then every refresh interval until ctx is
// done. A new round of updates cancels the one still in flight, whose
// snapshots are then thrown away.
func (d *Dashboard) Run(ctx context.Context) {
	ticker := time.NewTicker(d.config.Refresh)
	defer ticker.Stop()

	cancel := func() {}
	defer func() { cancel() }()
	for {
		cancel()
		var cycleCtx context.Context
		cycleCtx, cancel = context.WithCancel(ctx)

		d.mu.Lock()
		d.generation++
		generation := d.generation
		d.mu.Unlock()

		go d.cycle(cycleCtx, generation)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (d *Dashboard) cycle(ctx context.Context, generation uint64) {
	for _, date := range d.dates() {
		snapshot := d.Update(ctx, date)
		if !d.commit(ctx, generation, snapshot) {
			return
		}
	}
}

// commit stores and publishes a snapshot unless a newer cycle has started.
func (d *Dashboard) commit(ctx context.Context, generation uint64, snapshot *Snapshot) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if ctx.Err() != nil || generation != d.generation {
		return false
	}
	d.latest[snapshot.Date] = snapshot
	if d.Publish != nil {
		d.Publish(snapshot)
	}
	return true
}

// Normalize maps the default date to the empty date so both share snapshots.
func (d *Dashboard) Normalize(date string) string {
	if date == d.config.Source.DefaultDate {
		return ""
	}
	return date
}

func (d *Dashboard) dates() []string {
	dates := []string{""}
	if d.Watched != nil {
		for _, date := range d.Watched() {
			date = d.Normalize(date)
			if !slices.Contains(dates, date) {
				dates = append(dates, date)
			}
		}
	}
	return dates
}
