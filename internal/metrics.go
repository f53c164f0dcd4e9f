package internal

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics are the Prometheus collectors of the dashboard, on their own registry.
type Metrics struct {
	registry *prometheus.Registry

	updates       *prometheus.CounterVec
	fetchDuration prometheus.Histogram
	samples       *prometheus.GaugeVec
	latest        *prometheus.GaugeVec
	requests      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		updates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "powerdash_updates_total",
				Help: "Dashboard updates, labeled by result.",
			},
			[]string{"result"},
		),
		fetchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "powerdash_fetch_duration_seconds",
				Help:    "Time taken to fetch a day's CSV file.",
				Buckets: prometheus.DefBuckets,
			},
		),
		samples: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "powerdash_chart_samples",
				Help: "Samples drawn on a chart by the last update.",
			},
			[]string{"chart"},
		),
		latest: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "powerdash_chart_latest_value",
				Help: "Latest value of a chart series.",
			},
			[]string{"chart", "series"},
		),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total HTTP requests processed, labeled by status code and method.",
			},
			[]string{"code", "method"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "http_request_duration_seconds",
				Help: "Duration of HTTP requests.",
			},
			[]string{"handler", "method"},
		),
	}
	m.registry.MustRegister(m.updates, m.fetchDuration, m.samples, m.latest, m.requests, m.duration)
	return m
}

// Handler serves the metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Instrument counts and times the requests served by h.
func (m *Metrics) Instrument(name string, h http.Handler) http.Handler {
	return promhttp.InstrumentHandlerDuration(
		m.duration.MustCurryWith(prometheus.Labels{"handler": name}),
		promhttp.InstrumentHandlerCounter(m.requests, h),
	)
}

// GaugeFunc registers a gauge read at scrape time.
func (m *Metrics) GaugeFunc(name, help string, f func() float64) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{Name: name, Help: help}, f))
}

func (m *Metrics) observeFetch(start time.Time) {
	m.fetchDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) observeUpdate(err error) {
	if err != nil {
		m.updates.WithLabelValues("error").Inc()
		return
	}
	m.updates.WithLabelValues("ok").Inc()
}

func (m *Metrics) observeChart(spec ChartSpec) {
	m.samples.WithLabelValues(spec.ID).Set(float64(len(spec.Primary)))
	if last, ok := spec.Primary.Last(); ok {
		m.latest.WithLabelValues(spec.ID, spec.Label).Set(last.Value)
	}
	if last, ok := spec.Secondary.Last(); ok {
		m.latest.WithLabelValues(spec.ID, spec.SecondaryLabel).Set(last.Value)
	}
}
