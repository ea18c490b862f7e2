package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics. Each instance owns its registry, so
// tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Dashboard metrics
	Widgets            prometheus.Gauge
	Presets            prometheus.Gauge
	Activations        *prometheus.CounterVec
	FocusTransitions   *prometheus.CounterVec
	FeedEntries        prometheus.Counter
	PersistDuration    *prometheus.HistogramVec
	PersistenceFailure *prometheus.CounterVec

	// Broadcast metrics
	Events        *prometheus.CounterVec
	EventsDropped *prometheus.CounterVec
	WSConnections prometheus.Gauge

	startTime time.Time
}

// NewMetrics creates a new metrics collector with its own registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	m := &Metrics{
		registry:  reg,
		startTime: time.Now(),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ari_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ari_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"method", "path"},
		),

		Widgets: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "ari_widgets",
				Help: "Number of widgets on the dashboard",
			},
		),
		Presets: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "ari_presets",
				Help: "Number of saved presets",
			},
		),
		Activations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ari_preset_activations_total",
				Help: "Total number of preset activations",
			},
			[]string{"preset"},
		),
		FocusTransitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ari_focus_transitions_total",
				Help: "Total number of focus and unfocus operations",
			},
			[]string{"direction"},
		),
		FeedEntries: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "ari_feed_entries_total",
				Help: "Total number of activity feed entries added",
			},
		),
		PersistDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ari_persist_duration_seconds",
				Help:    "Document write duration in seconds",
				Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .5},
			},
			[]string{"document", "status"},
		),
		PersistenceFailure: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ari_persistence_failures_total",
				Help: "Total number of failed document writes",
			},
			[]string{"document"},
		),

		Events: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ari_broadcast_events_total",
				Help: "Total number of events broadcast to displays",
			},
			[]string{"event"},
		),
		EventsDropped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ari_broadcast_events_dropped_total",
				Help: "Events dropped because a client send queue was full",
			},
			[]string{"event"},
		),
		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "ari_ws_connections",
				Help: "Number of connected displays",
			},
		),
	}

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "ari_uptime_seconds",
			Help: "Backend uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// Registry returns the registry the metrics are registered with.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the Prometheus exposition format for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// SetWidgets sets the number of widgets on the dashboard
func (m *Metrics) SetWidgets(count int) {
	m.Widgets.Set(float64(count))
}

// SetPresets sets the number of saved presets
func (m *Metrics) SetPresets(count int) {
	m.Presets.Set(float64(count))
}

// IncActivations counts a preset activation
func (m *Metrics) IncActivations(preset string) {
	m.Activations.WithLabelValues(preset).Inc()
}

// IncFocus counts a focus ("in") or unfocus ("out") transition
func (m *Metrics) IncFocus(direction string) {
	m.FocusTransitions.WithLabelValues(direction).Inc()
}

// IncFeedEntries counts an added feed entry
func (m *Metrics) IncFeedEntries() {
	m.FeedEntries.Inc()
}

// RecordPersist records a document write and counts failures
func (m *Metrics) RecordPersist(document string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
		m.PersistenceFailure.WithLabelValues(document).Inc()
	}
	m.PersistDuration.WithLabelValues(document, status).Observe(duration.Seconds())
}

// RecordEvent counts a broadcast event
func (m *Metrics) RecordEvent(event string) {
	m.Events.WithLabelValues(event).Inc()
}

// RecordDropped counts an event dropped for one client
func (m *Metrics) RecordDropped(event string) {
	m.EventsDropped.WithLabelValues(event).Inc()
}

// IncWSConnections increments WebSocket connections
func (m *Metrics) IncWSConnections() {
	m.WSConnections.Inc()
}

// DecWSConnections decrements WebSocket connections
func (m *Metrics) DecWSConnections() {
	m.WSConnections.Dec()
}
