package vdrm

import (
	"expvar"
	"sync/atomic"
	"time"

	"github.com/opd-ai/go-vdrm/internal/panel"
)

// Metrics collects operational metrics for a Viewer. It is the panel's
// Observer, so every redraw and pointer query is counted. Metrics are
// exposed through expvar once RegisterExpvar is called.
//
// Thread-safe for concurrent use.
type Metrics struct {
	// Lifecycle counters
	starts          atomic.Int64
	stops           atomic.Int64
	restarts        atomic.Int64
	configReloads   atomic.Int64
	rendererReloads atomic.Int64
	errorsTotal     atomic.Int64
	eventsEmitted   atomic.Int64

	// Panel counters
	redraws3D      atomic.Int64
	redraws2D      atomic.Int64
	renderFailures atomic.Int64
	probeQueries   atomic.Int64
	probeHits      atomic.Int64

	// Render latency (nanoseconds)
	renderLatencyNs    atomic.Int64
	renderLatencyCount atomic.Int64
	lastRenderNs       atomic.Int64

	currentlyRunning atomic.Int32

	registered atomic.Bool
}

var _ panel.Observer = (*Metrics)(nil)

// NewMetrics creates a new Metrics instance.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// RegisterExpvar publishes the metrics under vdrm_* names. Safe to call
// multiple times; subsequent calls are no-ops. expvar names are global, so
// only one Metrics per process can be registered.
func (m *Metrics) RegisterExpvar() {
	if m.registered.Swap(true) {
		return
	}

	counter := func(name string, v *atomic.Int64) {
		expvar.Publish(name, expvar.Func(func() any { return v.Load() }))
	}
	counter("vdrm_starts_total", &m.starts)
	counter("vdrm_stops_total", &m.stops)
	counter("vdrm_restarts_total", &m.restarts)
	counter("vdrm_config_reloads_total", &m.configReloads)
	counter("vdrm_renderer_reloads_total", &m.rendererReloads)
	counter("vdrm_errors_total", &m.errorsTotal)
	counter("vdrm_events_emitted_total", &m.eventsEmitted)
	counter("vdrm_redraws_3d_total", &m.redraws3D)
	counter("vdrm_redraws_2d_total", &m.redraws2D)
	counter("vdrm_render_failures_total", &m.renderFailures)
	counter("vdrm_probe_queries_total", &m.probeQueries)
	counter("vdrm_probe_hits_total", &m.probeHits)

	expvar.Publish("vdrm_running", expvar.Func(func() any { return m.currentlyRunning.Load() }))
	expvar.Publish("vdrm_render_latency_last_ms", expvar.Func(func() any {
		return float64(m.lastRenderNs.Load()) / 1e6
	}))
	expvar.Publish("vdrm_render_latency_avg_ms", expvar.Func(func() any {
		return float64(safeDivide(m.renderLatencyNs.Load(), m.renderLatencyCount.Load())) / 1e6
	}))
}

// Redrawn implements panel.Observer.
func (m *Metrics) Redrawn(mode panel.Mode, elapsed time.Duration, err error) {
	if mode == panel.TwoD {
		m.redraws2D.Add(1)
	} else {
		m.redraws3D.Add(1)
	}
	if err != nil {
		m.renderFailures.Add(1)
		return
	}
	m.RecordRenderLatency(elapsed)
}

// Probed implements panel.Observer.
func (m *Metrics) Probed(hit bool) {
	m.probeQueries.Add(1)
	if hit {
		m.probeHits.Add(1)
	}
}

// MetricsSnapshot is a point-in-time copy of all metrics.
type MetricsSnapshot struct {
	Starts          int64
	Stops           int64
	Restarts        int64
	ConfigReloads   int64
	RendererReloads int64
	ErrorsTotal     int64
	EventsEmitted   int64

	Redraws3D      int64
	Redraws2D      int64
	RenderFailures int64
	ProbeQueries   int64
	ProbeHits      int64

	Running bool

	LastRenderLatency time.Duration
	RenderLatencyAvg  time.Duration
}

// Snapshot returns a point-in-time copy of all metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Starts:          m.starts.Load(),
		Stops:           m.stops.Load(),
		Restarts:        m.restarts.Load(),
		ConfigReloads:   m.configReloads.Load(),
		RendererReloads: m.rendererReloads.Load(),
		ErrorsTotal:     m.errorsTotal.Load(),
		EventsEmitted:   m.eventsEmitted.Load(),

		Redraws3D:      m.redraws3D.Load(),
		Redraws2D:      m.redraws2D.Load(),
		RenderFailures: m.renderFailures.Load(),
		ProbeQueries:   m.probeQueries.Load(),
		ProbeHits:      m.probeHits.Load(),

		Running: m.currentlyRunning.Load() > 0,

		LastRenderLatency: time.Duration(m.lastRenderNs.Load()),
		RenderLatencyAvg:  safeDivide(m.renderLatencyNs.Load(), m.renderLatencyCount.Load()),
	}
}

// IncrementStarts records a start operation.
func (m *Metrics) IncrementStarts() { m.starts.Add(1) }

// IncrementStops records a stop operation.
func (m *Metrics) IncrementStops() { m.stops.Add(1) }

// IncrementRestarts records a restart operation.
func (m *Metrics) IncrementRestarts() { m.restarts.Add(1) }

// IncrementConfigReloads records a configuration reload.
func (m *Metrics) IncrementConfigReloads() { m.configReloads.Add(1) }

// IncrementRendererReloads records a renderer script reload.
func (m *Metrics) IncrementRendererReloads() { m.rendererReloads.Add(1) }

// IncrementErrors records an error occurrence.
func (m *Metrics) IncrementErrors() { m.errorsTotal.Add(1) }

// IncrementEventsEmitted records an event emission.
func (m *Metrics) IncrementEventsEmitted() { m.eventsEmitted.Add(1) }

// SetRunning updates the running state gauge.
func (m *Metrics) SetRunning(running bool) {
	if running {
		m.currentlyRunning.Store(1)
	} else {
		m.currentlyRunning.Store(0)
	}
}

// RecordRenderLatency records the duration of a successful renderer call.
func (m *Metrics) RecordRenderLatency(d time.Duration) {
	m.renderLatencyNs.Add(d.Nanoseconds())
	m.renderLatencyCount.Add(1)
	m.lastRenderNs.Store(d.Nanoseconds())
}

// Reset clears all metrics. Useful for testing.
func (m *Metrics) Reset() {
	for _, v := range []*atomic.Int64{
		&m.starts, &m.stops, &m.restarts, &m.configReloads, &m.rendererReloads,
		&m.errorsTotal, &m.eventsEmitted,
		&m.redraws3D, &m.redraws2D, &m.renderFailures, &m.probeQueries, &m.probeHits,
		&m.renderLatencyNs, &m.renderLatencyCount, &m.lastRenderNs,
	} {
		v.Store(0)
	}
	m.currentlyRunning.Store(0)
}

// safeDivide performs safe division, returning 0 for divide by zero.
func safeDivide(total, count int64) time.Duration {
	if count == 0 {
		return 0
	}
	return time.Duration(total / count)
}

// defaultMetrics is a global metrics instance for convenience.
var defaultMetrics = NewMetrics()

// DefaultMetrics returns the global default Metrics instance.
func DefaultMetrics() *Metrics {
	return defaultMetrics
}
