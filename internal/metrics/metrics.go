package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus collectors for rendering.
type Metrics struct {
	registry       *prometheus.Registry
	framesRendered *prometheus.CounterVec
	renderDuration prometheus.Histogram
	mediaFallbacks *prometheus.CounterVec
	activeWorkers  prometheus.Gauge
}

// New creates and registers the render metrics on a private registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	framesRendered := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "promo_frames_rendered_total",
		Help: "Total number of frames rasterized",
	}, []string{"composition"})
	renderDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "promo_frame_render_seconds",
		Help:    "Time to evaluate and rasterize one frame",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 10),
	})
	mediaFallbacks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "promo_media_fallbacks_total",
		Help: "Media elements that switched to their placeholder",
	}, []string{"kind"})
	activeWorkers := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "promo_active_workers",
		Help: "Frames currently being rendered",
	})

	registry.MustRegister(
		framesRendered,
		renderDuration,
		mediaFallbacks,
		activeWorkers,
	)

	return &Metrics{
		registry:       registry,
		framesRendered: framesRendered,
		renderDuration: renderDuration,
		mediaFallbacks: mediaFallbacks,
		activeWorkers:  activeWorkers,
	}
}

// ObserveFrame records one finished frame of a composition.
func (m *Metrics) ObserveFrame(composition string, seconds float64) {
	m.framesRendered.WithLabelValues(composition).Inc()
	m.renderDuration.Observe(seconds)
}

// IncFallback counts a media element falling back to its placeholder.
func (m *Metrics) IncFallback(kind string) {
	m.mediaFallbacks.WithLabelValues(kind).Inc()
}

func (m *Metrics) WorkerStarted() { m.activeWorkers.Inc() }
func (m *Metrics) WorkerDone()    { m.activeWorkers.Dec() }

// WriteToTextfile dumps the registry in the node_exporter textfile format.
func (m *Metrics) WriteToTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

// Handler returns an http.Handler that serves Prometheus metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
