package observability

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics implements every hook interface with Prometheus collectors.
type Metrics struct {
	generations    *prometheus.CounterVec
	generateTime   prometheus.Histogram
	gridVertices   prometheus.Histogram
	exports        *prometheus.CounterVec
	exportTime     prometheus.Histogram
	cacheEvents    *prometheus.CounterVec
	cacheBytes     *prometheus.CounterVec
	requests       *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
// It panics if a collector is already registered, like prometheus.MustRegister.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gridder_generations_total",
			Help: "Grid generations by outcome.",
		}, []string{"status"}),
		generateTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "gridder_generate_duration_seconds",
			Help:    "Time spent generating grids.",
			Buckets: prometheus.DefBuckets,
		}),
		gridVertices: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "gridder_grid_vertices",
			Help:    "Vertex count of generated grids.",
			Buckets: prometheus.ExponentialBuckets(4, 4, 10),
		}),
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gridder_exports_total",
			Help: "Export and render runs by format set and outcome.",
		}, []string{"formats", "status"}),
		exportTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "gridder_export_duration_seconds",
			Help:    "Time spent exporting and rendering.",
			Buckets: prometheus.DefBuckets,
		}),
		cacheEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gridder_cache_events_total",
			Help: "Cache hits, misses and writes by key type.",
		}, []string{"key_type", "event"}),
		cacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gridder_cache_written_bytes_total",
			Help: "Bytes written to the cache by key type.",
		}, []string{"key_type"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gridder_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "code"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gridder_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	reg.MustRegister(
		m.generations, m.generateTime, m.gridVertices,
		m.exports, m.exportTime,
		m.cacheEvents, m.cacheBytes,
		m.requests, m.requestLatency,
	)
	return m
}

// Install registers m as the pipeline, cache and server hooks.
func (m *Metrics) Install() {
	SetPipelineHooks(m)
	SetCacheHooks(m)
	SetServerHooks(m)
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *Metrics) OnGenerateStart(context.Context, int, int) {}

func (m *Metrics) OnGenerateComplete(_ context.Context, vertices, _ int, d time.Duration, err error) {
	m.generations.WithLabelValues(status(err)).Inc()
	m.generateTime.Observe(d.Seconds())
	if err == nil {
		m.gridVertices.Observe(float64(vertices))
	}
}

func (m *Metrics) OnExportStart(context.Context, []string) {}

func (m *Metrics) OnExportComplete(_ context.Context, formats []string, d time.Duration, err error) {
	m.exports.WithLabelValues(strings.Join(formats, ","), status(err)).Inc()
	m.exportTime.Observe(d.Seconds())
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cacheEvents.WithLabelValues(keyType, "set").Inc()
	m.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (m *Metrics) OnRequest(_ context.Context, method, route string, code int, d time.Duration) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.requestLatency.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ PipelineHooks = (*Metrics)(nil)
	_ CacheHooks    = (*Metrics)(nil)
	_ ServerHooks   = (*Metrics)(nil)
)
