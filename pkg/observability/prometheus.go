package observability

import (
	"context"
	"net/http"
	"strconv"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "blockpress"

// PrometheusHooks implements every hook interface with Prometheus metrics.
type PrometheusHooks struct {
	renders       *prom.CounterVec
	renderSeconds *prom.HistogramVec
	finalize      prom.Histogram
	skipped       *prom.CounterVec
	cacheEvents   *prom.CounterVec
	cacheBytes    *prom.CounterVec
	requests      *prom.CounterVec
	reqSeconds    *prom.HistogramVec
}

// NewPrometheusHooks creates the metrics and registers them with reg,
// together with the Go and process collectors. A nil reg gets a fresh
// registry.
func NewPrometheusHooks(reg *prom.Registry) *PrometheusHooks {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	h := &PrometheusHooks{
		renders: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "renders_total",
			Help:      "Adapter runs by context and result",
		}, []string{"context", "result"}),
		renderSeconds: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Adapter run duration",
			Buckets:   prom.DefBuckets,
		}, []string{"context"}),
		finalize: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "finalize_duration_seconds",
			Help:      "Trusted pass duration",
			Buckets:   prom.DefBuckets,
		}),
		skipped: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "blocks_skipped_total",
			Help:      "Blocks that produced no output",
		}, []string{"context", "type", "reason"}),
		cacheEvents: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "cache_events_total",
			Help:      "Render cache hits, misses and writes",
		}, []string{"key", "event"}),
		cacheBytes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the render cache",
		}, []string{"key"}),
		requests: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "API requests by route and status",
		}, []string{"method", "route", "status"}),
		reqSeconds: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "API request duration",
			Buckets:   prom.DefBuckets,
		}, []string{"method", "route"}),
	}
	reg.MustRegister(h.renders, h.renderSeconds, h.finalize, h.skipped,
		h.cacheEvents, h.cacheBytes, h.requests, h.reqSeconds)
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return h
}

// Handler serves the metrics in reg.
func Handler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func (h *PrometheusHooks) OnRenderStart(context.Context, string, int) {}

func (h *PrometheusHooks) OnRenderComplete(_ context.Context, renderContext string, d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	h.renders.WithLabelValues(renderContext, result).Inc()
	h.renderSeconds.WithLabelValues(renderContext).Observe(d.Seconds())
}

func (h *PrometheusHooks) OnFinalize(_ context.Context, d time.Duration) {
	h.finalize.Observe(d.Seconds())
}

func (h *PrometheusHooks) OnBlockSkipped(_ context.Context, renderContext, blockType, reason string) {
	h.skipped.WithLabelValues(renderContext, blockType, reason).Inc()
}

func (h *PrometheusHooks) OnCacheHit(_ context.Context, keyType string) {
	h.cacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (h *PrometheusHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.cacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (h *PrometheusHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.cacheEvents.WithLabelValues(keyType, "set").Inc()
	h.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (h *PrometheusHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	h.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	h.reqSeconds.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ RenderHooks = (*PrometheusHooks)(nil)
	_ CacheHooks  = (*PrometheusHooks)(nil)
	_ HTTPHooks   = (*PrometheusHooks)(nil)
)
