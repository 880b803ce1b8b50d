package observability

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus implements FitHooks, CacheHooks and HTTPHooks backed by
// Prometheus collectors. Collectors are registered lazily on first use.
type Prometheus struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	fitPasses    *prometheus.CounterVec
	fitMoved     *prometheus.CounterVec
	fitDuration  prometheus.Histogram
	fitOverflow  prometheus.Gauge
	cacheLookups *prometheus.CounterVec
	cacheBytes   prometheus.Counter
	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
}

var (
	_ FitHooks   = (*Prometheus)(nil)
	_ CacheHooks = (*Prometheus)(nil)
	_ HTTPHooks  = (*Prometheus)(nil)
)

// NewPrometheus creates Prometheus-backed hooks.
// A nil reg uses prometheus.DefaultRegisterer; an empty namespace uses "overflow".
func NewPrometheus(reg prometheus.Registerer, namespace string) *Prometheus {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "overflow"
	}
	return &Prometheus{reg: reg, namespace: namespace}
}

func (p *Prometheus) ensureRegistered() {
	p.once.Do(func() {
		p.fitPasses = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "fit",
			Name:      "passes_total",
			Help:      "Fitting passes by whether they changed the partition.",
		}, []string{"changed"})

		p.fitMoved = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "fit",
			Name:      "items_moved_total",
			Help:      "Items moved between the visible and hidden queues.",
		}, []string{"to"})

		p.fitDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "fit",
			Name:      "duration_seconds",
			Help:      "Wall time of fitting passes.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		})

		p.fitOverflow = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "fit",
			Name:      "hidden_items",
			Help:      "Hidden item count after the most recent pass.",
		})

		p.cacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Cache lookups by key type and result.",
		}, []string{"type", "result"})

		p.cacheBytes = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "cache",
			Name:      "written_bytes_total",
			Help:      "Bytes written to the cache.",
		})

		p.httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Served requests by method, route and status.",
		}, []string{"method", "route", "status"})

		p.httpLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"})

		p.reg.MustRegister(
			p.fitPasses, p.fitMoved, p.fitDuration, p.fitOverflow,
			p.cacheLookups, p.cacheBytes,
			p.httpRequests, p.httpLatency,
		)
	})
}

// OnFit records a fitting pass.
func (p *Prometheus) OnFit(e FitEvent) {
	p.ensureRegistered()
	p.fitPasses.WithLabelValues(strconv.FormatBool(e.Changed)).Inc()
	p.fitMoved.WithLabelValues("visible").Add(float64(e.Shown))
	p.fitMoved.WithLabelValues("hidden").Add(float64(e.Hidden))
	p.fitDuration.Observe(e.Duration.Seconds())
	p.fitOverflow.Set(float64(e.Overflow))
}

// OnCacheHit records a cache hit.
func (p *Prometheus) OnCacheHit(_ context.Context, keyType string) {
	p.ensureRegistered()
	p.cacheLookups.WithLabelValues(keyType, "hit").Inc()
}

// OnCacheMiss records a cache miss.
func (p *Prometheus) OnCacheMiss(_ context.Context, keyType string) {
	p.ensureRegistered()
	p.cacheLookups.WithLabelValues(keyType, "miss").Inc()
}

// OnCacheSet records a cache write.
func (p *Prometheus) OnCacheSet(_ context.Context, _ string, size int) {
	p.ensureRegistered()
	p.cacheBytes.Add(float64(size))
}

// OnResponse records a served request.
func (p *Prometheus) OnResponse(_ context.Context, method, route string, statusCode int, duration time.Duration) {
	p.ensureRegistered()
	p.httpRequests.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	p.httpLatency.WithLabelValues(route).Observe(duration.Seconds())
}
