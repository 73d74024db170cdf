package observability

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yungbote/roadmap-backend/internal/platform/envutil"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
)

const namespace = "roadmap"

// Metrics owns every collector on a private registry. A nil *Metrics is a
// valid no-op receiver.
type Metrics struct {
	registry *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge

	aggregateOps       *prometheus.CounterVec
	aggregateLatency   *prometheus.HistogramVec
	aggregateConflicts *prometheus.CounterVec
	aggregateRetries   *prometheus.CounterVec

	embedRequests *prometheus.CounterVec
	embedLatency  *prometheus.HistogramVec
	embedCache    *prometheus.CounterVec

	generations     *prometheus.CounterVec
	generationSteps prometheus.Histogram
	stepCompletions *prometheus.CounterVec
}

var (
	initOnce sync.Once
	instance *Metrics
)

// Enabled reads METRICS_ENABLED (default true).
func Enabled() bool {
	return envutil.Bool("METRICS_ENABLED", true)
}

func Current() *Metrics {
	return instance
}

// Init builds the process-wide collector set once. It returns nil when
// metrics are disabled.
func Init(log *logger.Logger) *Metrics {
	if !Enabled() {
		return nil
	}
	initOnce.Do(func() {
		instance = NewMetrics()
		if log != nil {
			log.Info("Prometheus metrics initialized", "namespace", namespace)
		}
	})
	return instance
}

// NewMetrics returns an unshared collector set. Tests use it directly.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "api", Name: "requests_total",
			Help: "API requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		apiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "api", Name: "request_duration_seconds",
			Help:    "API request latency in seconds.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}, []string{"method", "route"}),
		apiInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "api", Name: "inflight_requests",
			Help: "In-flight API requests.",
		}),
		aggregateOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "aggregate", Name: "operations_total",
			Help: "Aggregate write operations by name and outcome.",
		}, []string{"operation", "status"}),
		aggregateLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "aggregate", Name: "operation_duration_seconds",
			Help:    "Aggregate write latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		aggregateConflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "aggregate", Name: "conflicts_total",
			Help: "Aggregate writes rejected by a concurrency or state guard.",
		}, []string{"operation"}),
		aggregateRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "aggregate", Name: "retryable_total",
			Help: "Aggregate writes that failed with a retryable error.",
		}, []string{"operation"}),
		embedRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "embedding", Name: "requests_total",
			Help: "Embedding calls by model and outcome.",
		}, []string{"model", "status"}),
		embedLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "embedding", Name: "request_duration_seconds",
			Help:    "Embedding call latency in seconds.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"model"}),
		embedCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "embedding", Name: "cache_total",
			Help: "Embedding cache lookups by result.",
		}, []string{"result"}),
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "roadmap", Name: "generations_total",
			Help: "Roadmap generation attempts by outcome.",
		}, []string{"outcome"}),
		generationSteps: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "roadmap", Name: "generated_steps",
			Help:    "Steps per generated roadmap.",
			Buckets: []float64{5, 6, 7},
		}),
		stepCompletions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "roadmap", Name: "step_completions_total",
			Help: "Step completion calls by outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.aggregateOps, m.aggregateLatency, m.aggregateConflicts, m.aggregateRetries,
		m.embedRequests, m.embedLatency, m.embedCache,
		m.generations, m.generationSteps, m.stepCompletions,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveAPI(method, route string, status int, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	m.apiRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.apiLatency.WithLabelValues(method, route).Observe(dur.Seconds())
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) ObserveAggregateOperation(name, status string, dur time.Duration) {
	if m == nil {
		return
	}
	name = labelOr(name, "unknown")
	m.aggregateOps.WithLabelValues(name, labelOr(status, "unknown")).Inc()
	m.aggregateLatency.WithLabelValues(name).Observe(dur.Seconds())
}

func (m *Metrics) IncAggregateConflict(name string) {
	if m == nil {
		return
	}
	m.aggregateConflicts.WithLabelValues(labelOr(name, "unknown")).Inc()
}

func (m *Metrics) IncAggregateRetry(name string) {
	if m == nil {
		return
	}
	m.aggregateRetries.WithLabelValues(labelOr(name, "unknown")).Inc()
}

func (m *Metrics) ObserveEmbedding(model, status string, dur time.Duration) {
	if m == nil {
		return
	}
	model = labelOr(model, "unknown")
	m.embedRequests.WithLabelValues(model, labelOr(status, "unknown")).Inc()
	m.embedLatency.WithLabelValues(model).Observe(dur.Seconds())
}

// IncEmbeddingCache records "hit", "miss" or "error".
func (m *Metrics) IncEmbeddingCache(result string) {
	if m == nil {
		return
	}
	m.embedCache.WithLabelValues(labelOr(result, "unknown")).Inc()
}

func (m *Metrics) ObserveGeneration(outcome string, steps int) {
	if m == nil {
		return
	}
	m.generations.WithLabelValues(labelOr(outcome, "unknown")).Inc()
	if steps > 0 {
		m.generationSteps.Observe(float64(steps))
	}
}

func (m *Metrics) IncStepCompletion(outcome string) {
	if m == nil {
		return
	}
	m.stepCompletions.WithLabelValues(labelOr(outcome, "unknown")).Inc()
}

func labelOr(v, def string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return def
	}
	return v
}
