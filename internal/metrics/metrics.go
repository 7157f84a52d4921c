// Package metrics provides Prometheus metrics for the MovieCup service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "moviecup"

// Outcome labels shared by the catalog and pool collectors.
const (
	OutcomeOK           = "ok"
	OutcomeEmpty        = "empty"
	OutcomeAbsent       = "absent"
	OutcomeError        = "error"
	OutcomeInsufficient = "insufficient"
	OutcomeCanceled     = "canceled"
)

// Metrics holds every collector the service exports. Collectors live on a
// private registry so tests can create as many instances as they need.
type Metrics struct {
	registry *prometheus.Registry

	catalogPages         *prometheus.CounterVec
	certificationLookups *prometheus.CounterVec
	poolBuilds           *prometheus.CounterVec
	poolBuildDuration    prometheus.Histogram
	selections           prometheus.Counter
	tournamentsFinished  *prometheus.CounterVec
	activeSessions       prometheus.Gauge
	httpRequests         *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	auto := promauto.With(reg)

	return &Metrics{
		registry: reg,
		catalogPages: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "pages_total",
			Help:      "Discover pages requested from the catalog, by outcome",
		}, []string{"outcome"}),
		certificationLookups: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "certification_lookups_total",
			Help:      "Certification lookups, by outcome (error lookups are admitted)",
		}, []string{"outcome"}),
		poolBuilds: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "builds_total",
			Help:      "Candidate pool builds, by outcome",
		}, []string{"outcome"}),
		poolBuildDuration: auto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "build_duration_seconds",
			Help:      "Time spent assembling a candidate pool",
			Buckets:   prometheus.DefBuckets,
		}),
		selections: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tournament",
			Name:      "selections_total",
			Help:      "Accepted match selections",
		}),
		tournamentsFinished: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tournament",
			Name:      "finished_total",
			Help:      "Tournaments played to a winner, by bracket size",
		}, []string{"size"}),
		activeSessions: auto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "tournament",
			Name:      "active_sessions",
			Help:      "Tournaments currently held in memory",
		}),
		httpRequests: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests, by route pattern, method and status",
		}, []string{"route", "method", "status"}),
		httpRequestDuration: auto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency, by route pattern",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

// Registry exposes the underlying registry for tests and custom handlers.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) CatalogPage(outcome string) {
	m.catalogPages.WithLabelValues(outcome).Inc()
}

func (m *Metrics) CertificationLookup(outcome string) {
	m.certificationLookups.WithLabelValues(outcome).Inc()
}

func (m *Metrics) PoolBuild(outcome string, elapsed time.Duration) {
	m.poolBuilds.WithLabelValues(outcome).Inc()
	m.poolBuildDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) Selection() {
	m.selections.Inc()
}

func (m *Metrics) TournamentFinished(size int) {
	m.tournamentsFinished.WithLabelValues(strconv.Itoa(size)).Inc()
}

func (m *Metrics) SetActiveSessions(n int) {
	m.activeSessions.Set(float64(n))
}

// Middleware records request counts and latency keyed by the chi route
// pattern, so path parameters do not explode label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.httpRequests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		m.httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}
