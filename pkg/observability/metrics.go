package observability

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "recipebook"

// Metrics owns the service's Prometheus collectors. Each instance has its own
// registry so several containers can live in one process.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge
	rateLimitRejects     prometheus.Counter

	busTotal    *prometheus.CounterVec
	busDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with a fresh registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		httpRequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_in_flight",
				Help:      "Current number of HTTP requests being processed",
			},
		),
		rateLimitRejects: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limit_rejects_total",
				Help:      "Total number of requests rejected by the rate limiter",
			},
		),

		busTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "bus_events_total",
				Help:      "Command and query outcomes by metric and message type",
			},
			[]string{"metric", "type"},
		),
		busDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "bus_duration_seconds",
				Help:      "Command and query handling time in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"metric", "type"},
		),
	}
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Increment bumps a bus counter such as query_count or command_errors
func (m *Metrics) Increment(metric, label string) {
	m.busTotal.WithLabelValues(metric, label).Inc()
}

// StartTimer starts timing a command or query
func (m *Metrics) StartTimer(metric, label string) Timer {
	return &timer{
		observer: m.busDuration.WithLabelValues(metric, label),
		start:    time.Now(),
	}
}

// RateLimited records a rejected request
func (m *Metrics) RateLimited() {
	m.rateLimitRejects.Inc()
}

// Timer is stopped when the timed work ends
type Timer interface {
	Stop()
}

type timer struct {
	observer prometheus.Observer
	start    time.Time
}

func (t *timer) Stop() {
	t.observer.Observe(time.Since(t.start).Seconds())
}

type routeLabelKey struct{}

// SetRouteLabel names the matched route of the current request for the
// HTTP metrics. Handlers deeper in the stack call it once they know the
// operation, which keeps label cardinality bounded.
func SetRouteLabel(ctx context.Context, label string) {
	if holder, ok := ctx.Value(routeLabelKey{}).(*string); ok {
		*holder = label
	}
}

// Middleware instruments HTTP requests with rate, error and duration metrics
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		m.httpRequestsInFlight.Inc()
		defer m.httpRequestsInFlight.Dec()

		var route string
		r = r.WithContext(context.WithValue(r.Context(), routeLabelKey{}, &route))
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		if route == "" {
			route = routePattern(r)
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.httpRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}
