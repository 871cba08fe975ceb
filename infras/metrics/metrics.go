package metrics

import (
	"net/http"
	"rms/config"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const (
	OutcomeAvailable   = "available"
	OutcomeFullyBooked = "fully_booked"
	OutcomeFound       = "found"
	OutcomeNotFound    = "not_found"
	OutcomeCommitted   = "committed"
	OutcomeConflict    = "conflict"
	OutcomeNoCapacity  = "no_capacity"
	OutcomeError       = "error"
)

type Metrics interface {
	ObserveHTTP(method, route string, status int, elapsed time.Duration)
	AvailabilityQuery(kind, outcome string)
	ReservationCommit(outcome string)
	WaitlistSuggestions(count int)
	Handler() http.Handler
}

type metricsImpl struct {
	registry     *prometheus.Registry
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	availability *prometheus.CounterVec
	commits      *prometheus.CounterVec
	suggestions  prometheus.Counter
}

// New registers the collectors on a private registry so tests and multiple
// instances never collide on the global one.
func New(cfg *config.Config) Metrics {
	namespace := cfg.Metrics.Namespace
	registry := prometheus.NewRegistry()

	m := &metricsImpl{
		registry: registry,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route pattern and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		availability: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "availability_queries_total",
			Help:      "Availability, alternative and capacity queries by outcome.",
		}, []string{"kind", "outcome"}),
		commits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reservation_commits_total",
			Help:      "Reservation commit attempts by outcome.",
		}, []string{"outcome"}),
		suggestions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "waitlist_suggestions_total",
			Help:      "Waitlist entries suggested for notification.",
		}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.availability,
		m.commits,
		m.suggestions,
	)

	log.Info().Str("namespace", namespace).Msg("Metrics registry initialized")

	return m
}

func (m *metricsImpl) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *metricsImpl) AvailabilityQuery(kind, outcome string) {
	m.availability.WithLabelValues(kind, outcome).Inc()
}

func (m *metricsImpl) ReservationCommit(outcome string) {
	m.commits.WithLabelValues(outcome).Inc()
}

func (m *metricsImpl) WaitlistSuggestions(count int) {
	m.suggestions.Add(float64(count))
}

func (m *metricsImpl) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
