package mocks

import (
	"net/http"
	"rms/infras/metrics"
	"time"
)

type metricsImpl struct {
}

// ObserveHTTP implements metrics.Metrics.
func (m *metricsImpl) ObserveHTTP(_, _ string, _ int, _ time.Duration) {

}

// AvailabilityQuery implements metrics.Metrics.
func (m *metricsImpl) AvailabilityQuery(_, _ string) {

}

// ReservationCommit implements metrics.Metrics.
func (m *metricsImpl) ReservationCommit(_ string) {

}

// WaitlistSuggestions implements metrics.Metrics.
func (m *metricsImpl) WaitlistSuggestions(_ int) {

}

// Handler implements metrics.Metrics.
func (m *metricsImpl) Handler() http.Handler {
	return http.NotFoundHandler()
}

func NewMetrics() metrics.Metrics {
	return &metricsImpl{}
}
