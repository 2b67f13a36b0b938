package observability

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type moduleMetrics struct {
	chatTotal    *prometheus.CounterVec
	chatDuration prometheus.Histogram

	upstreamTotal    *prometheus.CounterVec
	upstreamDuration prometheus.Histogram

	activeSessions prometheus.Gauge
	resetsTotal    *prometheus.CounterVec
}

var (
	metricsOnce sync.Once
	metricsInst *moduleMetrics
)

func getMetrics() *moduleMetrics {
	metricsOnce.Do(func() {
		m := &moduleMetrics{
			chatTotal: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "chat_requests_total",
					Help: "Total chat requests by status.",
				},
				[]string{"status"},
			),
			chatDuration: prometheus.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "chat_duration_seconds",
					Help:    "Chat request duration in seconds.",
					Buckets: prometheus.DefBuckets,
				},
			),
			upstreamTotal: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "upstream_requests_total",
					Help: "Total upstream generation calls by status.",
				},
				[]string{"status"},
			),
			upstreamDuration: prometheus.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "upstream_duration_seconds",
					Help:    "Upstream generation call duration in seconds.",
					Buckets: prometheus.DefBuckets,
				},
			),
			activeSessions: prometheus.NewGauge(
				prometheus.GaugeOpts{
					Name: "active_sessions",
					Help: "Current active session count.",
				},
			),
			resetsTotal: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "session_resets_total",
					Help: "Total session reset requests by status.",
				},
				[]string{"status"},
			),
		}

		prometheus.MustRegister(
			m.chatTotal,
			m.chatDuration,
			m.upstreamTotal,
			m.upstreamDuration,
			m.activeSessions,
			m.resetsTotal,
		)

		metricsInst = m
	})

	return metricsInst
}

// EnsureRegistered initializes and registers metrics the first time it is called.
func EnsureRegistered() {
	_ = getMetrics()
}

func MetricsHandler() http.Handler {
	EnsureRegistered()
	return promhttp.Handler()
}

func RecordChat(status string, duration time.Duration) {
	m := getMetrics()
	m.chatTotal.WithLabelValues(status).Inc()
	m.chatDuration.Observe(duration.Seconds())
}

func RecordUpstreamCall(status string, duration time.Duration) {
	m := getMetrics()
	m.upstreamTotal.WithLabelValues(status).Inc()
	m.upstreamDuration.Observe(duration.Seconds())
}

func SetActiveSessions(count int) {
	m := getMetrics()
	m.activeSessions.Set(float64(count))
}

func RecordSessionReset(status string) {
	m := getMetrics()
	m.resetsTotal.WithLabelValues(status).Inc()
}
