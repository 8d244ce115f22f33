package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce       sync.Once
	apiRequestsTotal   *prometheus.CounterVec
	apiLatencySeconds  *prometheus.HistogramVec
	apiErrorsTotal     *prometheus.CounterVec
	matchRequestsTotal *prometheus.CounterVec
	matchLatency       prometheus.Histogram
	requestTransitions *prometheus.CounterVec
	sessionTransitions *prometheus.CounterVec
	notificationsTotal *prometheus.CounterVec
	sseClientsActive   prometheus.Gauge
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mentorlink_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mentorlink_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mentorlink_errors_total",
			Help: "Total number of error responses returned by API endpoints.",
		}, []string{"method", "route", "status"})

		matchRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mentorlink_match_requests_total",
			Help: "Mentor match computations by cache outcome.",
		}, []string{"result"})

		matchLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "mentorlink_match_latency_seconds",
			Help:    "Latency distribution for mentor match scoring.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		})

		requestTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mentorlink_request_transitions_total",
			Help: "Mentoring request state transitions by target status.",
		}, []string{"status"})

		sessionTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mentorlink_session_transitions_total",
			Help: "Session state transitions by target status.",
		}, []string{"status"})

		notificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mentorlink_notifications_published_total",
			Help: "Notifications published to users, by type.",
		}, []string{"type"})

		sseClientsActive = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mentorlink_sse_clients_active",
			Help: "Number of currently connected SSE notification streams.",
		})

		prometheus.MustRegister(
			apiRequestsTotal,
			apiLatencySeconds,
			apiErrorsTotal,
			matchRequestsTotal,
			matchLatency,
			requestTransitions,
			sessionTransitions,
			notificationsTotal,
			sseClientsActive,
		)
	})
}

// APIRequests exposes the counter for served requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for served requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// MatchRequests exposes the counter for match computations.
func MatchRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return matchRequestsTotal
}

// MatchLatency exposes the histogram for match scoring latency.
func MatchLatency() prometheus.Histogram {
	RegisterMetrics()
	return matchLatency
}

// RequestTransitions exposes the counter for request lifecycle transitions.
func RequestTransitions() *prometheus.CounterVec {
	RegisterMetrics()
	return requestTransitions
}

// SessionTransitions exposes the counter for session lifecycle transitions.
func SessionTransitions() *prometheus.CounterVec {
	RegisterMetrics()
	return sessionTransitions
}

// NotificationsPublishedTotal exposes the counter for published notifications.
func NotificationsPublishedTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return notificationsTotal
}

// SSEClientsActive exposes the gauge for connected SSE clients.
func SSEClientsActive() prometheus.Gauge {
	RegisterMetrics()
	return sseClientsActive
}
