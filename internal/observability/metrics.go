package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce        sync.Once
	httpRequestsTotal   *prometheus.CounterVec
	httpLatencySeconds  *prometheus.HistogramVec
	doubtsOpenedTotal   prometheus.Counter
	doubtTurnsTotal     *prometheus.CounterVec
	replyEmailsTotal    *prometheus.CounterVec
	responseUpsertTotal *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors for the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mentorhub_http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mentorhub_http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		doubtsOpenedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mentorhub_doubts_opened_total",
			Help: "Total number of doubt threads created.",
		})

		doubtTurnsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mentorhub_doubt_turns_total",
			Help: "Total number of conversation turns appended, by turn type.",
		}, []string{"type"})

		replyEmailsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mentorhub_reply_emails_total",
			Help: "Reply notification email attempts, by outcome.",
		}, []string{"outcome"})

		responseUpsertTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mentorhub_responses_submitted_total",
			Help: "Assignment response submissions accepted, by status.",
		}, []string{"status"})

		prometheus.MustRegister(
			httpRequestsTotal, httpLatencySeconds,
			doubtsOpenedTotal, doubtTurnsTotal, replyEmailsTotal, responseUpsertTotal,
		)
	})
}

// HTTPRequests exposes the request counter.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// DoubtsOpened exposes the thread-creation counter.
func DoubtsOpened() prometheus.Counter {
	RegisterMetrics()
	return doubtsOpenedTotal
}

// DoubtTurns exposes the per-type turn counter.
func DoubtTurns() *prometheus.CounterVec {
	RegisterMetrics()
	return doubtTurnsTotal
}

// ReplyEmails exposes the email outcome counter.
func ReplyEmails() *prometheus.CounterVec {
	RegisterMetrics()
	return replyEmailsTotal
}

// ResponsesSubmitted exposes the accepted-submission counter.
func ResponsesSubmitted() *prometheus.CounterVec {
	RegisterMetrics()
	return responseUpsertTotal
}
