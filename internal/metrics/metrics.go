package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bilca_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bilca_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	hireTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bilca_hire_transitions_total",
		Help: "Count of hire lifecycle operations by operation and result",
	}, []string{"operation", "result"})

	reviewsSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bilca_reviews_submitted_total",
		Help: "Count of reviews accepted",
	})

	reviewTokenRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bilca_review_token_rejections_total",
		Help: "Count of rejected review tokens by reason",
	}, []string{"reason"})

	reminderResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bilca_review_reminders_total",
		Help: "Count of review reminder attempts by result",
	}, []string{"result"})

	reminderRunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bilca_review_reminder_run_duration_seconds",
		Help:    "Duration of review reminder runs",
		Buckets: prometheus.DefBuckets,
	})

	ratingRecomputeFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bilca_rating_recompute_failures_total",
		Help: "Count of failed worker rating recomputations",
	})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveHireTransition counts a lifecycle operation. result is "ok", "conflict" or "error".
func ObserveHireTransition(operation, result string) {
	hireTransitions.WithLabelValues(operation, result).Inc()
}

func IncReviewSubmitted() {
	reviewsSubmitted.Inc()
}

func ObserveReviewTokenRejected(reason string) {
	reviewTokenRejections.WithLabelValues(reason).Inc()
}

// ObserveReminder counts one candidate outcome: "sent", "skipped" or "failed".
func ObserveReminder(result string) {
	reminderResults.WithLabelValues(result).Inc()
}

func ObserveReminderRun(duration time.Duration) {
	reminderRunDuration.Observe(duration.Seconds())
}

func IncRatingRecomputeFailure() {
	ratingRecomputeFailures.Inc()
}
