// Package observability provides metrics and tracing.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ApplicationsAdmitted counts admission decisions by resulting status.
	ApplicationsAdmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "circles_applications_admitted_total",
		Help: "Applications admitted, by resulting status (PENDING or WAITLIST)",
	}, []string{"status"})

	// ApplicationsRejected counts admission attempts refused by reason code.
	ApplicationsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "circles_applications_refused_total",
		Help: "Application submissions refused, by error code",
	}, []string{"code"})

	// WaitlistPromotions counts applications moved from WAITLIST to PENDING.
	WaitlistPromotions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "circles_waitlist_promotions_total",
		Help: "Waitlisted applications promoted after a capacity increase",
	})

	// ChangeRequests counts capacity/duration proposals by outcome.
	ChangeRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "circles_change_requests_total",
		Help: "Capacity/duration change proposals and approvals, by outcome",
	}, []string{"operation", "outcome"})

	// StatusTransitions counts circle status changes.
	StatusTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "circles_status_transitions_total",
		Help: "Circle status transitions",
	}, []string{"from", "to"})

	// CacheLookups counts cache-aside lookups by result (hit, miss, error).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "circles_cache_lookups_total",
		Help: "Cache-aside lookups by result",
	}, []string{"result"})

	// RedisErrors counts Redis command failures by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "circles_redis_errors_total",
		Help: "Redis command errors by command",
	}, []string{"command"})

	// WorkflowLatency records service operation latency.
	WorkflowLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "circles_workflow_latency_seconds",
		Help:    "Latency of circle workflow operations",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
)

// TrackWorkflow returns a function that records the operation latency when called (e.g. defer).
func TrackWorkflow(operation string) func() {
	start := time.Now()
	return func() {
		WorkflowLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}
