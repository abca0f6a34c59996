// Package observability provides metrics and tracing.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chirp_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "chirp_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// LikeToggles counts like toggles by entity and outcome.
	LikeToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chirp_like_toggles_total",
		Help: "Total number of like toggles by entity and result",
	}, []string{"entity", "result"})

	// CommentsCascadeDeleted counts comments removed by thread deletion.
	CommentsCascadeDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chirp_comments_cascade_deleted_total",
		Help: "Total number of comments removed by cascading thread deletes",
	})

	// ContentCreated counts posts and comments created.
	ContentCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chirp_content_created_total",
		Help: "Total number of posts and comments created",
	}, []string{"kind"})
)

// ObserveQuery records the latency of a database query.
func ObserveQuery(operation, table string, start time.Time) {
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		ObserveQuery(operation, table, start)
	}
}
