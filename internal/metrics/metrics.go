// Package metrics holds the Prometheus collectors of the sync service.
// They are registered with the default registry and served on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// SyncRunsTotal counts finished engine runs by kind and outcome
	SyncRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "termsync_sync_runs_total",
			Help: "Total number of sync engine runs",
		},
		[]string{"kind", "outcome"},
	)

	// SyncDuration tracks how long engine runs take
	SyncDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "termsync_sync_duration_seconds",
			Help:    "Duration of sync engine runs",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
		},
		[]string{"kind"},
	)

	// DocumentsUpserted counts documents sent to the index for upsert
	DocumentsUpserted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "termsync_documents_upserted_total",
			Help: "Total number of concept documents upserted",
		},
	)

	// DocumentsDeleted counts documents sent to the index for deletion
	DocumentsDeleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "termsync_documents_deleted_total",
			Help: "Total number of concept documents deleted",
		},
	)

	// BulkFailures counts bulk writes rejected by the index
	BulkFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "termsync_bulk_failures_total",
			Help: "Total number of failed bulk index requests",
		},
	)

	// NotificationsTotal counts received change notifications by event type
	NotificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "termsync_notifications_total",
			Help: "Total number of change notifications received",
		},
		[]string{"type"},
	)

	// QueueDepth tracks jobs waiting for the sync worker
	QueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "termsync_queue_depth",
			Help: "Number of jobs waiting in the notification queue",
		},
	)
)

func init() {
	prometheus.MustRegister(SyncRunsTotal)
	prometheus.MustRegister(SyncDuration)
	prometheus.MustRegister(DocumentsUpserted)
	prometheus.MustRegister(DocumentsDeleted)
	prometheus.MustRegister(BulkFailures)
	prometheus.MustRegister(NotificationsTotal)
	prometheus.MustRegister(QueueDepth)
}
