package models

import "time"

// SystemMetrics is a JSON summary of the counters exported to Prometheus.
type SystemMetrics struct {
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	PersistTotal             uint64    `json:"persist_total"`
	PersistFailures          uint64    `json:"persist_failures"`
	AveragePersistDurationMs float64   `json:"average_persist_duration_ms"`
	SnapshotsApplied         uint64    `json:"snapshots_applied"`
	SnapshotsIgnored         uint64    `json:"snapshots_ignored"`
	Revision                 int64     `json:"revision"`
	EventClients             int64     `json:"event_clients"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
