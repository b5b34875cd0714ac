package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GatewayOperations counts gateway domain operations by name and outcome code.
	GatewayOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ecocircle_gateway_operations_total",
		Help: "Total gateway operations by name and result code",
	}, []string{"operation", "code"})

	// ModerationFailOpen counts moderation calls that failed and were waved through.
	ModerationFailOpen = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ecocircle_moderation_fail_open_total",
		Help: "Total moderation checks answered permissively after adapter failure",
	})

	// ModerationRejections counts posts blocked by the moderation adapter.
	ModerationRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ecocircle_moderation_rejections_total",
		Help: "Total post submissions rejected by content moderation",
	})

	// SnapshotStreamClients is the gauge of connected snapshot WebSocket clients.
	SnapshotStreamClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ecocircle_snapshot_stream_clients",
		Help: "Number of active snapshot stream subscribers",
	})

	// SyncTransitions counts sync-store transitions by action kind.
	SyncTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ecocircle_sync_transitions_total",
		Help: "Total synchronization store transitions by action",
	}, []string{"action"})

	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ecocircle_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})
)

// ObserveGatewayOp records the outcome of one gateway operation.
func ObserveGatewayOp(operation, code string) {
	GatewayOperations.WithLabelValues(operation, code).Inc()
}
