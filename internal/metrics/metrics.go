package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_http_requests_total",
			Help: "Total HTTP requests by method, path and status",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "crm_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// ActiveSubscriptions counts open live queries per collection.
	ActiveSubscriptions = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "crm_realtime_active_subscriptions",
			Help: "Open live queries by collection",
		},
		[]string{"collection"},
	)

	SnapshotPushes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_realtime_snapshot_pushes_total",
			Help: "Result sets delivered to subscribers, by collection and outcome",
		},
		[]string{"collection", "result"},
	)

	DocumentWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_document_writes_total",
			Help: "Create/update/delete requests by collection, op and outcome",
		},
		[]string{"collection", "op", "result"},
	)

	ToastsPushed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_toasts_pushed_total",
			Help: "User notifications by kind",
		},
		[]string{"kind"},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "crm_active_sessions",
			Help: "Signed-in sessions with an open workspace",
		},
	)

	WebsocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "crm_websocket_clients",
			Help: "Connected websocket clients",
		},
	)
)

// Result labels an outcome.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
