// Package metrics provides Prometheus instrumentation for the chat server.
// It exposes gauges for connection counts and counters for message and
// moderation throughput plus snapshot outcomes.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ConnectionsOpen tracks the current number of open WebSocket connections,
	// identified or not.
	ConnectionsOpen = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "emberchat_connections_open",
		Help: "Current number of open WebSocket connections",
	})

	// UsersOnline tracks the current number of identified online users.
	UsersOnline = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "emberchat_users_online",
		Help: "Current number of identified online users",
	})

	// MessagesTotal counts processed chat messages, labeled by result:
	// "accepted" or "rejected".
	MessagesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "emberchat_messages_total",
		Help: "Total number of chat messages processed",
	}, []string{"result"})

	// BansTotal counts executed ban cascades.
	BansTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "emberchat_bans_total",
		Help: "Total number of ban cascades executed",
	})

	// MessagesEvicted counts messages removed by the retention sweep.
	MessagesEvicted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "emberchat_messages_evicted_total",
		Help: "Total number of messages evicted by the retention sweep",
	})

	// SnapshotsTotal counts snapshot save attempts, labeled by status:
	// "ok" or "error".
	SnapshotsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "emberchat_snapshots_total",
		Help: "Total number of snapshot save attempts",
	}, []string{"status"})
)

func init() {
	prometheus.MustRegister(
		ConnectionsOpen,
		UsersOnline,
		MessagesTotal,
		BansTotal,
		MessagesEvicted,
		SnapshotsTotal,
	)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
