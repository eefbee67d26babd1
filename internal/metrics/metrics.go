// Package metrics exposes Prometheus collectors for the client core.
package metrics

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "marketclient_http_requests_total",
		Help: "HTTP attempts by method and outcome status (\"network\" when no response arrived).",
	}, []string{"method", "status"})

	HTTPRetries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "marketclient_http_retries_total",
		Help: "HTTP attempts that were retried after a retryable failure.",
	}, []string{"method"})

	AuthExpired = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "marketclient_auth_expired_total",
		Help: "Requests that ended in 401 and invalidated the stored session.",
	})

	QueueEnqueued = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "marketclient_offline_queue_enqueued_total",
		Help: "Mutating actions recorded while offline.",
	})
	QueueReplayed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "marketclient_offline_queue_replayed_total",
		Help: "Queued actions replayed successfully.",
	})
	QueueDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "marketclient_offline_queue_dropped_total",
		Help: "Queued actions dropped after exhausting replay attempts.",
	})
	QueueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "marketclient_offline_queue_depth",
		Help: "Actions currently waiting in the offline queue.",
	})

	CacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "marketclient_cache_lookups_total",
		Help: "Read-through cache lookups by result (hit, miss, expired).",
	}, []string{"result"})

	RealtimeConnected = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "marketclient_realtime_connected",
		Help: "1 while the realtime channel is open.",
	})
	RealtimeReconnects = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "marketclient_realtime_reconnects_scheduled_total",
		Help: "Reconnect attempts scheduled after an unexpected close.",
	})
	RealtimeFrames = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "marketclient_realtime_frames_total",
		Help: "Inbound realtime frames by event type.",
	}, []string{"type"})
)

var registerOnce sync.Once

// Register adds all collectors to the default registry. Safe to call twice.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			HTTPRequests, HTTPRetries, AuthExpired,
			QueueEnqueued, QueueReplayed, QueueDropped, QueueDepth,
			CacheLookups,
			RealtimeConnected, RealtimeReconnects, RealtimeFrames,
		)
	})
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// StatusLabel renders an HTTP status for the status label; 0 means no response.
func StatusLabel(code int) string {
	if code == 0 {
		return "network"
	}
	return strconv.Itoa(code)
}
