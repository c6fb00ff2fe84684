package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	framesSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "duochat",
			Subsystem: "frames",
			Name:      "sent_total",
			Help:      "Frames written to the peer.",
		},
		[]string{"role", "kind"},
	)
	framesReceived = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "duochat",
			Subsystem: "frames",
			Name:      "received_total",
			Help:      "Frames read from the peer.",
		},
		[]string{"role", "kind"},
	)
	payloadBytes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "duochat",
			Subsystem: "frames",
			Name:      "payload_bytes_total",
			Help:      "Payload bytes carried by frames, by direction.",
		},
		[]string{"role", "direction"},
	)
	truncations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "duochat",
			Subsystem: "frames",
			Name:      "payload_truncations_total",
			Help:      "Outgoing payloads cut to the maximum frame payload.",
		},
		[]string{"role", "kind"},
	)
	sessions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "duochat",
			Subsystem: "session",
			Name:      "ended_total",
			Help:      "Sessions ended, by outcome.",
		},
		[]string{"role", "outcome"},
	)
	sessionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "duochat",
			Subsystem: "session",
			Name:      "duration_seconds",
			Help:      "Session duration from handshake to teardown.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		},
		[]string{"role", "outcome"},
	)
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "duochat",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests to the metrics listener.",
		},
		[]string{"method", "path", "status"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(framesSent, framesReceived, payloadBytes, truncations, sessions, sessionDuration, httpRequests)
	})
}

func RecordFrameSent(role, kind string, payloadLen int, truncated bool) {
	RegisterMetrics()
	framesSent.WithLabelValues(role, kind).Inc()
	payloadBytes.WithLabelValues(role, "sent").Add(float64(payloadLen))
	if truncated {
		truncations.WithLabelValues(role, kind).Inc()
	}
}

func RecordFrameReceived(role, kind string, payloadLen int) {
	RegisterMetrics()
	framesReceived.WithLabelValues(role, kind).Inc()
	payloadBytes.WithLabelValues(role, "received").Add(float64(payloadLen))
}

func RecordSessionEnd(role, outcome string, duration time.Duration) {
	RegisterMetrics()
	sessions.WithLabelValues(role, outcome).Inc()
	sessionDuration.WithLabelValues(role, outcome).Observe(duration.Seconds())
}

func RecordHTTPRequest(method, path string, status int) {
	RegisterMetrics()
	httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
}
