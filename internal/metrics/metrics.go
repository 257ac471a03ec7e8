// Package metrics exposes the office server's prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "office"

// Access broker outcomes, labelled by decision.
const (
	DecisionApproved     = "approved"
	DecisionDenied       = "denied"
	DecisionExpired      = "expired"
	DecisionUnauthorized = "unauthorized"
	DecisionStale        = "stale"
)

var (
	AccessRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "broker",
		Name:      "access_requests_total",
		Help:      "Access requests forwarded to a host, by access type.",
	}, []string{"type"})

	AccessDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "broker",
		Name:      "access_decisions_total",
		Help:      "Terminal outcomes of access requests.",
	}, []string{"decision"})

	ActiveShares = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "broker",
		Name:      "active_shares",
		Help:      "Seats with a recorded sharer.",
	})

	Rooms = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "rooms",
		Help:      "Running room loops.",
	})

	Sessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "signal_sessions",
		Help:      "Open signal websocket connections.",
	})

	DroppedFrames = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "dropped_frames_total",
		Help:      "Frames not delivered because a member queue was full.",
	})
)
