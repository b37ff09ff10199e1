// Package metrics defines and registers the custom Prometheus metrics of the
// movie list API. HTTP request metrics come from the echoprometheus
// middleware; this package holds the business counters only.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "movielist"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthAttemptsTotal counts registration and login attempts.
// Labels:
//   - operation: "register" or "login"
//   - result: "success", "invalid", "conflict", "throttled" or "error"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of register and login attempts, by result.",
	},
	[]string{"operation", "result"},
)

// ── Movie metrics ─────────────────────────────────────────────────────────────

// MovieOperationsTotal counts movie use-case calls.
// Labels:
//   - operation: "create", "list", "get", "update", "delete"
//   - result: "success" or "error"
var MovieOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "movie_operations_total",
		Help:      "Total number of movie operations, by result.",
	},
	[]string{"operation", "result"},
)

// ── Error metrics ─────────────────────────────────────────────────────────────

// ErrorResponsesTotal counts error responses rendered by the HTTP error handler.
// Label:
//   - kind: "validation", "malformed_id", "unauthenticated", "forbidden",
//     "not_found", "conflict", "throttled", "http", "internal"
var ErrorResponsesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "error_responses_total",
		Help:      "Total number of error responses, by error kind.",
	},
	[]string{"kind"},
)
