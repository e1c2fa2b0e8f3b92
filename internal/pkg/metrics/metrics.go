// Package metrics defines and registers all custom Prometheus metrics for the
// BookWise lending API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// init through promauto and exposed by the /metrics route.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "bookwise"

// ── Loan metrics ──────────────────────────────────────────────────────────────

// LoansCreatedTotal counts newly created loans.
// Label:
//   - workflow: "direct" or "approval"
var LoansCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "loans_created_total",
		Help:      "Total number of loans created, by workflow.",
	},
	[]string{"workflow"},
)

// LoanTransitionsTotal counts successful lifecycle transitions.
// Label:
//   - transition: e.g. "verified", "approved", "return_initiated"
var LoanTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "loan_transitions_total",
		Help:      "Total number of successful loan transitions.",
	},
	[]string{"transition"},
)

// LoanTransitionErrorsTotal counts rejected transitions.
// Labels:
//   - operation: the attempted operation (e.g. "verify", "extend")
//   - reason: "not_found", "forbidden", "invalid_transition", "invalid_operation" or "other"
var LoanTransitionErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "loan_transition_errors_total",
		Help:      "Total number of rejected loan operations.",
	},
	[]string{"operation", "reason"},
)

// IdempotencyTotal counts idempotency key lookups on loan creation.
// Label:
//   - result: "hit" (replayed) or "miss" (new loan)
var IdempotencyTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "loan_idempotency_total",
		Help:      "Total number of idempotency checks, labelled by result (hit/miss).",
	},
	[]string{"result"},
)

// OverdueMarkedTotal counts loans flipped to overdue by the sweeper.
var OverdueMarkedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "loans_overdue_marked_total",
		Help:      "Total number of loans marked overdue by the sweeper.",
	},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AuditQueueDepth tracks the number of events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of loan events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// AuditWriteDuration measures how long persisting a single loan event takes.
// Label:
//   - result: "ok" or "error"
var AuditWriteDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "audit_write_duration_seconds",
		Help:      "Duration of loan event persistence.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"result"},
)

// AuditDroppedTotal counts events dropped because a worker channel was full.
var AuditDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_dropped_total",
		Help:      "Total number of loan events dropped because the audit queue was full.",
	},
)

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthLoginsTotal counts login attempts.
// Label:
//   - result: "ok" or "failed"
var AuthLoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)
