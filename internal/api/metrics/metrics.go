// Package metrics defines all custom Prometheus metrics for the attendance
// backend. It is the single source of truth for metric names, labels, and
// help strings; metrics are registered with the default registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "attendance"

// ── Recognition session metrics ───────────────────────────────────────────────

// SessionsStartedTotal counts recognition sessions started successfully.
var SessionsStartedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "recognition_sessions_started_total",
		Help:      "Total number of recognition sessions started.",
	},
)

// SessionsActive tracks the current number of registered worker processes.
var SessionsActive = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "recognition_sessions_active",
		Help:      "Current number of live recognition worker processes.",
	},
)

// SessionErrorsTotal counts session operations that failed.
// Label:
//   - reason: short description of the failure (e.g. "spawn", "staging")
var SessionErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "recognition_session_errors_total",
		Help:      "Total number of failed recognition session operations.",
	},
	[]string{"reason"},
)

// StagedFaces tracks how many face images the last corpus refresh staged.
var StagedFaces = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "staged_faces",
		Help:      "Number of face images staged by the last corpus refresh.",
	},
)

// ── Callback metrics ──────────────────────────────────────────────────────────

// CallbacksProcessedTotal counts worker callbacks by outcome.
// Label:
//   - result: the resulting attendance status ("present", "half_day") or "error"
var CallbacksProcessedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "callbacks_processed_total",
		Help:      "Total number of worker mark callbacks processed, by outcome.",
	},
	[]string{"result"},
)

// CallbackDedupTotal counts deduplication decisions on callbacks.
// Label:
//   - result: "hit" (replay, skipped) or "miss" (new callback, processed)
var CallbackDedupTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "callback_dedup_total",
		Help:      "Total number of callback deduplication checks, labelled by result (hit/miss).",
	},
	[]string{"result"},
)

// CallbackDuration measures end-to-end processing time of one callback.
var CallbackDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "callback_duration_seconds",
		Help:      "Duration of callback processing from receipt to persistence.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
)

// AuditQueueDepth tracks events buffered in the audit dispatcher's channels.
var AuditQueueDepth = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Number of recognition events waiting in the audit dispatcher.",
	},
)

// ── Attendance metrics ────────────────────────────────────────────────────────

// AttendanceUpsertsTotal counts daily record writes by derived status.
// Label:
//   - status: "present" or "half_day"
var AttendanceUpsertsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "attendance_upserts_total",
		Help:      "Total number of attendance records created or updated, by status.",
	},
	[]string{"status"},
)
