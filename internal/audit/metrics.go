// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuditAspect Contributors

package audit

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Dispatches is the counter for phase dispatches with at least one
// resolved handler. Use RegisterMetrics to register this with a
// Prometheus registry.
var Dispatches = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "auditaspect_dispatches_total",
		Help: "Total number of audit phase dispatches",
	},
	[]string{"phase"},
)

// HandlerInvocations is the counter for individual handler invocations.
// Use RegisterMetrics to register this with a Prometheus registry.
var HandlerInvocations = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "auditaspect_handler_invocations_total",
		Help: "Total number of audit handler invocations by outcome",
	},
	[]string{"handler", "phase", "status"},
)

// HandlerDuration is the histogram for handler invocation duration.
// Use RegisterMetrics to register this with a Prometheus registry.
var HandlerDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "auditaspect_handler_duration_seconds",
		Help:    "Audit handler invocation duration in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"handler", "phase"},
)

// RegisterMetrics registers audit package metrics with the given
// Prometheus registry. This must be called at startup to make metrics
// available on /metrics. Panics if registration fails (following
// prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(Dispatches)
	reg.MustRegister(HandlerInvocations)
	reg.MustRegister(HandlerDuration)
}

// recordDispatch increments the dispatch counter for a phase.
func recordDispatch(phase Phase) {
	Dispatches.WithLabelValues(phase.String()).Inc()
}

// recordHandlerInvocation increments the handler invocation counter.
func recordHandlerInvocation(handler string, phase Phase, status Status) {
	HandlerInvocations.WithLabelValues(handler, phase.String(), string(status)).Inc()
}

// recordHandlerDuration records the duration of one handler invocation.
func recordHandlerDuration(handler string, phase Phase, duration time.Duration) {
	HandlerDuration.WithLabelValues(handler, phase.String()).Observe(duration.Seconds())
}
