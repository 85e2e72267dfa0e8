// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuditAspect Contributors

package handlers

import (
	"github.com/prometheus/client_golang/prometheus"
)

// WriterChannelFull is the counter for async writes dropped because the
// writer's channel was full. Use RegisterMetrics to register this with a
// Prometheus registry.
var WriterChannelFull = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "auditaspect_writer_channel_full_total",
		Help: "Total number of times the async audit writer channel was full",
	},
)

// WriterFailures is the counter for audit persistence failures by reason.
// Use RegisterMetrics to register this with a Prometheus registry.
var WriterFailures = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "auditaspect_writer_failures_total",
		Help: "Total number of audit persistence failures",
	},
	[]string{"reason"},
)

// WALEntries is the gauge for records currently parked in the WAL.
// Use RegisterMetrics to register this with a Prometheus registry.
var WALEntries = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "auditaspect_wal_entries",
		Help: "Current number of audit records in the WAL",
	},
)

// RegisterMetrics registers handlers package metrics with the given
// Prometheus registry. This must be called at startup to make metrics
// available on /metrics. Panics if registration fails (following
// prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(WriterChannelFull)
	reg.MustRegister(WriterFailures)
	reg.MustRegister(WALEntries)
}
