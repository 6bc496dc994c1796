//
// (C) Copyright 2025 Intel Corporation.
//
// SPDX-License-Identifier: BSD-2-Clause-Patent
//

package nvme

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Command results recorded by Metrics.
const (
	ResultSuccess        = "success"
	ResultDeviceError    = "device_error"
	ResultTransportError = "transport_error"
)

// Metrics counts and times dispatched commands. It implements
// prometheus.Collector so it can be registered with any registry.
type Metrics struct {
	commands *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics returns an initialized Metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{
		commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "nvme",
				Name:      "commands_total",
				Help:      "Number of NVMe commands dispatched, by result.",
			},
			[]string{"type", "opcode", "result"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "nvme",
				Name:      "command_duration_seconds",
				Help:      "Time from submission to completion of NVMe commands.",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 10, 8),
			},
			[]string{"type", "opcode"},
		),
	}
}

// Describe implements prometheus.Collector.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.commands.Describe(ch)
	m.duration.Describe(ch)
}

// Collect implements prometheus.Collector.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.commands.Collect(ch)
	m.duration.Collect(ch)
}

func (m *Metrics) observe(cmd *Command, result string, elapsed time.Duration) {
	if m == nil {
		return
	}

	m.commands.WithLabelValues(cmd.Type.String(), cmd.OpcodeName(), result).Inc()
	m.duration.WithLabelValues(cmd.Type.String(), cmd.OpcodeName()).Observe(elapsed.Seconds())
}
