// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package observability provides Prometheus metrics for the dialog
// engine: request counters, escalation and fallback counters, and a
// pipeline latency histogram. Exposed via /metrics.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	metricsNamespace = "aleutian"
	dialogSubsystem  = "dialog"
)

// Metrics holds the dialog engine's Prometheus collectors. Create one
// per registry via NewMetrics.
type Metrics struct {
	// RequestsTotal counts webhook requests.
	// Labels: uni, messenger, status (ok, not_found, error)
	RequestsTotal *prometheus.CounterVec

	// ResponsesTotal counts outbound responses by type.
	// Labels: uni, type (TEXT, OPTIONS, ITEMS)
	ResponsesTotal *prometheus.CounterVec

	// SuspendedTotal counts turns silenced by the human-handoff gate.
	// Labels: uni
	SuspendedTotal *prometheus.CounterVec

	// FallbacksTotal counts turns answered by the fallback stage.
	// Labels: uni
	FallbacksTotal *prometheus.CounterVec

	// PipelineDurationSeconds measures one full chain run.
	// Labels: uni, messenger
	PipelineDurationSeconds *prometheus.HistogramVec
}

// NewMetrics creates and registers the collectors on reg. Pass
// prometheus.DefaultRegisterer in production and a fresh registry in
// tests to avoid duplicate registration.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: dialogSubsystem,
				Name:      "requests_total",
				Help:      "Total webhook requests by tenant, messenger and status",
			},
			[]string{"uni", "messenger", "status"},
		),
		ResponsesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: dialogSubsystem,
				Name:      "responses_total",
				Help:      "Total outbound responses by tenant and response type",
			},
			[]string{"uni", "type"},
		),
		SuspendedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: dialogSubsystem,
				Name:      "suspended_total",
				Help:      "Total turns silenced by the human-handoff gate",
			},
			[]string{"uni"},
		),
		FallbacksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: dialogSubsystem,
				Name:      "fallbacks_total",
				Help:      "Total turns answered by the fallback stage",
			},
			[]string{"uni"},
		),
		PipelineDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: dialogSubsystem,
				Name:      "pipeline_duration_seconds",
				Help:      "Duration of one full pipeline run",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"uni", "messenger"},
		),
	}
}
