package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// routingDecisionsTotal counts router outcomes.
	// Labels: kind (filters, text, error)
	routingDecisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "moviechat",
		Name:      "routing_decisions_total",
		Help:      "Total routing decisions by kind",
	}, []string{"kind"})

	// toolExecutionsTotal counts filter executions.
	// Labels: tool, outcome (ok, empty, error)
	toolExecutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "moviechat",
		Name:      "tool_executions_total",
		Help:      "Total filter tool executions by tool and outcome",
	}, []string{"tool", "outcome"})

	toolDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "moviechat",
		Name:      "tool_duration_seconds",
		Help:      "Filter tool execution latency",
		Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"tool"})

	// fusionOutcomesTotal counts fusion results.
	// Labels: status (matched, no_results, no_overlap, upstream_error)
	fusionOutcomesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "moviechat",
		Name:      "fusion_outcomes_total",
		Help:      "Total fusion outcomes by status",
	}, []string{"status"})
)
