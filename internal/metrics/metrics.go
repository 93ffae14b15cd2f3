package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SynthesesTotal counts tool synthesis attempts by outcome
	// (registered, skipped).
	SynthesesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "flowbridge",
		Name:      "syntheses_total",
		Help:      "Tool synthesis attempts by outcome.",
	}, []string{"outcome"})

	// ToolExecutionsTotal counts tool executions by tool name and
	// result status.
	ToolExecutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "flowbridge",
		Name:      "tool_executions_total",
		Help:      "Tool executions by tool and status.",
	}, []string{"tool", "status"})

	// ExchangesTotal counts processed user messages.
	ExchangesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "flowbridge",
		Name:      "exchanges_total",
		Help:      "User messages processed.",
	})

	// CeilingReachedTotal counts exchanges terminated by the
	// tool-call ceiling.
	CeilingReachedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "flowbridge",
		Name:      "tool_call_ceiling_reached_total",
		Help:      "Exchanges terminated by the tool-call ceiling.",
	})

	// CatalogSize tracks the number of tools registered by the last
	// refresh.
	CatalogSize = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "flowbridge",
		Name:      "catalog_size",
		Help:      "Tools registered by the last catalog refresh.",
	})
)
