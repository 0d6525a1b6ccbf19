// Package metrics exports Prometheus metrics for agent runs.
//
// A Collector is a hook: register it on an agent and scrape the registry it
// was created with.
//
//	reg := prometheus.NewRegistry()
//	agent.RegisterHook(metrics.NewCollector("reagent", reg))
package metrics

import (
	"context"

	"github.com/helloagents/reagent"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector records run, model, tool and recovery metrics. All methods are
// safe for concurrent runs.
type Collector struct {
	runsTotal       *prometheus.CounterVec
	runIterations   prometheus.Histogram
	runDuration     *prometheus.HistogramVec
	modelCalls      *prometheus.CounterVec
	modelDuration   prometheus.Histogram
	toolCalls       *prometheus.CounterVec
	toolDuration    *prometheus.HistogramVec
	recoveriesTotal *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics on reg. A nil
// reg uses prometheus.DefaultRegisterer. It panics if metrics with the same
// names are already registered under namespace.
func NewCollector(namespace string, reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Collector{
		runsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Total number of agent runs by outcome",
			},
			[]string{"outcome"},
		),
		runIterations: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_iterations",
				Help:      "Iterations used per run",
				Buckets:   prometheus.LinearBuckets(1, 1, 10),
			},
		),
		runDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Agent run duration in seconds",
				Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
			},
			[]string{"outcome"},
		),
		modelCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "model_calls_total",
				Help:      "Total number of model calls by status",
			},
			[]string{"status"},
		),
		modelDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "model_call_duration_seconds",
				Help:      "Model call duration in seconds",
				Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
		),
		toolCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tool_calls_total",
				Help:      "Total number of tool executions by tool and status",
			},
			[]string{"tool", "status"},
		),
		toolDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "tool_call_duration_seconds",
				Help:      "Tool execution duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"tool"},
		),
		recoveriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "recoveries_total",
				Help:      "Total number of corrective turns by kind",
			},
			[]string{"kind"},
		),
	}
}

// OnAfterRun implements reagent.AfterRunHook.
func (c *Collector) OnAfterRun(_ context.Context, e reagent.AfterRunEvent) {
	outcome := string(e.Outcome)
	c.runsTotal.WithLabelValues(outcome).Inc()
	c.runIterations.Observe(float64(e.Iterations))
	c.runDuration.WithLabelValues(outcome).Observe(e.Duration.Seconds())
}

// OnAfterModelCall implements reagent.AfterModelCallHook.
func (c *Collector) OnAfterModelCall(_ context.Context, e reagent.AfterModelCallEvent) {
	c.modelCalls.WithLabelValues(modelStatus(e.Err)).Inc()
	c.modelDuration.Observe(e.Duration.Seconds())
}

// OnAfterToolCall implements reagent.AfterToolCallHook.
func (c *Collector) OnAfterToolCall(_ context.Context, e reagent.AfterToolCallEvent) {
	status := "success"
	if e.Failed {
		status = "error"
	}
	c.toolCalls.WithLabelValues(e.ToolName, status).Inc()
	c.toolDuration.WithLabelValues(e.ToolName).Observe(e.Duration.Seconds())
}

// OnRecovery implements reagent.RecoveryHook.
func (c *Collector) OnRecovery(_ context.Context, e reagent.RecoveryEvent) {
	c.recoveriesTotal.WithLabelValues(string(e.Kind)).Inc()
}

// modelStatus is "success" or the failure kind.
func modelStatus(err error) string {
	if err == nil {
		return "success"
	}
	return reagent.AsModelError(err).Kind.String()
}

// Compile-time checks that Collector implements the hooks it handles.
var (
	_ reagent.AfterRunHook       = (*Collector)(nil)
	_ reagent.AfterModelCallHook = (*Collector)(nil)
	_ reagent.AfterToolCallHook  = (*Collector)(nil)
	_ reagent.RecoveryHook       = (*Collector)(nil)
)
