// Package observe holds the OpenTelemetry metric instruments of the agent
// backend and the Prometheus exporter bridge that serves them at /metrics.
//
// Tests should build a [Metrics] with [NewMetrics] over their own
// [metric.MeterProvider] to avoid cross-test pollution.
package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// meterName is the instrumentation scope name used for all metrics.
const meterName = "github.com/ourstudio-se/ai-agent-backend"

// Status attribute values.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use.
type Metrics struct {
	// QueryDuration tracks end-to-end routing plus tool latency. Use with
	// attributes: attribute.String("tool", ...), attribute.String("status", ...)
	QueryDuration metric.Float64Histogram

	// ToolCalls counts tool invocations. Use with attributes:
	//   attribute.String("tool", ...), attribute.String("status", ...)
	ToolCalls metric.Int64Counter

	// ToolErrors counts failed invocations by tool and error kind.
	ToolErrors metric.Int64Counter

	// HTTPRequestDuration tracks HTTP request processing time. Use with attributes:
	//   attribute.String("method", ...), attribute.String("route", ...), attribute.Int("status", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets defines histogram bucket boundaries in seconds. LLM calls
// dominate the upper end.
var latencyBuckets = []float64{
	0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider].
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.QueryDuration, err = m.Float64Histogram("agent.query.duration",
		metric.WithDescription("Latency of routing and executing a query."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ToolCalls, err = m.Int64Counter("agent.tool.calls",
		metric.WithDescription("Total tool invocations by tool and status."),
	); err != nil {
		return nil, err
	}
	if met.ToolErrors, err = m.Int64Counter("agent.tool.errors",
		metric.WithDescription("Total tool failures by tool and error kind."),
	); err != nil {
		return nil, err
	}
	if met.HTTPRequestDuration, err = m.Float64Histogram("agent.http.request.duration",
		metric.WithDescription("HTTP request latency by method, route and status."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// Discard returns instruments that record nothing.
func Discard() *Metrics {
	m, _ := NewMetrics(noop.NewMeterProvider())
	return m
}

// RecordQuery records one routed query: its duration and the tool call
// outcome. errKind is empty on success.
func (m *Metrics) RecordQuery(ctx context.Context, tool string, d time.Duration, errKind string) {
	status := StatusOK
	if errKind != "" {
		status = StatusError
	}
	attrs := metric.WithAttributes(
		attribute.String("tool", tool),
		attribute.String("status", status),
	)
	m.QueryDuration.Record(ctx, d.Seconds(), attrs)
	m.ToolCalls.Add(ctx, 1, attrs)
	if errKind != "" {
		m.ToolErrors.Add(ctx, 1, metric.WithAttributes(
			attribute.String("tool", tool),
			attribute.String("kind", errKind),
		))
	}
}

// RecordHTTPRequest records the duration of one served request.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, route string, status int, d time.Duration) {
	m.HTTPRequestDuration.Record(ctx, d.Seconds(),
		metric.WithAttributes(
			attribute.String("method", method),
			attribute.String("route", route),
			attribute.Int("status", status),
		),
	)
}
