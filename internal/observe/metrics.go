// Package observe provides application-wide observability primitives for
// soapscribe: OpenTelemetry metrics, distributed tracing, structured logging,
// and HTTP middleware that ties them together.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can still be
// scraped via the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all soapscribe metrics.
const meterName = "github.com/MrWong99/soapscribe"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// --- Latency histograms ---

	// PipelineDuration tracks end-to-end documentation pipeline latency.
	// Use with attribute: attribute.String("pipeline", "multiagent"|"sequential"|"evaluated")
	PipelineDuration metric.Float64Histogram

	// AgentDuration tracks the latency of a single agent step. Use with
	// attribute: attribute.String("agent", ...)
	AgentDuration metric.Float64Histogram

	// --- Counters ---

	// ProviderRequests counts model-provider API calls. Use with attributes:
	//   attribute.String("provider", ...), attribute.String("status", ...)
	ProviderRequests metric.Int64Counter

	// EvaluationOutcomes counts head-to-head judging outcomes. Use with
	// attribute: attribute.String("winner", "multiagent"|"legacy"|"tie")
	EvaluationOutcomes metric.Int64Counter

	// --- Error counters ---

	// ProviderErrors counts model-provider errors. Use with attribute:
	//   attribute.String("provider", ...)
	ProviderErrors metric.Int64Counter

	// --- Gauges ---

	// ActiveRuns tracks the number of documentation runs in flight.
	ActiveRuns metric.Int64UpDownCounter

	// --- HTTP middleware ---

	// HTTPRequestDuration tracks HTTP request processing time. Use with attributes:
	//   attribute.String("method", ...), attribute.String("path", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets defines histogram bucket boundaries (in seconds). Model
// calls dominate, so buckets run well past typical HTTP latencies.
var latencyBuckets = []float64{
	0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Histograms.
	if met.PipelineDuration, err = m.Float64Histogram("soapscribe.pipeline.duration",
		metric.WithDescription("End-to-end documentation pipeline latency by pipeline."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.AgentDuration, err = m.Float64Histogram("soapscribe.agent.duration",
		metric.WithDescription("Latency of a single agent step by agent."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	// Counters.
	if met.ProviderRequests, err = m.Int64Counter("soapscribe.provider.requests",
		metric.WithDescription("Total model-provider API requests by provider and status."),
	); err != nil {
		return nil, err
	}
	if met.EvaluationOutcomes, err = m.Int64Counter("soapscribe.evaluation.outcomes",
		metric.WithDescription("Total head-to-head judging outcomes by winner."),
	); err != nil {
		return nil, err
	}

	// Error counters.
	if met.ProviderErrors, err = m.Int64Counter("soapscribe.provider.errors",
		metric.WithDescription("Total model-provider errors by provider."),
	); err != nil {
		return nil, err
	}

	// Gauges (UpDownCounters).
	if met.ActiveRuns, err = m.Int64UpDownCounter("soapscribe.active_runs",
		metric.WithDescription("Number of documentation runs in flight."),
	); err != nil {
		return nil, err
	}

	// HTTP middleware histogram.
	if met.HTTPRequestDuration, err = m.Float64Histogram("soapscribe.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// RecordPipelineRun records one completed pipeline run.
func (m *Metrics) RecordPipelineRun(ctx context.Context, pipeline string, seconds float64) {
	m.PipelineDuration.Record(ctx, seconds,
		metric.WithAttributes(attribute.String("pipeline", pipeline)),
	)
}

// RecordAgentStep records one completed agent step.
func (m *Metrics) RecordAgentStep(ctx context.Context, agent string, seconds float64) {
	m.AgentDuration.Record(ctx, seconds,
		metric.WithAttributes(attribute.String("agent", agent)),
	)
}

// RecordProviderRequest records a provider request counter increment with the
// standard attribute set.
func (m *Metrics) RecordProviderRequest(ctx context.Context, provider, status string) {
	m.ProviderRequests.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("status", status),
		),
	)
}

// RecordProviderError records a provider error counter increment.
func (m *Metrics) RecordProviderError(ctx context.Context, provider string) {
	m.ProviderErrors.Add(ctx, 1,
		metric.WithAttributes(attribute.String("provider", provider)),
	)
}

// RecordEvaluationOutcome records one judging outcome by winner.
func (m *Metrics) RecordEvaluationOutcome(ctx context.Context, winner string) {
	m.EvaluationOutcomes.Add(ctx, 1,
		metric.WithAttributes(attribute.String("winner", winner)),
	)
}
