// Package telemetry wraps the otel tracer/meter pair this module already
// pulls in transitively through badger, giving the rest of the codebase one
// place to start spans and record the handful of metrics that cross
// package boundaries (shard fan-out latency, planner surplus iterations)
// instead of threading a raw otel.Tracer/otel.Meter through every signature.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/lanterngraph/core"

// Telemetry bundles a tracer and the counters/histograms this module
// records. The zero value is not usable; construct one with New.
type Telemetry struct {
	tracer            trace.Tracer
	shardLatency      metric.Float64Histogram
	surplusIterations metric.Int64Counter
	gossipSyncErrors  metric.Int64Counter
}

// New builds a Telemetry against whatever global TracerProvider/MeterProvider
// is registered with otel.SetTracerProvider/otel.SetMeterProvider. Without
// one registered, otel's no-op providers are used, so New always succeeds
// in a binary that never wires an exporter.
func New() (*Telemetry, error) {
	meter := otel.Meter(instrumentationName)

	shardLatency, err := meter.Float64Histogram(
		"fanout.shard_latency_ms",
		metric.WithDescription("time a single shard took to answer a scatter request"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	surplusIterations, err := meter.Int64Counter(
		"planner.surplus_redistribution_iterations",
		metric.WithDescription("number of passes Plan took to exhaust its crawl budget surplus"),
	)
	if err != nil {
		return nil, err
	}

	gossipSyncErrors, err := meter.Int64Counter(
		"cluster.gossip_sync_errors",
		metric.WithDescription("failed peer syncs during a gossip sweep"),
	)
	if err != nil {
		return nil, err
	}

	return &Telemetry{
		tracer:            otel.Tracer(instrumentationName),
		shardLatency:      shardLatency,
		surplusIterations: surplusIterations,
		gossipSyncErrors:  gossipSyncErrors,
	}, nil
}

// StartSpan starts a child span named name under ctx's current span, if any.
func (t *Telemetry) StartSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name)
}

// RecordShardLatency records how long shardID took to answer one scatter
// request.
func (t *Telemetry) RecordShardLatency(ctx context.Context, shardID uint64, ms float64) {
	t.shardLatency.Record(ctx, ms, metric.WithAttributes(attribute.Int64("shard_id", int64(shardID))))
}

// RecordSurplusIteration counts one pass of the planner's surplus
// redistribution loop.
func (t *Telemetry) RecordSurplusIteration(ctx context.Context) {
	t.surplusIterations.Add(ctx, 1)
}

// RecordGossipSyncError counts one failed peer sync during a gossip sweep.
func (t *Telemetry) RecordGossipSyncError(ctx context.Context, peerAddr string) {
	t.gossipSyncErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("peer_addr", peerAddr)))
}
