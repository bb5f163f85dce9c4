// Package metrics holds the study-domain instruments: ping outcomes, flow
// duration and push delivery counts. HTTP-level instruments live in the
// middleware package.
package metrics

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	pingsCompleted metric.Int64Counter
	pingsMissed    metric.Int64Counter
	flowDuration   metric.Float64Histogram
	pushSent       metric.Int64Counter
	pushFailed     metric.Int64Counter
)

// Init registers the domain instruments. Recording before Init is a no-op, so
// services can emit unconditionally.
func Init(meter metric.Meter) error {
	var err error

	pingsCompleted, err = meter.Int64Counter(
		"ema.pings.completed.total",
		metric.WithDescription("Total ping slots completed"),
		metric.WithUnit("{slot}"),
	)
	if err != nil {
		return err
	}

	pingsMissed, err = meter.Int64Counter(
		"ema.pings.missed.total",
		metric.WithDescription("Total ping slots missed (timeout or cancel)"),
		metric.WithUnit("{slot}"),
	)
	if err != nil {
		return err
	}

	flowDuration, err = meter.Float64Histogram(
		"ema.flow.duration",
		metric.WithDescription("Time from flow open to completion"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(5, 15, 30, 60, 120, 180, 240, 300),
	)
	if err != nil {
		return err
	}

	pushSent, err = meter.Int64Counter(
		"ema.push.sent.total",
		metric.WithDescription("Push notifications accepted by the provider"),
		metric.WithUnit("{notification}"),
	)
	if err != nil {
		return err
	}

	pushFailed, err = meter.Int64Counter(
		"ema.push.failed.total",
		metric.WithDescription("Push notifications the provider rejected"),
		metric.WithUnit("{notification}"),
	)
	if err != nil {
		return err
	}

	return nil
}

func RecordPingCompleted(ctx context.Context, pingType string) {
	if pingsCompleted == nil {
		return
	}
	pingsCompleted.Add(ctx, 1, metric.WithAttributes(attribute.String("ping.type", pingType)))
}

// RecordPingMissed counts a miss; reason is "timeout" or "cancel".
func RecordPingMissed(ctx context.Context, reason string) {
	if pingsMissed == nil {
		return
	}
	pingsMissed.Add(ctx, 1, metric.WithAttributes(attribute.String("miss.reason", reason)))
}

func RecordFlowDuration(ctx context.Context, seconds float64) {
	if flowDuration == nil {
		return
	}
	flowDuration.Record(ctx, seconds)
}

func RecordPushSent(ctx context.Context, count int) {
	if pushSent == nil {
		return
	}
	pushSent.Add(ctx, int64(count))
}

func RecordPushFailed(ctx context.Context, count int) {
	if pushFailed == nil {
		return
	}
	pushFailed.Add(ctx, int64(count))
}
