// Package metrics reports restricted.Domain activity through OpenTelemetry
// instruments. The instruments are exported by whatever MeterProvider the
// caller wires, Prometheus in the CLI.
package metrics

import (
	"context"
	"fmt"

	"domainvar/pkg/restricted"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// FanOutBuckets are histogram bounds for the number of subscribers reached by
// a single notice.
var FanOutBuckets = []float64{0, 1, 2, 4, 8, 16, 32, 64, 128, 256, 512, 1024} //nolint: gochecknoglobals

// MeterName is the instrumentation scope used by NewRecorder callers.
const MeterName = "domainvar/pkg/metrics"

// Recorder implements restricted.Recorder on top of OpenTelemetry.
type Recorder struct {
	domain attribute.KeyValue

	mutations   metric.Int64Counter
	notices     metric.Int64Counter
	affected    metric.Int64Counter
	fanOut      metric.Int64Histogram
	subscribers metric.Int64Gauge
}

var _ restricted.Recorder = (*Recorder)(nil)

// NewRecorder creates the domain instruments on meter. Every measurement
// carries a "domain" attribute set to domainName.
func NewRecorder(meter metric.Meter, domainName string) (*Recorder, error) {
	r := &Recorder{domain: attribute.String("domain", domainName)}

	var err error
	if r.mutations, err = meter.Int64Counter("domain.mutations",
		metric.WithDescription("Domain mutation calls, by operation and whether the contents changed."),
		metric.WithUnit("{call}"),
	); err != nil {
		return nil, fmt.Errorf("could not create mutations counter: %w", err)
	}
	if r.notices, err = meter.Int64Counter("domain.notices",
		metric.WithDescription("Notices broadcast to subscribers, by kind."),
		metric.WithUnit("{notice}"),
	); err != nil {
		return nil, fmt.Errorf("could not create notices counter: %w", err)
	}
	if r.affected, err = meter.Int64Counter("domain.notices.affected",
		metric.WithDescription("Variables whose value changed because of a notice."),
		metric.WithUnit("{variable}"),
	); err != nil {
		return nil, fmt.Errorf("could not create affected counter: %w", err)
	}
	if r.fanOut, err = meter.Int64Histogram("domain.notices.fanout",
		metric.WithDescription("Subscribers reached by a single notice."),
		metric.WithUnit("{variable}"),
		metric.WithExplicitBucketBoundaries(FanOutBuckets...),
	); err != nil {
		return nil, fmt.Errorf("could not create fan-out histogram: %w", err)
	}
	if r.subscribers, err = meter.Int64Gauge("domain.subscribers",
		metric.WithDescription("Variables currently subscribed to the domain."),
		metric.WithUnit("{variable}"),
	); err != nil {
		return nil, fmt.Errorf("could not create subscribers gauge: %w", err)
	}

	return r, nil
}

// RecordMutation implements restricted.Recorder.
func (r *Recorder) RecordMutation(op restricted.Operation, changed bool) {
	r.mutations.Add(context.Background(), 1, metric.WithAttributes(
		r.domain,
		attribute.String("operation", string(op)),
		attribute.Bool("changed", changed),
	))
}

// RecordNotice implements restricted.Recorder.
func (r *Recorder) RecordNotice(kind restricted.Notice, delivered, affected int) {
	ctx := context.Background()
	attrs := metric.WithAttributes(r.domain, attribute.String("kind", string(kind)))

	r.notices.Add(ctx, 1, attrs)
	r.fanOut.Record(ctx, int64(delivered), attrs)
	if affected > 0 {
		r.affected.Add(ctx, int64(affected), attrs)
	}
}

// RecordSubscribers implements restricted.Recorder.
func (r *Recorder) RecordSubscribers(count int) {
	r.subscribers.Record(context.Background(), int64(count), metric.WithAttributes(r.domain))
}
