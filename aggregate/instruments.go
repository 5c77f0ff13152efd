package aggregate

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const instrumentationName = "github.com/BaSui01/wordcount/aggregate"

// instruments OTel 指标，随全局 MeterProvider 导出
type instruments struct {
	jobTotal    metric.Int64Counter
	tokenTotal  metric.Int64Counter
	jobDuration metric.Float64Histogram
}

func newInstruments(meter metric.Meter) (*instruments, error) {
	m := &instruments{}
	var err error

	m.jobTotal, err = meter.Int64Counter("wordcount.aggregate.jobs",
		metric.WithDescription("Total number of aggregation jobs"),
		metric.WithUnit("{job}"))
	if err != nil {
		return nil, err
	}

	m.tokenTotal, err = meter.Int64Counter("wordcount.aggregate.tokens",
		metric.WithDescription("Total tokens counted"),
		metric.WithUnit("{token}"))
	if err != nil {
		return nil, err
	}

	m.jobDuration, err = meter.Float64Histogram("wordcount.aggregate.duration",
		metric.WithDescription("Aggregation job duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5))
	if err != nil {
		return nil, err
	}

	return m, nil
}

func noopInstruments() *instruments {
	m, _ := newInstruments(noop.NewMeterProvider().Meter(instrumentationName))
	return m
}

func defaultInstruments() (*instruments, error) {
	return newInstruments(otel.Meter(instrumentationName))
}

func (m *instruments) record(ctx context.Context, stats JobStats) {
	attrs := metric.WithAttributes(attribute.String("status", stats.Status))
	m.jobTotal.Add(ctx, 1, attrs)
	m.jobDuration.Record(ctx, stats.Duration.Seconds(), attrs)
	if stats.Status == StatusOK {
		m.tokenTotal.Add(ctx, int64(stats.Tokens))
	}
}
