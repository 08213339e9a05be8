package das

import (
	"context"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	failedLabel = "failed"
	sourceLabel = "source"
)

var meter = otel.Meter("das")

type metrics struct {
	sampled       metric.Int64Counter
	sampleTime    metric.Float64Histogram
	confidence    metric.Float64Histogram
	fetchedCells  metric.Int64Counter
	dhtInsertRate metric.Float64Histogram

	lastSampledBlock atomic.Uint64
	latestSampled    metric.Int64ObservableGauge

	clientReg metric.Registration
}

// WithMetrics turns on metric collection in the DASer.
func (d *DASer) WithMetrics() error {
	sampled, err := meter.Int64Counter("das_sampled_blocks_counter",
		metric.WithDescription("sampled blocks counter"))
	if err != nil {
		return err
	}

	sampleTime, err := meter.Float64Histogram("das_sample_time_hist",
		metric.WithDescription("duration of sampling a single block"))
	if err != nil {
		return err
	}

	confidence, err := meter.Float64Histogram("das_confidence_hist",
		metric.WithDescription("confidence reached per sampled block"))
	if err != nil {
		return err
	}

	fetchedCells, err := meter.Int64Counter("das_fetched_cells_counter",
		metric.WithDescription("cells fetched per source"))
	if err != nil {
		return err
	}

	dhtInsertRate, err := meter.Float64Histogram("das_dht_insert_success_rate_hist",
		metric.WithDescription("share of cells successfully published into the DHT"))
	if err != nil {
		return err
	}

	latestSampled, err := meter.Int64ObservableGauge("das_latest_sampled_block",
		metric.WithDescription("latest sampled block number"))
	if err != nil {
		return err
	}

	m := &metrics{
		sampled:       sampled,
		sampleTime:    sampleTime,
		confidence:    confidence,
		fetchedCells:  fetchedCells,
		dhtInsertRate: dhtInsertRate,
		latestSampled: latestSampled,
	}

	callback := func(_ context.Context, observer metric.Observer) error {
		if block := m.lastSampledBlock.Load(); block != 0 {
			observer.ObserveInt64(latestSampled, int64(block))
		}
		return nil
	}
	m.clientReg, err = meter.RegisterCallback(callback, latestSampled)
	if err != nil {
		return err
	}

	d.metrics = m
	return nil
}

func (m *metrics) close() error {
	if m == nil {
		return nil
	}
	return m.clientReg.Unregister()
}

// observeSample records the time it took to sample a block and the confidence reached.
func (m *metrics) observeSample(
	ctx context.Context,
	block uint64,
	sampleTime time.Duration,
	confidence float64,
	err error,
) {
	if m == nil {
		return
	}
	if ctx.Err() != nil {
		ctx = context.Background()
	}

	m.sampleTime.Record(ctx, sampleTime.Seconds(),
		metric.WithAttributes(attribute.Bool(failedLabel, err != nil)))
	m.sampled.Add(ctx, 1,
		metric.WithAttributes(attribute.Bool(failedLabel, err != nil)))
	if err != nil {
		return
	}

	m.confidence.Record(ctx, confidence)
	m.lastSampledBlock.Store(block)
}

func (m *metrics) observeFetched(ctx context.Context, source string, amount int) {
	if m == nil || amount == 0 {
		return
	}
	if ctx.Err() != nil {
		ctx = context.Background()
	}
	m.fetchedCells.Add(ctx, int64(amount),
		metric.WithAttributes(attribute.String(sourceLabel, source)))
}

func (m *metrics) observeInsert(ctx context.Context, rate float64) {
	if m == nil {
		return
	}
	if ctx.Err() != nil {
		ctx = context.Background()
	}
	m.dhtInsertRate.Record(ctx, rate)
}
