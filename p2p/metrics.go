package p2p

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var meter = otel.Meter("p2p_dht")

type status string

const (
	statusFound    status = "found"
	statusNotFound status = "not_found"
	statusErr      status = "error"
)

type metrics struct {
	getCounter metric.Int64Counter
	putCounter metric.Int64Counter

	queueLen    metric.Int64ObservableGauge
	subscribers metric.Int64ObservableGauge

	clientReg metric.Registration
}

// WithMetrics registers the DHT query counters and the command queue gauges.
func (n *Network) WithMetrics() error {
	getCounter, err := meter.Int64Counter("dht_get_record_counter",
		metric.WithDescription("dht record lookups by outcome"))
	if err != nil {
		return err
	}

	putCounter, err := meter.Int64Counter("dht_put_record_counter",
		metric.WithDescription("dht record insertions by outcome"))
	if err != nil {
		return err
	}

	queueLen, err := meter.Int64ObservableGauge("dht_command_queue_length",
		metric.WithDescription("amount of commands waiting for the network event loop"))
	if err != nil {
		return err
	}

	subscribers, err := meter.Int64ObservableGauge("dht_event_subscribers",
		metric.WithDescription("amount of active network event subscribers"))
	if err != nil {
		return err
	}

	callback := func(_ context.Context, observer metric.Observer) error {
		observer.ObserveInt64(queueLen, int64(len(n.cmds)))
		observer.ObserveInt64(subscribers, n.subscriberCount.Load())
		return nil
	}

	clientReg, err := meter.RegisterCallback(callback, queueLen, subscribers)
	if err != nil {
		return err
	}

	n.metrics = &metrics{
		getCounter:  getCounter,
		putCounter:  putCounter,
		queueLen:    queueLen,
		subscribers: subscribers,
		clientReg:   clientReg,
	}
	return nil
}

func (m *metrics) close() error {
	if m == nil {
		return nil
	}
	return m.clientReg.Unregister()
}

func (m *metrics) observeGet(ctx context.Context, st status) {
	if m == nil {
		return
	}
	if ctx.Err() != nil {
		ctx = context.Background()
	}
	m.getCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status", string(st))))
}

func (m *metrics) observePut(ctx context.Context, failed bool) {
	if m == nil {
		return
	}
	if ctx.Err() != nil {
		ctx = context.Background()
	}
	m.putCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.Bool("failed", failed)))
}
