package das

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdk "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/lightdas/light-node/header"
)

func TestMetrics_Sampled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	t.Cleanup(cancel)

	reader := sdk.NewManualReader()
	provider := sdk.NewMeterProvider(sdk.WithReader(reader))
	prev := meter
	meter = provider.Meter("test")
	t.Cleanup(func() { meter = prev })

	sub := newMockSubscriber()
	daser, err := NewDASer(sub, &mockGetter{}, &mockNetwork{}, validCells{}, NewConfidenceStore(),
		WithSampleAmount(16))
	require.NoError(t, err)
	require.NoError(t, daser.WithMetrics())
	require.NoError(t, daser.Start(ctx))

	sub.headers <- headerItem{h: &header.BlockHeader{Number: 9, Rows: 4, Cols: 4}}
	nextMsg(ctx, t, daser)
	// the block is observed once its sampling returns, right after the notification
	require.Eventually(t, func() bool {
		return daser.metrics.lastSampledBlock.Load() == 9
	}, time.Second, time.Millisecond*10)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	collected := make(map[string]metricdata.Metrics)
	for _, m := range rm.ScopeMetrics[0].Metrics {
		collected[m.Name] = m
	}

	sampled, ok := collected["das_sampled_blocks_counter"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sampled.DataPoints, 1)
	assert.EqualValues(t, 1, sampled.DataPoints[0].Value)
	failed, _ := sampled.DataPoints[0].Attributes.Value(failedLabel)
	assert.False(t, failed.AsBool())

	fetched, ok := collected["das_fetched_cells_counter"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	perSource := make(map[string]int64)
	for _, dp := range fetched.DataPoints {
		src, _ := dp.Attributes.Value(attribute.Key(sourceLabel))
		perSource[src.AsString()] = dp.Value
	}
	// cells with an even row+col sum are served by the DHT
	assert.Equal(t, map[string]int64{"dht": 8, "rpc": 8}, perSource)

	latest, ok := collected["das_latest_sampled_block"].Data.(metricdata.Gauge[int64])
	require.True(t, ok)
	require.Len(t, latest.DataPoints, 1)
	assert.EqualValues(t, 9, latest.DataPoints[0].Value)

	require.NoError(t, daser.Stop(ctx))
}
