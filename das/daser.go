package das

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	logging "github.com/ipfs/go-log/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/lightdas/light-node/cell"
	"github.com/lightdas/light-node/header"
	"github.com/lightdas/light-node/libs/utils"
	"github.com/lightdas/light-node/proof"
)

var (
	log    = logging.Logger("das")
	tracer = otel.Tracer("das")
)

// appDataConfidence is the confidence above which the rows of the followed application are
// verified in full.
const appDataConfidence = 92.0

// ClientMsg announces a sampled block to downstream consumers.
type ClientMsg struct {
	BlockNumber uint64 `json:"block_num"`
	MaxRows     uint16 `json:"max_rows"`
	MaxCols     uint16 `json:"max_cols"`
}

// DASer continuously samples the blocks announced by the header subscription.
// Blocks are processed one at a time in the order they are announced.
type DASer struct {
	params Parameters

	hsub     header.Subscriber
	getter   ProofGetter
	network  CellNetwork
	verifier proof.Verifier
	store    *ConfidenceStore

	notifications chan ClientMsg
	metrics       *metrics

	cancel context.CancelFunc
	done   chan struct{}
}

// NewDASer creates a new DASer. The network is optional: without one every cell is fetched
// from the full node.
func NewDASer(
	hsub header.Subscriber,
	getter ProofGetter,
	network CellNetwork,
	verifier proof.Verifier,
	store *ConfidenceStore,
	options ...Option,
) (*DASer, error) {
	params := DefaultParameters()
	for _, applyOpt := range options {
		applyOpt(&params)
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	return &DASer{
		params:        params,
		hsub:          hsub,
		getter:        getter,
		network:       network,
		verifier:      verifier,
		store:         store,
		notifications: make(chan ClientMsg, params.NotificationBufferSize),
		done:          make(chan struct{}),
	}, nil
}

// Start subscribes to new headers and spawns the sampling routine.
func (d *DASer) Start(ctx context.Context) error {
	if d.cancel != nil {
		return errors.New("das: DASer already started")
	}

	sub, err := d.hsub.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("das: subscribing to headers: %w", err)
	}

	dasCtx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel

	go d.sample(dasCtx, sub)
	return nil
}

// Stop stops sampling and waits for the block in progress to be abandoned.
func (d *DASer) Stop(ctx context.Context) error {
	if d.cancel == nil {
		return nil
	}
	d.cancel()
	select {
	case <-d.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return d.metrics.close()
}

// Done is closed once sampling is over, either stopped or because the header stream ended.
func (d *DASer) Done() <-chan struct{} {
	return d.done
}

// Notifications announces every sampled block. Sampling pauses while the channel is full.
func (d *DASer) Notifications() <-chan ClientMsg {
	return d.notifications
}

// sample processes each header received from the subscription until it ends.
func (d *DASer) sample(ctx context.Context, sub header.Subscription) {
	defer func() {
		sub.Cancel()
		close(d.done)
	}()

	for {
		h, err := sub.NextHeader(ctx)
		switch {
		case ctx.Err() != nil:
			return
		case errors.Is(err, io.EOF):
			log.Warn("header stream ended, sampling stopped")
			return
		case errors.Is(err, header.ErrMalformed):
			log.Warnw("skipping malformed header", "err", err)
			continue
		case err != nil:
			log.Errorw("failed to get next header", "err", err)
			continue
		}

		if err = d.sampleBlock(ctx, h); err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Errorw("sampling failed", "block", h.Number, "rows", h.Rows, "cols", h.Cols, "err", err)
		}
	}
}

func (d *DASer) sampleBlock(ctx context.Context, h *header.BlockHeader) (err error) {
	ctx, span := tracer.Start(ctx, "sample-block", trace.WithAttributes(
		attribute.Int64("block", int64(h.Number)),
		attribute.Int("rows", int(h.Rows)),
		attribute.Int("cols", int(h.Cols)),
	))
	startTime := time.Now()
	var confidence float64
	defer func() {
		span.SetAttributes(attribute.Float64("confidence", confidence))
		utils.SetStatusAndEnd(span, err)
		d.metrics.observeSample(ctx, h.Number, time.Since(startTime), confidence, err)
	}()

	positions := cell.RandomPositions(uint32(h.Rows), uint32(h.Cols), d.params.SampleAmount)
	cells, err := d.fetchCells(ctx, h.Number, positions)
	if err != nil {
		return err
	}

	count := d.verifier.VerifyCells(h.Rows, h.Cols, cells, h.Commitment)
	confidence = Confidence(count)
	log.Infow("confidence computed",
		"block", h.Number,
		"verified", count,
		"sampled", len(positions),
		"confidence", confidence,
		"serialized", SerializeConfidence(h.Number, confidence),
		"finished (s)", time.Since(startTime).Seconds(),
	)

	if err = d.store.Upsert(ctx, h.Number, count); err != nil {
		return err
	}

	if len(h.AppIndex) > 0 && confidence > appDataConfidence && d.params.AppID > 0 {
		d.verifyAppData(ctx, h)
	}

	msg := ClientMsg{BlockNumber: h.Number, MaxRows: h.Rows, MaxCols: h.Cols}
	select {
	case d.notifications <- msg:
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

// fetchCells retrieves the positions from the DHT first and from the full node for the rest.
// Cells retrieved from the full node are published into the DHT.
func (d *DASer) fetchCells(
	ctx context.Context,
	block uint64,
	positions []cell.Position,
) (_ []cell.Cell, err error) {
	ctx, span := tracer.Start(ctx, "fetch-cells", trace.WithAttributes(
		attribute.Int("positions", len(positions)),
	))
	defer func() {
		utils.SetStatusAndEnd(span, err)
	}()

	if d.network == nil {
		cells, err := d.getter.GetKateProof(ctx, block, positions)
		d.metrics.observeFetched(ctx, "rpc", len(cells))
		return cells, err
	}

	fetched, unfetched, err := d.network.FetchCellsFromDHT(ctx, block, positions)
	if err != nil {
		return nil, fmt.Errorf("das: fetching cells from DHT: %w", err)
	}
	d.metrics.observeFetched(ctx, "dht", len(fetched))
	span.AddEvent("dht", trace.WithAttributes(
		attribute.Int("fetched", len(fetched)),
		attribute.Int("unfetched", len(unfetched)),
	))
	log.Debugw("cells fetched from DHT", "block", block, "fetched", len(fetched), "unfetched", len(unfetched))
	if len(unfetched) == 0 {
		return fetched, nil
	}

	rpcCells, err := d.getter.GetKateProof(ctx, block, unfetched)
	if err != nil {
		return nil, err
	}
	d.metrics.observeFetched(ctx, "rpc", len(rpcCells))

	rate := d.network.InsertIntoDHT(ctx, block, rpcCells)
	d.metrics.observeInsert(ctx, rate)
	span.SetAttributes(attribute.Float64("insert_success_rate", rate))
	log.Debugw("cells inserted into DHT", "block", block, "cells", len(rpcCells), "success_rate", rate)

	return append(fetched, rpcCells...), nil
}

// verifyAppData fetches and verifies every cell of the followed application's rows.
// The outcome is only reported.
func (d *DASer) verifyAppData(ctx context.Context, h *header.BlockHeader) {
	rows := h.AppRows(d.params.AppID)
	if len(rows) == 0 {
		log.Debugw("no application rows in block", "block", h.Number, "app_id", d.params.AppID)
		return
	}

	cells, err := d.getter.GetAppCells(ctx, h.Number, rows, h.Cols)
	if err != nil {
		log.Errorw("fetching application data", "block", h.Number, "app_id", d.params.AppID, "err", err)
		return
	}

	verified := d.verifier.VerifyCells(h.Rows, h.Cols, cells, h.Commitment)
	log.Infow("application data verified",
		"block", h.Number,
		"app_id", d.params.AppID,
		"rows", len(rows),
		"cells", len(cells),
		"verified", verified,
	)
}
