package p2p

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gammazero/workerpool"
	"github.com/libp2p/go-libp2p/core/peer"
	ma "github.com/multiformats/go-multiaddr"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/lightdas/light-node/cell"
	"github.com/lightdas/light-node/libs/utils"
)

var tracer = otel.Tracer("p2p_dht")

// Client submits commands to the Network event loop and awaits their replies.
// Submitting to a full queue blocks until the loop makes room, the context is done or the
// Network stops.
type Client struct {
	net *Network
}

// StartListening starts accepting connections on the given address.
func (c *Client) StartListening(ctx context.Context, addr ma.Multiaddr) error {
	cmd := &startListening{addr: addr, resp: make(chan error, 1)}
	if err := c.send(ctx, cmd); err != nil {
		return err
	}
	return c.waitErr(ctx, cmd.resp)
}

// AddAddress records an address of a peer and makes the peer a bootstrap candidate.
func (c *Client) AddAddress(ctx context.Context, p peer.ID, addr ma.Multiaddr) error {
	cmd := &addAddress{peer: p, addr: addr, resp: make(chan error, 1)}
	if err := c.send(ctx, cmd); err != nil {
		return err
	}
	return c.waitErr(ctx, cmd.resp)
}

// AddPeers adds every address of the given peers.
func (c *Client) AddPeers(ctx context.Context, peers []peer.AddrInfo) error {
	for _, info := range peers {
		for _, addr := range info.Addrs {
			if err := c.AddAddress(ctx, info.ID, addr); err != nil {
				return err
			}
		}
	}
	return nil
}

// Bootstrap adds the given peers, connects to every known peer and populates the routing table.
// It fails with ErrNoKnownPeers if no address is known or none of the known peers is reachable.
func (c *Client) Bootstrap(ctx context.Context, peers ...peer.AddrInfo) error {
	if err := c.AddPeers(ctx, peers); err != nil {
		return err
	}
	cmd := &bootstrap{ctx: ctx, resp: make(chan error, 1)}
	if err := c.send(ctx, cmd); err != nil {
		return err
	}
	return c.waitErr(ctx, cmd.resp)
}

// Events subscribes to connection and routing events. The channel is closed once ctx is done or
// the Network stops. Events are dropped while the channel is full.
func (c *Client) Events(ctx context.Context) (<-chan Event, error) {
	cmd := &stream{
		ctx:    ctx,
		events: make(chan Event, c.net.params.EventBufferSize),
		resp:   make(chan error, 1),
	}
	if err := c.send(ctx, cmd); err != nil {
		return nil, err
	}
	// the channel is handed out only once registered, so the loop is responsible for closing it
	if err := c.waitErr(ctx, cmd.resp); err != nil {
		return nil, err
	}
	return cmd.events, nil
}

// GetRecord looks the key up in the DHT. An empty result means no peer holds the record.
func (c *Client) GetRecord(ctx context.Context, key string, q Quorum) ([]Record, error) {
	cmd := &getRecord{ctx: ctx, key: key, quorum: q, resp: make(chan getRecordResult, 1)}
	if err := c.send(ctx, cmd); err != nil {
		return nil, err
	}
	select {
	case res := <-cmd.resp:
		return res.records, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.net.stopped:
		return nil, ErrNetworkStopped
	}
}

// PutRecord stores the record on the closest peers of its key.
func (c *Client) PutRecord(ctx context.Context, rec Record, q Quorum) error {
	cmd := &putRecord{ctx: ctx, record: rec, quorum: q, resp: make(chan error, 1)}
	if err := c.send(ctx, cmd); err != nil {
		return err
	}
	return c.waitErr(ctx, cmd.resp)
}

// FetchCellsFromDHT looks the positions of the block up in the DHT, in chunks of at most
// ParallelismLimit concurrent queries. Positions that no peer answered, or whose lookup failed,
// are returned as unfetched; fetched cells keep the order of positions.
// A record of unexpected size fails the whole fetch with cell.ErrInvalidCellSize.
func (c *Client) FetchCellsFromDHT(
	ctx context.Context,
	block uint64,
	positions []cell.Position,
) (fetched []cell.Cell, unfetched []cell.Position, err error) {
	ctx, span := tracer.Start(ctx, "fetch-cells", trace.WithAttributes(
		attribute.Int64("block", int64(block)),
		attribute.Int("positions", len(positions)),
	))
	defer func() {
		span.SetAttributes(attribute.Int("fetched", len(fetched)))
		utils.SetStatusAndEnd(span, err)
	}()

	limit := c.net.params.ParallelismLimit
	for start := 0; start < len(positions); start += limit {
		end := min(start+limit, len(positions))
		chunk := positions[start:end]

		results := make([]*cell.Cell, len(chunk))
		errGr, fetchCtx := errgroup.WithContext(ctx)
		for i, pos := range chunk {
			errGr.Go(func() error {
				cl, err := c.fetchCell(fetchCtx, block, pos)
				results[i] = cl
				return err
			})
		}
		if err := errGr.Wait(); err != nil {
			return nil, nil, err
		}

		for i, res := range results {
			if res == nil {
				unfetched = append(unfetched, chunk[i])
				continue
			}
			fetched = append(fetched, *res)
		}
	}

	log.Debugw("fetched cells from DHT",
		"block", block,
		"fetched", len(fetched),
		"unfetched", len(unfetched),
	)
	return fetched, unfetched, nil
}

func (c *Client) fetchCell(ctx context.Context, block uint64, pos cell.Position) (*cell.Cell, error) {
	records, err := c.GetRecord(ctx, pos.Key(block), QuorumOne)
	switch {
	case ctx.Err() != nil:
		return nil, ctx.Err()
	case errors.Is(err, ErrNetworkStopped):
		return nil, err
	case err != nil:
		log.Debugw("cell lookup failed", "ref", pos.Reference(block), "err", err)
		return nil, nil
	case len(records) == 0:
		return nil, nil
	}

	cl, err := cell.NewCell(pos, records[0].Value)
	if err != nil {
		return nil, fmt.Errorf("p2p: record %s: %w", pos.Reference(block), err)
	}
	return &cl, nil
}

// InsertIntoDHT stores the cells of the block in the DHT with up to ParallelismLimit concurrent
// insertions. It returns the share of successful insertions, 1 for no cells.
func (c *Client) InsertIntoDHT(ctx context.Context, block uint64, cells []cell.Cell) float64 {
	if len(cells) == 0 {
		return 1
	}
	ctx, span := tracer.Start(ctx, "insert-cells", trace.WithAttributes(
		attribute.Int64("block", int64(block)),
		attribute.Int("cells", len(cells)),
	))
	defer span.End()

	var (
		lk     sync.Mutex
		failed int
	)
	expires := c.net.params.clock.Now().Add(c.net.params.RecordTTL)
	wp := workerpool.New(c.net.params.ParallelismLimit)
	for _, cl := range cells {
		wp.Submit(func() {
			rec := Record{
				Key:     []byte(cl.Key(block)),
				Value:   cl.Content[:],
				Expires: expires,
			}
			if err := c.PutRecord(ctx, rec, QuorumOne); err != nil {
				log.Debugw("cell insertion failed", "ref", cl.Reference(block), "err", err)
				lk.Lock()
				failed++
				lk.Unlock()
			}
		})
	}
	wp.StopWait()

	rate := 1 - float64(failed)/float64(len(cells))
	span.SetAttributes(attribute.Float64("success_rate", rate))
	log.Debugw("inserted cells into DHT", "block", block, "cells", len(cells), "success_rate", rate)
	return rate
}

func (c *Client) send(ctx context.Context, cmd command) error {
	select {
	case c.net.cmds <- cmd:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-c.net.stopped:
		return ErrNetworkStopped
	}
}

func (c *Client) waitErr(ctx context.Context, resp <-chan error) error {
	select {
	case err := <-resp:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-c.net.stopped:
		return ErrNetworkStopped
	}
}
