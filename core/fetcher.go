// Package core fetches cells and their proofs from the full node's JSON-RPC endpoint.
package core

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/filecoin-project/go-jsonrpc"
	lru "github.com/hashicorp/golang-lru/v2"
	logging "github.com/ipfs/go-log/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/lightdas/light-node/cell"
	"github.com/lightdas/light-node/libs/utils"
)

var (
	log    = logging.Logger("core")
	tracer = otel.Tracer("core")
)

// ErrProofLength is returned when the full node answers with a proof of unexpected size.
var ErrProofLength = errors.New("core: unexpected proof length")

// kateAPI is the subset of the full node RPC used by the light node.
type kateAPI struct {
	GetBlockHash func(ctx context.Context, number uint64) (string, error)                    `rpc_method:"chain_getBlockHash"`
	QueryProof   func(ctx context.Context, cells []cell.Position, at string) ([]byte, error) `rpc_method:"kate_queryProof"`
}

// hashCacheSize is the amount of recent block hashes kept. A block is queried at most twice,
// once for sampling and once for its app rows, so only the latest few are ever reused.
const hashCacheSize = 16

// ProofFetcher requests cells with their opening proofs from a full node.
type ProofFetcher struct {
	endpoint string
	api      kateAPI
	closer   jsonrpc.ClientCloser

	hashes *lru.Cache[uint64, string]
}

// NewProofFetcher creates a ProofFetcher talking to the given HTTP JSON-RPC endpoint.
func NewProofFetcher(ctx context.Context, endpoint string) (*ProofFetcher, error) {
	hashes, err := lru.New[uint64, string](hashCacheSize)
	if err != nil {
		return nil, fmt.Errorf("core: creating block hash cache: %w", err)
	}

	f := &ProofFetcher{endpoint: endpoint, hashes: hashes}
	closer, err := jsonrpc.NewClient(ctx, endpoint, "kate", &f.api, http.Header{})
	if err != nil {
		return nil, fmt.Errorf("core: connecting to %s: %w", endpoint, err)
	}
	f.closer = closer
	return f, nil
}

// GetKateProof fetches the cells at the given positions of the block.
// The full node answers with CellSize bytes per requested position, in request order.
func (f *ProofFetcher) GetKateProof(
	ctx context.Context,
	block uint64,
	positions []cell.Position,
) (_ []cell.Cell, err error) {
	if len(positions) == 0 {
		return nil, nil
	}
	ctx, span := tracer.Start(ctx, "get-kate-proof", trace.WithAttributes(
		attribute.Int64("block", int64(block)),
		attribute.Int("cells", len(positions)),
	))
	defer func() {
		utils.SetStatusAndEnd(span, err)
	}()

	hash, err := f.blockHash(ctx, block)
	if err != nil {
		return nil, err
	}

	raw, err := f.api.QueryProof(ctx, positions, hash)
	if err != nil {
		return nil, fmt.Errorf("core: querying proof for block %d: %w", block, err)
	}
	log.Debugw("fetched proof", "block", block, "hash", hash, "cells", len(positions), "bytes", len(raw))

	return SplitCells(positions, raw)
}

// GetAppCells fetches every cell of the given rows of the block.
func (f *ProofFetcher) GetAppCells(
	ctx context.Context,
	block uint64,
	rows []uint32,
	cols uint16,
) ([]cell.Cell, error) {
	return f.GetKateProof(ctx, block, cell.RowPositions(rows, uint32(cols)))
}

func (f *ProofFetcher) blockHash(ctx context.Context, block uint64) (string, error) {
	if hash, ok := f.hashes.Get(block); ok {
		return hash, nil
	}

	hash, err := f.api.GetBlockHash(ctx, block)
	if err != nil {
		return "", fmt.Errorf("core: getting hash of block %d: %w", block, err)
	}
	f.hashes.Add(block, hash)
	return hash, nil
}

// SplitCells cuts a proof response into cells matching the requested positions.
func SplitCells(positions []cell.Position, raw []byte) ([]cell.Cell, error) {
	if len(raw) != cell.CellSize*len(positions) {
		return nil, fmt.Errorf("%w: got %d bytes for %d cells", ErrProofLength, len(raw), len(positions))
	}

	cells := make([]cell.Cell, len(positions))
	for i, pos := range positions {
		c, err := cell.NewCell(pos, raw[i*cell.CellSize:(i+1)*cell.CellSize])
		if err != nil {
			return nil, err
		}
		cells[i] = c
	}
	return cells, nil
}

// Close closes the underlying RPC client.
func (f *ProofFetcher) Close() {
	if f.closer != nil {
		f.closer()
	}
}
