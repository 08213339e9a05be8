package das

import (
	"context"

	"github.com/lightdas/light-node/cell"
)

// ProofGetter retrieves cells together with their opening proofs from a full node.
type ProofGetter interface {
	// GetKateProof returns the cells of the block at the given positions, in order.
	GetKateProof(ctx context.Context, block uint64, positions []cell.Position) ([]cell.Cell, error)
	// GetAppCells returns every cell of the given rows of the block.
	GetAppCells(ctx context.Context, block uint64, rows []uint32, cols uint16) ([]cell.Cell, error)
}

// CellNetwork exchanges cells with other light nodes.
type CellNetwork interface {
	// FetchCellsFromDHT returns the cells found for the given positions and the positions no
	// peer could serve.
	FetchCellsFromDHT(
		ctx context.Context,
		block uint64,
		positions []cell.Position,
	) ([]cell.Cell, []cell.Position, error)
	// InsertIntoDHT publishes the cells and returns the share of successful insertions.
	InsertIntoDHT(ctx context.Context, block uint64, cells []cell.Cell) float64
}
