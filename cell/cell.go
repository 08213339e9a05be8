// Package cell defines the coordinates and contents of the erasure-coded data matrix
// sampled by the light node, and the network-wide naming of each cell in the DHT.
package cell

import (
	"errors"
	"fmt"
)

const (
	// CommitmentSize is the size of the proof part of a cell.
	CommitmentSize = 48
	// ChunkSize is the size of the data part of a cell.
	ChunkSize = 32
	// CellSize is the exact size of a cell's content.
	CellSize = CommitmentSize + ChunkSize

	// Namespace is the DHT record namespace all cell keys live in.
	Namespace = "avail"
)

// ErrInvalidCellSize is returned whenever cell content is not exactly CellSize bytes long.
var ErrInvalidCellSize = errors.New("cell: invalid content size")

// Position is a coordinate in a block's data matrix.
type Position struct {
	Row uint32 `json:"row"`
	Col uint32 `json:"col"`
}

// Reference returns the name of the cell at the position for the given block.
// Every honest node derives the same reference for the same cell.
func (p Position) Reference(block uint64) string {
	return fmt.Sprintf("%d:%d:%d", block, p.Col, p.Row)
}

// Key returns the DHT record key of the cell at the position for the given block.
func (p Position) Key(block uint64) string {
	return "/" + Namespace + "/" + p.Reference(block)
}

func (p Position) String() string {
	return fmt.Sprintf("(%d, %d)", p.Row, p.Col)
}

// Cell is one matrix coordinate worth of data together with its opening proof.
type Cell struct {
	Position Position
	Content  [CellSize]byte
}

// NewCell validates the content length and constructs a Cell.
func NewCell(pos Position, content []byte) (Cell, error) {
	if len(content) != CellSize {
		return Cell{}, fmt.Errorf("%w: position %s, got %d bytes, want %d",
			ErrInvalidCellSize, pos, len(content), CellSize)
	}

	c := Cell{Position: pos}
	copy(c.Content[:], content)
	return c, nil
}

// Proof returns the proof part of the cell.
func (c *Cell) Proof() []byte {
	return c.Content[:CommitmentSize]
}

// Data returns the data part of the cell.
func (c *Cell) Data() []byte {
	return c.Content[CommitmentSize:]
}

// Reference is a shorthand for c.Position.Reference.
func (c *Cell) Reference(block uint64) string {
	return c.Position.Reference(block)
}

// Key is a shorthand for c.Position.Key.
func (c *Cell) Key(block uint64) string {
	return c.Position.Key(block)
}

// Positions returns the positions of the given cells preserving the order.
func Positions(cells []Cell) []Position {
	out := make([]Position, len(cells))
	for i := range cells {
		out[i] = cells[i].Position
	}
	return out
}
