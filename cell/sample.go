package cell

import (
	crand "crypto/rand"
	"math/big"
)

// RandomPositions randomly picks *num* unique positions from a matrix of the given dimensions.
// If the matrix has fewer than num cells, all of them are returned.
func RandomPositions(rows, cols uint32, num int) []Position {
	total := int(rows) * int(cols)
	if total == 0 || num <= 0 {
		return nil
	}
	if num >= total {
		return AllPositions(rows, cols)
	}

	smpls := make(map[Position]struct{}, num)
	out := make([]Position, 0, num)
	for len(out) < num {
		p := Position{
			Row: randUint32(rows),
			Col: randUint32(cols),
		}
		if _, ok := smpls[p]; ok {
			continue
		}
		smpls[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// AllPositions returns every position of a matrix in row-major order.
func AllPositions(rows, cols uint32) []Position {
	out := make([]Position, 0, int(rows)*int(cols))
	for r := uint32(0); r < rows; r++ {
		for c := uint32(0); c < cols; c++ {
			out = append(out, Position{Row: r, Col: c})
		}
	}
	return out
}

// RowPositions returns every position of the given rows in row-major order.
func RowPositions(rowIdx []uint32, cols uint32) []Position {
	out := make([]Position, 0, len(rowIdx)*int(cols))
	for _, r := range rowIdx {
		for c := uint32(0); c < cols; c++ {
			out = append(out, Position{Row: r, Col: c})
		}
	}
	return out
}

func randUint32(max uint32) uint32 {
	n, err := crand.Int(crand.Reader, big.NewInt(int64(max)))
	if err != nil {
		panic(err) // won't panic as rand.Reader is endless
	}

	return uint32(n.Uint64())
}
