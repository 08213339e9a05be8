// Package proof verifies sampled cells against the row commitments published in block headers.
package proof

import (
	"errors"
	"fmt"
	"math/big"
	"os"
	"sync"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr/fft"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/kzg"
	logging "github.com/ipfs/go-log/v2"

	"github.com/lightdas/light-node/cell"
)

var log = logging.Logger("proof")

var errOutOfMatrix = errors.New("proof: position outside of matrix")

// Verifier checks cells against a block commitment.
type Verifier interface {
	// VerifyCells returns the amount of cells whose proofs hold against the commitment.
	// A failing cell only lowers the count.
	VerifyCells(rows, cols uint16, cells []cell.Cell, commitment []byte) uint32
}

// KZGVerifier verifies BLS12-381 KZG openings. The header commitment is the concatenation of
// compressed per-row commitments; a cell's proof opens its row polynomial at the col-th root of
// unity of the row domain and its data is the little-endian evaluation.
type KZGVerifier struct {
	vk kzg.VerifyingKey

	domainsLk sync.Mutex
	domains   map[uint16]*fft.Domain
}

// NewKZGVerifier creates a KZGVerifier over the given verifying key.
func NewKZGVerifier(vk kzg.VerifyingKey) *KZGVerifier {
	return &KZGVerifier{
		vk:      vk,
		domains: make(map[uint16]*fft.Domain),
	}
}

// LoadKZGVerifier reads a serialized SRS from the given path and creates a KZGVerifier.
func LoadKZGVerifier(path string) (*KZGVerifier, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("proof: opening public parameters: %w", err)
	}
	defer f.Close()

	var srs kzg.SRS
	if _, err = srs.ReadFrom(f); err != nil {
		return nil, fmt.Errorf("proof: reading public parameters from %s: %w", path, err)
	}
	return NewKZGVerifier(srs.Vk), nil
}

func (v *KZGVerifier) VerifyCells(rows, cols uint16, cells []cell.Cell, commitment []byte) uint32 {
	var count uint32
	for i := range cells {
		if err := v.verifyCell(rows, cols, &cells[i], commitment); err != nil {
			log.Debugw("cell verification failed", "position", cells[i].Position, "err", err)
			continue
		}
		count++
	}
	return count
}

func (v *KZGVerifier) verifyCell(rows, cols uint16, c *cell.Cell, commitment []byte) error {
	if c.Position.Row >= uint32(rows) || c.Position.Col >= uint32(cols) {
		return errOutOfMatrix
	}

	off := int(c.Position.Row) * cell.CommitmentSize
	if len(commitment) < off+cell.CommitmentSize {
		return fmt.Errorf("proof: commitment too short for row %d", c.Position.Row)
	}

	var digest kzg.Digest
	if _, err := digest.SetBytes(commitment[off : off+cell.CommitmentSize]); err != nil {
		return fmt.Errorf("proof: decoding row commitment: %w", err)
	}

	var opening kzg.OpeningProof
	if _, err := opening.H.SetBytes(c.Proof()); err != nil {
		return fmt.Errorf("proof: decoding opening: %w", err)
	}
	if err := opening.ClaimedValue.SetBytesCanonical(reverse(c.Data())); err != nil {
		return fmt.Errorf("proof: decoding evaluation: %w", err)
	}

	var point fr.Element
	point.Exp(v.domain(cols).Generator, new(big.Int).SetUint64(uint64(c.Position.Col)))

	return kzg.Verify(&digest, &opening, point, v.vk)
}

func (v *KZGVerifier) domain(cols uint16) *fft.Domain {
	v.domainsLk.Lock()
	defer v.domainsLk.Unlock()

	d, ok := v.domains[cols]
	if !ok {
		d = fft.NewDomain(uint64(cols))
		v.domains[cols] = d
	}
	return d
}

// reverse returns a reversed copy of b, converting between little and big endian.
func reverse(b []byte) []byte {
	out := make([]byte, len(b))
	for i := range b {
		out[len(b)-1-i] = b[i]
	}
	return out
}
