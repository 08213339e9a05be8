package das

import (
	"fmt"
	"math"
	"math/big"
)

// confidenceScale is the fixed-point factor confidence is packed with.
const confidenceScale = 1e7

// maxConfidence is the largest float64 below 100. Past ~53 samples the formula rounds to 100.
var maxConfidence = math.Nextafter(100, 0)

// Confidence returns the probability, in percent, that the block data is available given the
// amount of successfully verified samples. It is 0 for no samples and approaches, but never
// reaches, 100.
func Confidence(verified uint32) float64 {
	return min(100*(1-math.Pow(2, -float64(verified))), maxConfidence)
}

// SerializeConfidence packs the block number and the confidence into a single decimal integer:
// (block << 32) | floor(confidence * 10^7).
func SerializeConfidence(block uint64, confidence float64) string {
	packed := new(big.Int).SetUint64(block)
	packed.Lsh(packed, 32)
	factor := new(big.Int).SetUint64(uint64(confidence * confidenceScale))
	packed.Or(packed, factor)
	return packed.Text(10)
}

// DeserializeConfidence reverses SerializeConfidence, returning the block number and the
// fixed-point confidence factor.
func DeserializeConfidence(s string) (block uint64, factor uint32, err error) {
	packed, ok := new(big.Int).SetString(s, 10)
	if !ok || packed.Sign() < 0 {
		return 0, 0, fmt.Errorf("das: malformed serialized confidence %q", s)
	}

	mask := new(big.Int).SetUint64(math.MaxUint32)
	low := new(big.Int).And(packed, mask)
	high := new(big.Int).Rsh(packed, 32)
	if !high.IsUint64() {
		return 0, 0, fmt.Errorf("das: block number overflows in serialized confidence %q", s)
	}
	return high.Uint64(), uint32(low.Uint64()), nil
}
