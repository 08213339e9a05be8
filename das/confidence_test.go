package das

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfidence(t *testing.T) {
	assert.Equal(t, 0.0, Confidence(0))
	assert.Equal(t, 50.0, Confidence(1))
	assert.Equal(t, 96.875, Confidence(5))
	assert.InDelta(t, 99.9984741, Confidence(16), 1e-6)

	prev := Confidence(0)
	for i := uint32(1); i <= 40; i++ {
		c := Confidence(i)
		assert.Greater(t, c, prev, "count %d", i)
		prev = c
	}
	assert.InDelta(t, 100.0, Confidence(40), 1e-9)

	// beyond float64 precision the value saturates right below 100
	for _, i := range []uint32{41, 53, 54, 63, 64, 1000, math.MaxUint32} {
		c := Confidence(i)
		assert.GreaterOrEqual(t, c, prev, "count %d", i)
		assert.Less(t, c, 100.0, "count %d", i)
		prev = c
	}
	assert.Equal(t, math.Nextafter(100, 0), Confidence(math.MaxUint32))
}

func TestSerializeConfidence(t *testing.T) {
	tests := []struct {
		block uint64
		count uint32
	}{
		{0, 0},
		{1, 5},
		{42, 16},
		{1 << 40, 8},
		{math.MaxUint64, 30},
	}

	for _, tt := range tests {
		conf := Confidence(tt.count)
		s := SerializeConfidence(tt.block, conf)

		block, factor, err := DeserializeConfidence(s)
		require.NoError(t, err)
		assert.Equal(t, tt.block, block)
		assert.Equal(t, uint32(conf*confidenceScale), factor)
	}

	// 5 samples: 96.875% -> 968750000
	assert.Equal(t, "5263717296", SerializeConfidence(1, Confidence(5)))
}

func TestDeserializeConfidence_Malformed(t *testing.T) {
	for _, s := range []string{"", "abc", "-1", "340282366920938463463374607431768211456"} {
		_, _, err := DeserializeConfidence(s)
		assert.Error(t, err, s)
	}
}
