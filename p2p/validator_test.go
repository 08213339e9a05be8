package p2p

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lightdas/light-node/cell"
)

func TestValidator(t *testing.T) {
	v := Validator{}
	key := cell.Position{Row: 1, Col: 2}.Key(7)

	require.NoError(t, v.Validate(key, make([]byte, cell.CellSize)))
	// length is checked by the consumer
	require.NoError(t, v.Validate(key, []byte{1}))
	require.Error(t, v.Validate(key, nil))
	require.Error(t, v.Validate("/other/7:2:1", []byte{1}))
	require.Error(t, v.Validate("no-namespace", []byte{1}))

	idx, err := v.Select(key, [][]byte{{1}, make([]byte, cell.CellSize)})
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	idx, err = v.Select(key, [][]byte{{1}, {2}})
	require.NoError(t, err)
	assert.Equal(t, 0, idx)

	_, err = v.Select(key, nil)
	require.Error(t, err)
}
