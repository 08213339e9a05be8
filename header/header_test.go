package header

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const notificationFrame = `{
  "jsonrpc": "2.0",
  "method": "header",
  "params": {
    "subscription": "abc",
    "result": {
      "number": "0x2a",
      "extrinsics_root": {"commitment": [1, 2, 3, 255], "rows": 4, "cols": 4},
      "app_data_lookup": {"size": 10, "index": [[1, 0], [2, 6]]}
    }
  }
}`

func TestParseNotification(t *testing.T) {
	h, err := ParseNotification([]byte(notificationFrame))
	require.NoError(t, err)

	assert.Equal(t, uint64(42), h.Number)
	assert.Equal(t, uint16(4), h.Rows)
	assert.Equal(t, uint16(4), h.Cols)
	assert.Equal(t, []byte{1, 2, 3, 255}, h.Commitment)
	assert.Equal(t, uint32(10), h.AppSize)
	assert.Equal(t, []AppIndexEntry{{AppID: 1, Start: 0}, {AppID: 2, Start: 6}}, h.AppIndex)
}

func TestParseNotification_Malformed(t *testing.T) {
	frames := []string{
		`not json`,
		`{"params":{"result":{"number":"0xzz"}}}`,
		`{"params":{"result":{"number":""}}}`,
		`{"params":{"result":{"number":"0x1","extrinsics_root":{"rows":-1}}}}`,
	}
	for _, f := range frames {
		_, err := ParseNotification([]byte(f))
		require.ErrorIs(t, err, ErrMalformed, f)
	}
}

func TestParseNumber(t *testing.T) {
	n, err := ParseNumber("0xff")
	require.NoError(t, err)
	assert.Equal(t, uint64(255), n)

	n, err = ParseNumber("10")
	require.NoError(t, err)
	assert.Equal(t, uint64(16), n)
}

func TestBlockHeader_AppRows(t *testing.T) {
	h, err := ParseNotification([]byte(notificationFrame))
	require.NoError(t, err)

	// app 1 occupies cells [0, 6) -> rows 0..1
	assert.Equal(t, []uint32{0, 1}, h.AppRows(1))
	// app 2 occupies cells [6, 10) -> rows 1..2
	assert.Equal(t, []uint32{1, 2}, h.AppRows(2))
	assert.Nil(t, h.AppRows(3))
}

func TestBlockHeader_AppRowsBounds(t *testing.T) {
	tests := []struct {
		name  string
		size  uint32
		index []AppIndexEntry
		want  []uint32
	}{
		{
			name:  "start beyond matrix",
			index: []AppIndexEntry{{AppID: 1, Start: 100}},
		},
		{
			name:  "start at matrix end",
			size:  16,
			index: []AppIndexEntry{{AppID: 1, Start: 16}},
		},
		{
			name:  "end beyond matrix",
			size:  400,
			index: []AppIndexEntry{{AppID: 1, Start: 9}},
			want:  []uint32{2, 3},
		},
		{
			name:  "next entry beyond matrix",
			index: []AppIndexEntry{{AppID: 1, Start: 4}, {AppID: 2, Start: 50}},
			want:  []uint32{1, 2, 3},
		},
		{
			name:  "unknown size",
			index: []AppIndexEntry{{AppID: 1, Start: 5}},
			want:  []uint32{1, 2, 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &BlockHeader{Rows: 4, Cols: 4, AppSize: tt.size, AppIndex: tt.index}
			assert.Equal(t, tt.want, h.AppRows(1))
		})
	}
}

func TestBlockHeader_AppRowsFromFrame(t *testing.T) {
	frame := `{"params":{"result":{
		"number":"0x1",
		"extrinsics_root":{"commitment":[],"rows":4,"cols":4},
		"app_data_lookup":{"size":0,"index":[[1,100]]}
	}}}`
	h, err := ParseNotification([]byte(frame))
	require.NoError(t, err)
	assert.Nil(t, h.AppRows(1))
}
