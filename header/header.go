// Package header models the block headers announced by the full node and decodes
// the new-head notifications they arrive in.
package header

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformed wraps every failure to decode a notification into a BlockHeader.
var ErrMalformed = errors.New("header: malformed notification")

// AppIndexEntry marks the first cell index occupied by an application in the data matrix.
type AppIndexEntry struct {
	AppID uint32
	Start uint32
}

// UnmarshalJSON decodes the [app_id, start] tuple form.
func (e *AppIndexEntry) UnmarshalJSON(b []byte) error {
	var tuple [2]uint32
	if err := json.Unmarshal(b, &tuple); err != nil {
		return err
	}
	e.AppID, e.Start = tuple[0], tuple[1]
	return nil
}

// MarshalJSON encodes the entry as a [app_id, start] tuple.
func (e AppIndexEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]uint32{e.AppID, e.Start})
}

// BlockHeader is the part of a block header the light node samples against.
type BlockHeader struct {
	Number     uint64
	Rows       uint16
	Cols       uint16
	Commitment []byte
	// AppSize is the amount of cells occupied by application data.
	AppSize  uint32
	AppIndex []AppIndexEntry
}

// AppRows returns the matrix rows holding the data of the given application,
// or nil if the application has no data in the block.
func (h *BlockHeader) AppRows(appID uint32) []uint32 {
	if h.Cols == 0 {
		return nil
	}

	total := uint32(h.Rows) * uint32(h.Cols)
	for i, e := range h.AppIndex {
		if e.AppID != appID {
			continue
		}
		// an index pointing outside of the matrix carries no rows
		if e.Start >= total {
			return nil
		}

		end := h.AppSize
		if i+1 < len(h.AppIndex) {
			end = h.AppIndex[i+1].Start
		}
		if end == 0 || end <= e.Start || end > total {
			end = total
		}

		first, last := e.Start/uint32(h.Cols), (end-1)/uint32(h.Cols)
		rows := make([]uint32, 0, last-first+1)
		for r := first; r <= last; r++ {
			rows = append(rows, r)
		}
		return rows
	}
	return nil
}

func (h *BlockHeader) String() string {
	return fmt.Sprintf("block %d (%dx%d)", h.Number, h.Rows, h.Cols)
}

type notification struct {
	Params struct {
		Result rawHeader `json:"result"`
	} `json:"params"`
}

type rawHeader struct {
	Number         string `json:"number"`
	ExtrinsicsRoot struct {
		Commitment []byte `json:"commitment"`
		Rows       uint16 `json:"rows"`
		Cols       uint16 `json:"cols"`
	} `json:"extrinsics_root"`
	AppDataLookup struct {
		Size  uint32          `json:"size"`
		Index []AppIndexEntry `json:"index"`
	} `json:"app_data_lookup"`
}

// ParseNotification decodes a `subscribe_newHead` notification frame.
func ParseNotification(data []byte) (*BlockHeader, error) {
	var n notification
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	raw := n.Params.Result
	num, err := ParseNumber(raw.Number)
	if err != nil {
		return nil, err
	}

	return &BlockHeader{
		Number:     num,
		Rows:       raw.ExtrinsicsRoot.Rows,
		Cols:       raw.ExtrinsicsRoot.Cols,
		Commitment: raw.ExtrinsicsRoot.Commitment,
		AppSize:    raw.AppDataLookup.Size,
		AppIndex:   raw.AppDataLookup.Index,
	}, nil
}

// ParseNumber parses a 0x-prefixed hex block number.
func ParseNumber(s string) (uint64, error) {
	num, err := strconv.ParseUint(strings.TrimPrefix(s, "0x"), 16, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: block number %q: %w", ErrMalformed, s, err)
	}
	return num, nil
}
