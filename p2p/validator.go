package p2p

import (
	"errors"
	"fmt"

	record "github.com/libp2p/go-libp2p-record"

	"github.com/lightdas/light-node/cell"
)

var errEmptyRecord = errors.New("p2p: empty cell record")

// Validator accepts records stored under the cell namespace.
// Records are opaque to the DHT: cell contents are checked against the block commitment by
// the consumer, so any non-empty value is accepted and a well-formed cell is preferred on select.
type Validator struct{}

var _ record.Validator = Validator{}

func (Validator) Validate(key string, value []byte) error {
	ns, _, err := record.SplitKey(key)
	if err != nil {
		return err
	}
	if ns != cell.Namespace {
		return fmt.Errorf("p2p: unexpected record namespace %q", ns)
	}
	if len(value) == 0 {
		return errEmptyRecord
	}
	return nil
}

func (Validator) Select(_ string, values [][]byte) (int, error) {
	if len(values) == 0 {
		return 0, errEmptyRecord
	}
	for i, v := range values {
		if len(v) == cell.CellSize {
			return i, nil
		}
	}
	return 0, nil
}
