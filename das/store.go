package das

import (
	"context"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/ipfs/go-datastore"
	"github.com/ipfs/go-datastore/namespace"
	"github.com/ipfs/go-datastore/query"
)

var storePrefix = datastore.NewKey("das/confidence")

// ConfidenceReader gives read-only access to the amount of verified samples per block.
type ConfidenceReader interface {
	// Get returns the verified sample count of the block, if the block was sampled.
	Get(block uint64) (uint32, bool)
}

// ConfidenceStore maps block numbers to the amount of verified samples.
// A single lock guards the whole map as it is written once per block.
// When constructed over a datastore, every write is persisted under the `das/confidence` prefix.
type ConfidenceStore struct {
	lk     sync.Mutex
	counts map[uint64]uint32

	ds datastore.Datastore
}

// NewConfidenceStore creates an in-memory ConfidenceStore.
func NewConfidenceStore() *ConfidenceStore {
	return &ConfidenceStore{counts: make(map[uint64]uint32)}
}

// NewPersistentConfidenceStore creates a ConfidenceStore writing through to the given datastore.
func NewPersistentConfidenceStore(ds datastore.Datastore) *ConfidenceStore {
	s := NewConfidenceStore()
	s.ds = namespace.Wrap(ds, storePrefix)
	return s
}

// Upsert sets the verified sample count of the block.
func (s *ConfidenceStore) Upsert(ctx context.Context, block uint64, count uint32) error {
	s.lk.Lock()
	defer s.lk.Unlock()

	s.counts[block] = count
	if s.ds == nil {
		return nil
	}

	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, count)
	if err := s.ds.Put(ctx, blockKey(block), buf); err != nil {
		return fmt.Errorf("das: persisting confidence for block %d: %w", block, err)
	}
	return nil
}

// Get returns the verified sample count of the block.
func (s *ConfidenceStore) Get(block uint64) (uint32, bool) {
	s.lk.Lock()
	defer s.lk.Unlock()

	count, ok := s.counts[block]
	return count, ok
}

// Len reports the amount of blocks in the store.
func (s *ConfidenceStore) Len() int {
	s.lk.Lock()
	defer s.lk.Unlock()
	return len(s.counts)
}

// Load fills the store with every entry persisted in the datastore.
func (s *ConfidenceStore) Load(ctx context.Context) error {
	if s.ds == nil {
		return nil
	}

	res, err := s.ds.Query(ctx, query.Query{})
	if err != nil {
		return err
	}
	entries, err := res.Rest()
	if err != nil {
		return err
	}

	s.lk.Lock()
	defer s.lk.Unlock()
	for _, e := range entries {
		block, err := strconv.ParseUint(strings.TrimPrefix(e.Key, "/"), 10, 64)
		if err != nil {
			log.Warnw("skipping malformed confidence key", "key", e.Key, "err", err)
			continue
		}
		if len(e.Value) != 4 {
			log.Warnw("skipping malformed confidence value", "block", block, "len", len(e.Value))
			continue
		}
		s.counts[block] = binary.BigEndian.Uint32(e.Value)
	}

	log.Infow("loaded confidence store", "blocks", len(s.counts))
	return nil
}

func blockKey(block uint64) datastore.Key {
	return datastore.NewKey(strconv.FormatUint(block, 10))
}
