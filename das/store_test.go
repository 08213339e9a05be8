package das

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ipfs/go-datastore"
	ds_sync "github.com/ipfs/go-datastore/sync"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfidenceStore(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	t.Cleanup(cancel)

	s := NewConfidenceStore()
	_, ok := s.Get(42)
	assert.False(t, ok)

	require.NoError(t, s.Upsert(ctx, 42, 8))
	count, ok := s.Get(42)
	require.True(t, ok)
	assert.Equal(t, uint32(8), count)

	// upsert overwrites
	require.NoError(t, s.Upsert(ctx, 42, 16))
	count, _ = s.Get(42)
	assert.Equal(t, uint32(16), count)
	assert.Equal(t, 1, s.Len())
}

func TestConfidenceStore_Concurrent(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	t.Cleanup(cancel)

	s := NewConfidenceStore()
	var wg sync.WaitGroup
	for i := uint64(0); i < 100; i++ {
		wg.Add(2)
		go func(b uint64) {
			defer wg.Done()
			assert.NoError(t, s.Upsert(ctx, b, uint32(b)))
		}(i)
		go func(b uint64) {
			defer wg.Done()
			s.Get(b)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 100, s.Len())
}

func TestConfidenceStore_Persistence(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	t.Cleanup(cancel)

	ds := ds_sync.MutexWrap(datastore.NewMapDatastore())
	s := NewPersistentConfidenceStore(ds)
	require.NoError(t, s.Upsert(ctx, 1, 3))
	require.NoError(t, s.Upsert(ctx, 1<<40, 16))

	restored := NewPersistentConfidenceStore(ds)
	require.NoError(t, restored.Load(ctx))
	assert.Equal(t, 2, restored.Len())

	count, ok := restored.Get(1)
	require.True(t, ok)
	assert.Equal(t, uint32(3), count)
	count, ok = restored.Get(1 << 40)
	require.True(t, ok)
	assert.Equal(t, uint32(16), count)
}
