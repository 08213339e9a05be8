package nodebuilder

import (
	"context"
	"testing"

	"github.com/ipfs/go-datastore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepo(t *testing.T) {
	dir := t.TempDir()

	_, err := OpenStore(dir)
	assert.ErrorIs(t, err, ErrNotInited)

	err = Init(*DefaultConfig(), dir)
	require.NoError(t, err)
	assert.True(t, IsInit(dir))

	store, err := OpenStore(dir)
	require.NoError(t, err)

	_, err = OpenStore(dir)
	assert.ErrorIs(t, err, ErrOpened)

	key, err := store.Key()
	require.NoError(t, err)
	assert.NotNil(t, key)

	// the identity is persisted
	again, err := store.Key()
	require.NoError(t, err)
	assert.True(t, key.Equals(again))

	data, err := store.Datastore()
	assert.NoError(t, err)
	assert.NotNil(t, data)

	cfg, err := store.Config()
	assert.NoError(t, err)
	assert.NotNil(t, cfg)

	cfg.DASer.AppID = 3
	require.NoError(t, store.PutConfig(cfg))
	cfg, err = store.Config()
	require.NoError(t, err)
	assert.EqualValues(t, 3, cfg.DASer.AppID)

	err = store.Close()
	assert.NoError(t, err)

	// the lock is released on close
	store, err = OpenStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Close())
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	require.NoError(t, Init(*DefaultConfig(), dir))

	store, err := OpenStore(dir)
	require.NoError(t, err)
	key, err := store.Key()
	require.NoError(t, err)
	ds, err := store.Datastore()
	require.NoError(t, err)
	require.NoError(t, ds.Put(ctx, datastore.NewKey("confidence"), []byte{1}))

	assert.ErrorIs(t, Reset(dir), ErrOpened)
	require.NoError(t, store.Close())

	require.NoError(t, Reset(dir))
	assert.True(t, IsInit(dir))

	store, err = OpenStore(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	again, err := store.Key()
	require.NoError(t, err)
	assert.True(t, key.Equals(again))

	ds, err = store.Datastore()
	require.NoError(t, err)
	_, err = ds.Get(ctx, datastore.NewKey("confidence"))
	assert.ErrorIs(t, err, datastore.ErrNotFound)
}
