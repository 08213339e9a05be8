package nodebuilder

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigWriteRead(t *testing.T) {
	buf := bytes.NewBuffer(nil)
	in := DefaultConfig()

	err := in.Encode(buf)
	require.NoError(t, err)

	var out Config
	err = out.Decode(buf)
	require.NoError(t, err)
	assert.EqualValues(t, in, &out)
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.Core.RPCEndpoint = ""
	cfg.DASer.SampleAmount = 0
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "core")
	assert.Contains(t, err.Error(), "das")
}

func TestUpdateConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Init(*DefaultConfig(), dir))

	// an older config which lacks fields added later
	outdated := []byte(`
[Core]
  RPCEndpoint = "http://10.0.0.1:9933"

[DASer]
  AppID = 7
`)
	require.NoError(t, os.WriteFile(configPath(dir), outdated, 0o600))

	err := UpdateConfig(dir)
	require.NoError(t, err)

	cfg, err := LoadConfig(configPath(dir))
	require.NoError(t, err)
	def := DefaultConfig()
	// user values are kept
	assert.Equal(t, "http://10.0.0.1:9933", cfg.Core.RPCEndpoint)
	assert.EqualValues(t, 7, cfg.DASer.AppID)
	// missing ones are filled
	assert.Equal(t, def.Core.WSEndpoint, cfg.Core.WSEndpoint)
	assert.Equal(t, def.DASer.SampleAmount, cfg.DASer.SampleAmount)
	assert.Equal(t, def.P2P.ListenAddresses, cfg.P2P.ListenAddresses)
	assert.Equal(t, def.Node, cfg.Node)
	require.NoError(t, cfg.Validate())
}

func TestUpdateConfig_Locked(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Init(*DefaultConfig(), dir))

	store, err := OpenStore(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	assert.ErrorIs(t, UpdateConfig(dir), ErrOpened)
	assert.ErrorIs(t, RemoveConfig(dir), ErrOpened)
}
