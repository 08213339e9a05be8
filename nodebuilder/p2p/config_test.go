package p2p

import (
	"testing"

	dht "github.com/libp2p/go-libp2p-kad-dht"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bootstrapAddr = "/ip4/127.0.0.1/tcp/37000/p2p/12D3KooWSRqDfpLsQxpyUhLC9oXHD2WuZ2y5FWzDri7LT4Dw9fSi"

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	peers, err := cfg.bootstrappers()
	require.NoError(t, err)
	assert.Empty(t, peers)

	cfg.BootstrapPeers = []string{bootstrapAddr}
	require.NoError(t, cfg.Validate())
	peers, err = cfg.bootstrappers()
	require.NoError(t, err)
	require.Len(t, peers, 1)
	assert.Len(t, peers[0].Addrs, 1)

	invalid := []func(*Config){
		func(c *Config) { c.ListenAddresses = []string{"not-a-multiaddr"} },
		// bootstrap peers need an identity
		func(c *Config) { c.BootstrapPeers = []string{"/ip4/127.0.0.1/tcp/37000"} },
		func(c *Config) { c.ParallelismLimit = 0 },
		func(c *Config) { c.RecordTTL = 0 },
		func(c *Config) { c.CommandQueueSize = -1 },
		func(c *Config) { c.DHTMode = "relay" },
	}
	for _, mutate := range invalid {
		cfg := DefaultConfig()
		mutate(&cfg)
		require.Error(t, cfg.Validate())
	}
}

func TestConfig_Mode(t *testing.T) {
	for in, expected := range map[string]dht.ModeOpt{
		"":       dht.ModeAuto,
		"auto":   dht.ModeAuto,
		"client": dht.ModeClient,
		"server": dht.ModeServer,
	} {
		cfg := Config{DHTMode: in}
		mode, err := cfg.mode()
		require.NoError(t, err)
		assert.Equal(t, expected, mode)
	}
}
