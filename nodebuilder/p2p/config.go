package p2p

import (
	"fmt"
	"time"

	dht "github.com/libp2p/go-libp2p-kad-dht"
	"github.com/libp2p/go-libp2p/core/peer"
	ma "github.com/multiformats/go-multiaddr"
)

// Config combines all configuration fields for P2P subsystem.
type Config struct {
	// ListenAddresses - Addresses to listen to on local NIC.
	ListenAddresses []string
	// BootstrapPeers - Full multiaddresses, including the /p2p/ part, of the peers to join the DHT through.
	BootstrapPeers []string
	// ParallelismLimit bounds the amount of concurrent DHT queries of a single fetch or insert.
	ParallelismLimit int
	// RecordTTL is the lifetime of the cell records, in seconds.
	RecordTTL uint64
	// CommandQueueSize is the capacity of the DHT command queue.
	CommandQueueSize int
	// DHTMode is one of "auto", "client" or "server".
	DHTMode string
}

// DefaultConfig returns default configuration for P2P subsystem.
func DefaultConfig() Config {
	return Config{
		ListenAddresses: []string{
			"/ip4/0.0.0.0/udp/37000/quic-v1",
			"/ip6/::/udp/37000/quic-v1",
			"/ip4/0.0.0.0/tcp/37000",
			"/ip6/::/tcp/37000",
		},
		BootstrapPeers:   []string{},
		ParallelismLimit: 800,
		RecordTTL:        3600,
		CommandQueueSize: 1024,
		DHTMode:          "auto",
	}
}

// Validate performs basic validation of the config.
func (cfg *Config) Validate() error {
	if _, err := cfg.listenAddrs(); err != nil {
		return err
	}
	if _, err := cfg.bootstrappers(); err != nil {
		return err
	}
	if _, err := cfg.mode(); err != nil {
		return err
	}
	if cfg.ParallelismLimit <= 0 {
		return fmt.Errorf("p2p: parallelism limit must be positive, got %d", cfg.ParallelismLimit)
	}
	if cfg.RecordTTL == 0 {
		return fmt.Errorf("p2p: record ttl must be positive")
	}
	if cfg.CommandQueueSize <= 0 {
		return fmt.Errorf("p2p: command queue size must be positive, got %d", cfg.CommandQueueSize)
	}
	return nil
}

func (cfg *Config) recordTTL() time.Duration {
	return time.Duration(cfg.RecordTTL) * time.Second
}

func (cfg *Config) listenAddrs() (_ []ma.Multiaddr, err error) {
	maddrs := make([]ma.Multiaddr, len(cfg.ListenAddresses))
	for i, addr := range cfg.ListenAddresses {
		maddrs[i], err = ma.NewMultiaddr(addr)
		if err != nil {
			return nil, fmt.Errorf("failure to parse config.P2P.ListenAddresses: %w", err)
		}
	}
	return maddrs, nil
}

func (cfg *Config) bootstrappers() (_ []peer.AddrInfo, err error) {
	maddrs := make([]ma.Multiaddr, len(cfg.BootstrapPeers))
	for i, addr := range cfg.BootstrapPeers {
		maddrs[i], err = ma.NewMultiaddr(addr)
		if err != nil {
			return nil, fmt.Errorf("failure to parse config.P2P.BootstrapPeers: %w", err)
		}
	}

	infos, err := peer.AddrInfosFromP2pAddrs(maddrs...)
	if err != nil {
		return nil, fmt.Errorf("failure to parse config.P2P.BootstrapPeers: %w", err)
	}
	return infos, nil
}

func (cfg *Config) mode() (dht.ModeOpt, error) {
	switch cfg.DHTMode {
	case "", "auto":
		return dht.ModeAuto, nil
	case "client":
		return dht.ModeClient, nil
	case "server":
		return dht.ModeServer, nil
	default:
		return 0, fmt.Errorf("p2p: unknown dht mode %q", cfg.DHTMode)
	}
}
