package core

import (
	"fmt"
	"net/url"
)

// Config combines all configuration fields for the connection to the full node.
type Config struct {
	// RPCEndpoint is the HTTP JSON-RPC endpoint cells and proofs are queried from.
	RPCEndpoint string
	// WSEndpoint is the websocket endpoint new heads are subscribed on.
	WSEndpoint string
}

// DefaultConfig returns default configuration for the full node connection.
func DefaultConfig() Config {
	return Config{
		RPCEndpoint: "http://127.0.0.1:9933",
		WSEndpoint:  "ws://127.0.0.1:9944",
	}
}

// Validate performs basic validation of the config.
func (cfg *Config) Validate() error {
	if err := validateEndpoint(cfg.RPCEndpoint, "http", "https"); err != nil {
		return fmt.Errorf("core: invalid rpc endpoint: %w", err)
	}
	if err := validateEndpoint(cfg.WSEndpoint, "ws", "wss"); err != nil {
		return fmt.Errorf("core: invalid websocket endpoint: %w", err)
	}
	return nil
}

func validateEndpoint(endpoint string, schemes ...string) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return err
	}
	if u.Host == "" {
		return fmt.Errorf("host must be present in %q", endpoint)
	}
	for _, s := range schemes {
		if u.Scheme == s {
			return nil
		}
	}
	return fmt.Errorf("unsupported scheme %q, expected one of %v", u.Scheme, schemes)
}
