package node

import (
	"fmt"
	"time"
)

// Config holds the lifecycle settings of the Node.
type Config struct {
	StartupTimeout  time.Duration
	ShutdownTimeout time.Duration
}

// DefaultConfig returns the default lifecycle settings.
func DefaultConfig() Config {
	return Config{
		StartupTimeout:  time.Minute * 2,
		ShutdownTimeout: time.Minute * 2,
	}
}

// Validate performs basic validation of the config.
func (cfg *Config) Validate() error {
	if cfg.StartupTimeout <= 0 {
		return fmt.Errorf("node: invalid startup timeout %s", cfg.StartupTimeout)
	}
	if cfg.ShutdownTimeout <= 0 {
		return fmt.Errorf("node: invalid shutdown timeout %s", cfg.ShutdownTimeout)
	}
	return nil
}
