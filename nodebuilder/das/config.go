package das

import (
	"fmt"

	"github.com/lightdas/light-node/das"
)

// Config contains configuration parameters for the DASer.
type Config struct {
	// SampleAmount is the amount of random cells sampled per block.
	SampleAmount int
	// AppID is the application whose rows are fully verified. Zero disables it.
	AppID uint32
	// SRSPath is the path to the serialized KZG public parameters.
	SRSPath string
}

// DefaultConfig returns the default configuration for the DASer.
func DefaultConfig() Config {
	params := das.DefaultParameters()
	return Config{
		SampleAmount: params.SampleAmount,
		AppID:        params.AppID,
		SRSPath:      "~/.das-light/srs.bin",
	}
}

// Validate performs basic validation of the config.
func (cfg *Config) Validate() error {
	if cfg.SRSPath == "" {
		return fmt.Errorf("das: public parameters path is not set")
	}
	params := cfg.parameters()
	return params.Validate()
}

func (cfg *Config) parameters() das.Parameters {
	params := das.DefaultParameters()
	for _, opt := range cfg.options() {
		opt(&params)
	}
	return params
}

func (cfg *Config) options() []das.Option {
	return []das.Option{
		das.WithSampleAmount(cfg.SampleAmount),
		das.WithAppID(cfg.AppID),
	}
}
