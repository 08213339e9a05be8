package das

import (
	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"
)

var (
	appIDFlag        = "das.app-id"
	sampleAmountFlag = "das.samples"
	srsPathFlag      = "das.srs"
)

// Flags gives a set of DASer flags.
func Flags() *flag.FlagSet {
	flags := &flag.FlagSet{}

	flags.Uint32(
		appIDFlag,
		0,
		"Application whose data is fully verified once a block is confidently available. 0 disables it",
	)
	flags.Int(
		sampleAmountFlag,
		0,
		"Amount of random cells sampled per block",
	)
	flags.String(
		srsPathFlag,
		"",
		"Path to the serialized KZG public parameters",
	)

	return flags
}

// ParseFlags parses DASer flags from the given cmd and saves them to the passed config.
func ParseFlags(cmd *cobra.Command, cfg *Config) (err error) {
	if cmd.Flag(appIDFlag).Changed {
		cfg.AppID, err = cmd.Flags().GetUint32(appIDFlag)
		if err != nil {
			return err
		}
	}
	if cmd.Flag(sampleAmountFlag).Changed {
		cfg.SampleAmount, err = cmd.Flags().GetInt(sampleAmountFlag)
		if err != nil {
			return err
		}
	}
	if cmd.Flag(srsPathFlag).Changed {
		cfg.SRSPath = cmd.Flag(srsPathFlag).Value.String()
	}
	return nil
}
