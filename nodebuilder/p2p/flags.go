package p2p

import (
	"fmt"

	"github.com/multiformats/go-multiaddr"
	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"
)

var (
	p2pListenFlag      = "p2p.listen"
	p2pBootstrapFlag   = "p2p.bootstrap"
	p2pParallelismFlag = "p2p.parallelism"
	p2pRecordTTLFlag   = "p2p.record-ttl"
	p2pDHTModeFlag     = "p2p.dht-mode"
)

// Flags gives a set of p2p flags.
func Flags() *flag.FlagSet {
	flags := &flag.FlagSet{}

	flags.StringSlice(
		p2pListenFlag,
		nil,
		"Comma-separated multiaddresses to listen on. (Format: multiformats.io/multiaddr)",
	)
	flags.StringSlice(
		p2pBootstrapFlag,
		nil,
		`Comma-separated multiaddresses of the peers to bootstrap the DHT from.
Each must end with the peer's identity, e.g. /ip4/1.2.3.4/tcp/37000/p2p/12D3Koo...`,
	)
	flags.Int(
		p2pParallelismFlag,
		0,
		"Maximum amount of concurrent DHT queries of a single cell fetch or insertion",
	)
	flags.Uint64(
		p2pRecordTTLFlag,
		0,
		"Lifetime of cell records published into the DHT, in seconds",
	)
	flags.String(
		p2pDHTModeFlag,
		"",
		"DHT mode: auto, client or server",
	)

	return flags
}

// ParseFlags parses P2P flags from the given cmd and saves them to the passed config.
func ParseFlags(
	cmd *cobra.Command,
	cfg *Config,
) error {
	listen, err := cmd.Flags().GetStringSlice(p2pListenFlag)
	if err != nil {
		return err
	}
	for _, addr := range listen {
		if _, err = multiaddr.NewMultiaddr(addr); err != nil {
			return fmt.Errorf("cmd: while parsing '%s': %w", p2pListenFlag, err)
		}
	}
	if len(listen) != 0 {
		cfg.ListenAddresses = listen
	}

	bootstrap, err := cmd.Flags().GetStringSlice(p2pBootstrapFlag)
	if err != nil {
		return err
	}
	for _, addr := range bootstrap {
		if _, err = multiaddr.NewMultiaddr(addr); err != nil {
			return fmt.Errorf("cmd: while parsing '%s': %w", p2pBootstrapFlag, err)
		}
	}
	if len(bootstrap) != 0 {
		cfg.BootstrapPeers = bootstrap
	}

	if cmd.Flag(p2pParallelismFlag).Changed {
		cfg.ParallelismLimit, err = cmd.Flags().GetInt(p2pParallelismFlag)
		if err != nil {
			return err
		}
	}

	if cmd.Flag(p2pRecordTTLFlag).Changed {
		cfg.RecordTTL, err = cmd.Flags().GetUint64(p2pRecordTTLFlag)
		if err != nil {
			return err
		}
	}

	if cmd.Flag(p2pDHTModeFlag).Changed {
		cfg.DHTMode = cmd.Flag(p2pDHTModeFlag).Value.String()
		if _, err = cfg.mode(); err != nil {
			return fmt.Errorf("cmd: while parsing '%s': %w", p2pDHTModeFlag, err)
		}
	}
	return nil
}
