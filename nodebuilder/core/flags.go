package core

import (
	"fmt"

	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"
)

var (
	coreRPCFlag = "core.rpc"
	coreWSFlag  = "core.ws"
)

// Flags gives a set of hardcoded Core flags.
func Flags() *flag.FlagSet {
	flags := &flag.FlagSet{}

	flags.String(
		coreRPCFlag,
		"",
		"HTTP JSON-RPC endpoint of the full node. Example: http://127.0.0.1:9933",
	)
	flags.String(
		coreWSFlag,
		"",
		"Websocket endpoint of the full node to receive new heads from. Example: ws://127.0.0.1:9944",
	)

	return flags
}

// ParseFlags parses Core flags from the given cmd and saves them to the passed config.
func ParseFlags(cmd *cobra.Command, cfg *Config) error {
	if cmd.Flag(coreRPCFlag).Changed {
		rpc := cmd.Flag(coreRPCFlag).Value.String()
		if err := validateEndpoint(rpc, "http", "https"); err != nil {
			return fmt.Errorf("cmd: while parsing '%s': %w", coreRPCFlag, err)
		}
		cfg.RPCEndpoint = rpc
	}

	if cmd.Flag(coreWSFlag).Changed {
		ws := cmd.Flag(coreWSFlag).Value.String()
		if err := validateEndpoint(ws, "ws", "wss"); err != nil {
			return fmt.Errorf("cmd: while parsing '%s': %w", coreWSFlag, err)
		}
		cfg.WSEndpoint = ws
	}
	return nil
}
