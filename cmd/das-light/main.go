package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"

	"github.com/lightdas/light-node/cmd"
	"github.com/lightdas/light-node/nodebuilder/core"
	"github.com/lightdas/light-node/nodebuilder/das"
	"github.com/lightdas/light-node/nodebuilder/p2p"
)

func init() {
	flags := []*flag.FlagSet{
		cmd.NodeFlags(),
		p2p.Flags(),
		core.Flags(),
		das.Flags(),
		cmd.MiscFlags(),
	}

	rootCmd.AddCommand(
		cmd.Init(flags...),
		cmd.Start(buildInfo(), flags...),
		cmd.UpdateConfig(flags...),
		cmd.RemoveConfig(flags...),
		cmd.ResetStore(flags...),
		versionCmd,
	)
	rootCmd.SetHelpCommand(&cobra.Command{})
}

func main() {
	err := run()
	if err != nil {
		os.Exit(1)
	}
}

func run() error {
	return rootCmd.ExecuteContext(context.Background())
}

var rootCmd = &cobra.Command{
	Use:   "das-light [subcommand]",
	Short: "Data availability light client sampling block cells over the DHT and RPC",
	Args:  cobra.NoArgs,
	PersistentPreRunE: func(c *cobra.Command, args []string) error {
		return cmd.PersistentPreRunEnv(c, args)
	},
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}
