package cmd

import (
	"github.com/spf13/cobra"

	"github.com/lightdas/light-node/nodebuilder/core"
	"github.com/lightdas/light-node/nodebuilder/das"
	"github.com/lightdas/light-node/nodebuilder/p2p"
)

// PersistentPreRunEnv loads the stored config and overrides it with the flags passed to cmd.
func PersistentPreRunEnv(cmd *cobra.Command, _ []string) error {
	var (
		ctx = cmd.Context()
		err error
	)

	// loads existing config into the environment
	ctx, err = ParseNodeFlags(ctx, cmd)
	if err != nil {
		return err
	}

	cfg := NodeConfig(ctx)

	err = p2p.ParseFlags(cmd, &cfg.P2P)
	if err != nil {
		return err
	}

	err = core.ParseFlags(cmd, &cfg.Core)
	if err != nil {
		return err
	}

	err = das.ParseFlags(cmd, &cfg.DASer)
	if err != nil {
		return err
	}

	ctx, err = ParseMiscFlags(ctx, cmd)
	if err != nil {
		return err
	}

	// set config
	ctx = WithNodeConfig(ctx, &cfg)
	cmd.SetContext(ctx)
	return nil
}
