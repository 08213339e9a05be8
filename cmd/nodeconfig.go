package cmd

import (
	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"

	"github.com/lightdas/light-node/nodebuilder"
)

// UpdateConfig fills the options missing from the stored config with their defaults.
func UpdateConfig(fsets ...*flag.FlagSet) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config-update",
		Args:  cobra.NoArgs,
		Short: "Update current config with the default values of newly added options",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return nodebuilder.UpdateConfig(StorePath(cmd.Context()))
		},
	}
	for _, set := range fsets {
		cmd.Flags().AddFlagSet(set)
	}
	return cmd
}

// RemoveConfig removes the stored config.
func RemoveConfig(fsets ...*flag.FlagSet) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config-remove",
		Args:  cobra.NoArgs,
		Short: "Remove current config",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return nodebuilder.RemoveConfig(StorePath(cmd.Context()))
		},
	}
	for _, set := range fsets {
		cmd.Flags().AddFlagSet(set)
	}
	return cmd
}

// ResetStore wipes the sampled data while keeping identity and config.
func ResetStore(fsets ...*flag.FlagSet) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unsafe-reset-store",
		Args:  cobra.NoArgs,
		Short: "Reset the data directory. Identity and config are kept",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return nodebuilder.Reset(StorePath(cmd.Context()))
		},
	}
	for _, set := range fsets {
		cmd.Flags().AddFlagSet(set)
	}
	return cmd
}
