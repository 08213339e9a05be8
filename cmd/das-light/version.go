package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/lightdas/light-node/nodebuilder/node"
)

// set via ldflags
var (
	buildTime       string
	lastCommit      string
	semanticVersion string

	systemVersion = fmt.Sprintf("%s/%s", runtime.GOARCH, runtime.GOOS)
	golangVersion = runtime.Version()
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show information about the current binary build",
	Args:  cobra.NoArgs,
	// no environment is needed to print the build
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	Run:               printBuildInfo,
}

func buildInfo() *node.BuildInfo {
	return &node.BuildInfo{
		LastCommit:      lastCommit,
		SemanticVersion: semanticVersion,
		SystemVersion:   systemVersion,
		GolangVersion:   golangVersion,
	}
}

func printBuildInfo(_ *cobra.Command, _ []string) {
	info := buildInfo()
	fmt.Printf("Semantic version: %s\n", info.GetSemanticVersion())
	fmt.Printf("Commit: %s\n", info.CommitShortSha())
	fmt.Printf("Build Date: %s\n", buildTime)
	fmt.Printf("System version: %s\n", info.SystemVersion)
	fmt.Printf("Golang version: %s\n", info.GolangVersion)
}
