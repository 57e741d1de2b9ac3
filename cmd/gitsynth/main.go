// Package main provides the entry point for the gitsynth CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/codestory-build/gitsynth/cmd/gitsynth/commands"
	"github.com/codestory-build/gitsynth/pkg/version"
)

var (
	verbose bool
	quiet   bool
)

func main() {
	version.InitBinaryVersion()

	rootCmd := &cobra.Command{
		Use:   "gitsynth",
		Short: "gitsynth - rewrite a working diff into a reviewable commit chain",
		Long: `gitsynth decomposes the diff between a base commit and a dirty target
into typed, semantically-labelled chunks, groups them, and synthesizes a new
linear commit chain via Git plumbing.

Commands:
  synth   Run the rewrite pipeline against a repository
  mcp     Start an MCP server exposing the pipeline as a tool`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress output")

	rootCmd.AddCommand(commands.NewSynthCommand())
	rootCmd.AddCommand(commands.NewMCPCommand())
	rootCmd.AddCommand(versionCmd())

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(os.Stdout, "gitsynth %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}
