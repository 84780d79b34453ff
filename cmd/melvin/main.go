// Command melvin is the reference CLI for the associative graph engine:
// create or open a brain file, feed it bytes, inspect its state, and
// configure port routing. These subcommands are collaborators around the
// core engine, not part of its contract.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "melvin",
		Short: "melvin is a single-process, byte-in/byte-out associative graph engine",
		Long: `melvin grows a directed weighted graph of nodes and edges from raw
byte input, runs wave propagation to spread and update activations, and
emits learned continuations once patterns mature. Its persistent state
lives in a single binary brain file.`,
	}

	rootCmd.PersistentFlags().String("brain-file", "melvin.brain", "path to the brain file")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: info, debug, trace")
	rootCmd.PersistentFlags().Bool("json", false, "output as JSON")

	rootCmd.AddCommand(
		newVersionCmd(),
		newCreateFileCmd(),
		newOpenFileCmd(),
		newProcessBytesCmd(),
		newDumpStatsCmd(),
		newRouteCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
