package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "nestrpc",
	Short: "nestrpc is an RPC invocation pipeline server",
	Long:  `nestrpc hosts remote-callable targets behind a single RPC endpoint, with per-call scopes, authorization guards, and an extended wire codec.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file")
}
