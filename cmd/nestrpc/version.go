package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	nestrpc "github.com/dexxiez/analog-nest-rpc"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of nestrpc",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("nestrpc version %s\n", strings.TrimSpace(nestrpc.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
