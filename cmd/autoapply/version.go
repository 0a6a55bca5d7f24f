package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"letraz-autoapply/internal/api/handlers"
)

var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version info",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "autoapply %s\n", version)
	},
}

func init() {
	handlers.Version = version
	rootCmd.AddCommand(versionCmd)
}
