package main

import (
	"os"

	"github.com/spf13/cobra"

	_ "traceper/docs"
)

// configDir is where config.yml is looked up.
var configDir string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "traceper",
		Short:         "TracePer dashboard host",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&configDir, "config-dir", "configs", "directory holding config.yml")

	root.AddCommand(newServeCmd(), newSessionCmd())
	return root
}

// @title        TracePer dashboard host
// @version      1.0
// @description  Per-tab navigation state of the TracePer dashboard.
// @BasePath     /
func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
