/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

// Package cmd contains the command-line interface of taskgate.
package cmd

import (
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "taskgate",
	Short: "Per-identity task admission controller",
	Long: `taskgate admits tasks submitted over HTTP under per-identity burst and sustained rate limits.

Tasks that exceed the limits are queued and drained later in FIFO order.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"path to the configuration file (YAML or JSON), environment variables with TASKGATE_ prefix override it")
}
