/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/acronis/taskgate/internal/buildinfo"
	"github.com/acronis/taskgate/log"
	"github.com/acronis/taskgate/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the HTTP server accepting tasks at POST /task.

SIGINT or SIGTERM stops the server gracefully: queued drains are canceled
and completed tasks are flushed to the task log.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := LoadAppConfig(cfgFile)
		if err != nil {
			return err
		}

		logger, closeLogger := log.NewLogger(cfg.Log)
		defer closeLogger()

		bi := buildinfo.Get()
		logger.Info("starting taskgate",
			log.String("version", bi.Version),
			log.String("commit", bi.Commit),
			log.String("address", cfg.Server.Address),
			log.Int("workers", cfg.Scheduler.Workers),
		)

		app, err := NewApp(cfg, logger, AppOpts{})
		if err != nil {
			logger.Error("failed to create application", log.Error(err))
			return fmt.Errorf("create application: %w", err)
		}
		if err = service.New(logger, app).StartContext(cmd.Context()); err != nil {
			logger.Error("taskgate stopped with error", log.Error(err))
			return err
		}
		logger.Info("taskgate stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
