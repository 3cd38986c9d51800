package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fastygo/taskview/internal/config"
	"github.com/fastygo/taskview/pkg/logger"
)

type cli struct {
	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "taskctl",
		Short:         "Operate a TaskView deployment",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log, err := logger.New(logger.Config{Level: cfg.Logger.Level, Encoding: "console"})
			if err != nil {
				return err
			}
			c.cfg, c.logger = cfg, log
			return nil
		},
	}
	root.AddCommand(newMigrateCmd(c), newUserCmd(c))
	return root
}
