package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-stats-gateway/internal/app"
	"github.com/comitanigiacomo/kanso-stats-gateway/internal/config"
	"github.com/comitanigiacomo/kanso-stats-gateway/internal/logging"
)

// cli holds what every subcommand needs once the root pre-run has wired it.
type cli struct {
	envFile string
	verbose bool

	logger *zap.Logger
	app    *app.App
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "kansoctl",
		Short:         "Kanso habit statistics from the terminal",
		Long:          "kansoctl logs in to the Kanso backend, aggregates the dashboard, user stats and activity log into one overview, and tracks unlocked badges.",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return c.teardown()
		},
	}

	root.PersistentFlags().StringVar(&c.envFile, "env-file", ".env", "optional dotenv file read before the environment")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "log at debug level to stderr")

	root.AddCommand(
		newLoginCmd(c),
		newLogoutCmd(c),
		newOverviewCmd(c),
		newBadgesCmd(c),
	)
	return root
}

func (c *cli) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(c.envFile)
	if err != nil {
		return err
	}

	level := "warn"
	if c.verbose {
		level = "debug"
	}
	logger, err := logging.New(cfg.Env, level)
	if err != nil {
		return err
	}
	c.logger = logger

	a, err := app.New(cmd.Context(), cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}
	c.app = a
	return nil
}

func (c *cli) teardown() error {
	if c.logger != nil {
		_ = c.logger.Sync()
	}
	if c.app == nil {
		return nil
	}
	return c.app.Close()
}
