package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"bikeshare/internal/cli"
	"bikeshare/internal/config"
)

var (
	dbPath string

	appConfig *config.Config
	logger    *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "bikeshare-cli",
	Short: "Manage the bike share dataset snapshot",
	Long: `bikeshare-cli imports the bike share dataset into the local SQLite snapshot,
queues imports for the worker and prints dashboard summaries for a date range.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite snapshot path (default is SQLITE_DB_PATH)")
}

// loadConfig reads .env and the environment before any subcommand runs.
func loadConfig(cmd *cobra.Command, args []string) error {
	cli.LoadEnvFile()
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if dbPath != "" {
		cfg.SQLiteDBPath = dbPath
	}
	appConfig = cfg
	logger = cli.SetupLogger(cfg.LogLevel, cfg.LogFormat)
	return nil
}
