package cli

import (
	"github.com/spf13/cobra"

	"attendance-tracker/internal/config"
	"attendance-tracker/internal/logging"
)

var cfgDatabasePath string

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "attd",
		Short: "Attendance tracking service",
		Long: `attd records clock events, aggregates attendance into daily and
monthly reports, and reconciles administrative edits.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgDatabasePath, "database", "", "path to the SQLite database (overrides configuration)")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newCloseMonthCmd())

	return cmd
}

// Execute runs the command tree.
func Execute() error {
	return newRootCmd().Execute()
}

// loadConfig builds the effective configuration: defaults, then
// environment, then command-line overrides.
func loadConfig() (*config.Config, error) {
	loader := config.NewLoader()
	return loader.Load()
}

// databasePath resolves the SQLite path, letting the command-line flag win
// over configuration.
func databasePath(cfg *config.Config) string {
	if cfgDatabasePath != "" {
		return cfgDatabasePath
	}
	return cfg.GetDatabasePath()
}

func newLogger(cfg *config.Config) (*logging.ZapLogger, error) {
	return logging.New(cfg.Logging.Level, cfg.Logging.Development)
}
