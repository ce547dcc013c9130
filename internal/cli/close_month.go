package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"attendance-tracker/internal/api"
	"attendance-tracker/internal/repository/sqlite"
)

func newCloseMonthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "close-month <user-id> <period>",
		Short: "Close a month (YYYY-MM) for a user, freezing edits and clock actions",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, period := args[0], args[1]

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer logger.Sync()

			repo, err := sqlite.New(databasePath(cfg))
			if err != nil {
				return err
			}
			defer repo.Close()

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			a := api.New(repo, nil, logger, cfg)
			if err := a.CloseMonth(ctx, userID, period); err != nil {
				return err
			}

			cmd.Printf("closed %s for %s\n", period, userID)
			return nil
		},
	}
}
