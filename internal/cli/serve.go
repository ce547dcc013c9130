package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"attendance-tracker/internal/api"
	"attendance-tracker/internal/httpapi"
	"attendance-tracker/internal/repository/sqlite"
	"attendance-tracker/internal/services"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the attendance HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
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

			var notifier services.Notifier
			if cfg.Notification.WebhookURL != "" {
				notifier = services.NewWebhookNotifier(cfg.Notification.WebhookURL, cfg.Notification.Timeout)
			}

			a := api.New(repo, notifier, logger, cfg)
			provider := httpapi.NewTokenTableProvider(cfg.Auth.Tokens)
			router := httpapi.NewRouter(a, provider, logger)
			server := httpapi.NewServer(cfg.Server, router)

			errCh := make(chan error, 1)
			go func() {
				logger.Infof("listening on %s", cfg.Server.Addr)
				errCh <- server.ListenAndServe()
			}()

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

			select {
			case err := <-errCh:
				if err != nil && err != http.ErrServerClosed {
					return err
				}
				return nil
			case sig := <-stop:
				logger.Infof("received %s, shutting down", sig)
			}

			ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			return server.Shutdown(ctx)
		},
	}
}
