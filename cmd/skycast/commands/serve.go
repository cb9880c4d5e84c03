package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/swelljoe/skycast/internal/config"
	"github.com/swelljoe/skycast/internal/db"
	"github.com/swelljoe/skycast/internal/handlers"
	"github.com/swelljoe/skycast/internal/server"
	"github.com/swelljoe/skycast/internal/session"
)

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web frontend",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := appCtx.cfg
			logger := appCtx.logger
			if addr != "" {
				cfg.HTTPAddr = addr
			}

			var store session.Store
			switch cfg.SessionStore {
			case config.StoreSQLite:
				database, err := db.Open(cfg.DBPath)
				if err != nil {
					return reportErr(cmd, err)
				}
				defer database.Close()
				logger.Info("database connected", "path", cfg.DBPath)
				store = session.NewSQLiteStore(database)
			default:
				store = session.NewMemoryStore()
			}

			h, err := handlers.New(store, appCtx.results, appCtx.texts, logger)
			if err != nil {
				return reportErr(cmd, fmt.Errorf("templates: %w", err))
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := server.New(cfg.HTTPAddr, h.Routes(), logger)
			if err := server.Run(ctx, srv, logger); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("run failed", "err", err)
				return err
			}

			logger.Info("shutting down")
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default $HTTP_ADDR or :8080)")
	return cmd
}
