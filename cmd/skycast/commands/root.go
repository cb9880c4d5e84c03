package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/swelljoe/skycast/internal/config"
	"github.com/swelljoe/skycast/internal/logging"
	"github.com/swelljoe/skycast/internal/messages"
	"github.com/swelljoe/skycast/internal/views"
	"github.com/swelljoe/skycast/internal/weather"
)

const appName = "skycast"

// app is the dependency graph shared by subcommands.
type app struct {
	cfg     config.Config
	logger  *slog.Logger
	texts   *messages.Catalog
	results *views.Results
}

var (
	appCtx  *app
	langArg string
)

func Execute(version string) error {
	root := newRootCmd(version, os.Stdout)
	root.AddCommand(serveCmd(), terminalCmd())
	return root.Execute()
}

func newRootCmd(version string, logOut io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "Look up the current weather for a city",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return reportErr(cmd, fmt.Errorf("config error: %w", err))
			}
			if langArg != "" {
				cfg.Lang = langArg
			}

			// The terminal frontend owns stdout.
			w := logOut
			if cmd.Name() == "terminal" {
				w = cmd.ErrOrStderr()
			}
			logger := logging.New(w, cfg, version, appName)
			slog.SetDefault(logger)

			texts, err := messages.Load(cfg.Lang)
			if err != nil {
				return reportErr(cmd, fmt.Errorf("messages: %w", err))
			}

			client := weather.NewClient(cfg.BaseURL, cfg.APIKey, cfg.APITimeout)
			appCtx = &app{
				cfg:     cfg,
				logger:  logger,
				texts:   texts,
				results: views.NewResults(client, texts, logger),
			}

			logger.Info("starting",
				"version", version,
				"env", cfg.AppEnv,
				"log_level", cfg.LogLevel.String(),
				"lang", cfg.Lang,
			)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&langArg, "lang", "", "message language (default $SKYCAST_LANG or en)")
	return root
}

// reportErr prints err for the user; root silences cobra's own printing.
func reportErr(cmd *cobra.Command, err error) error {
	fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", appName, err)
	return err
}
