package commands

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/swelljoe/skycast/internal/session"
	"github.com/swelljoe/skycast/internal/terminal"
)

func terminalCmd() *cobra.Command {
	var city string

	cmd := &cobra.Command{
		Use:   "terminal",
		Short: "Run the interactive terminal frontend",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			term := terminal.New(cmd.InOrStdin(), cmd.OutOrStdout(), session.New(city), appCtx.results, appCtx.texts)
			if err := term.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return reportErr(cmd, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&city, "city", "", "pre-fill the search with this city")
	return cmd
}
