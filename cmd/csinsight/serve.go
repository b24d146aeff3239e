package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cognicore/csinsight/internal/api"
	"github.com/cognicore/csinsight/pkg/csinsight"
)

func newServeCmd(g *globalFlags) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the chat and analysis HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(g)
			if err != nil {
				return err
			}
			if listen != "" {
				s.app.Listen = listen
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			engine, cleanup, err := buildEngine(ctx, s)
			if err != nil {
				return err
			}
			defer cleanup()

			limits := csinsight.SessionOptions{TTL: s.app.SessionTTL, Max: s.app.MaxSessions}
			return api.NewServer(s.app.Listen, engine, limits, s.logger).Start(ctx)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (overrides server.listen)")
	return cmd
}
