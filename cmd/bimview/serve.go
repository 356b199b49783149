package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/LeeJaeHyekk/bridge-bim-platform/internal/api"
	"github.com/LeeJaeHyekk/bridge-bim-platform/internal/repository"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the bridge and BIM API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := opts.cfg
			if addr != "" {
				cfg.Server.Addr = addr
			}
			repo, err := repository.Open(cfg.Fixtures)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return api.New(repo, repo, cfg).Run(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides config)")
	return cmd
}
