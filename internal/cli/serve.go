package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the generation API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, cfg, l, err := opts.bootstrap(ctx)
			if err != nil {
				return err
			}
			l.Info("Serving generation API", "port", cfg.Server.Port, "config", opts.cfgPath)
			return a.Serve(ctx)
		},
	}
}
