package cli

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"infinicanvas/internal/config"
)

func newServeCmd(opts *globalOpts) *cobra.Command {
	var (
		addr  string
		watch bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, event stream and MCP endpoint",
		Long: `Run the HTTP API under /api, server-sent events under /api/events and a
streamable HTTP MCP endpoint under /mcp.

Layout, viewport and safe-area settings are reloaded when the config file
changes. Approvals requested by a standalone 'infinicanvas mcp' process on the
same data directory show up here.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts, addr, watch)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&watch, "watch", true, "reload the config file on change")
	return cmd
}

func runServe(ctx context.Context, opts *globalOpts, addr string, watch bool) error {
	logger := loggerFromContext(ctx)
	a, err := opts.openApp(ctx, func(cfg *config.Config) {
		if addr != "" {
			cfg.HTTP.Addr = addr
		}
	})
	if err != nil {
		return err
	}
	defer a.Close()

	if watch {
		if _, err := os.Stat(opts.configPath); errors.Is(err, fs.ErrNotExist) {
			logger.Debug("config file missing, not watching", "path", opts.configPath)
		} else {
			go func() {
				if err := a.WatchConfig(ctx, opts.configPath); err != nil {
					logger.Warn("config watch stopped", "err", err)
				}
			}()
		}
	}
	return a.ServeHTTP(ctx)
}
