// Package cli implements the infinicanvas command-line interface.
//
// # Commands
//
//   - serve: run the HTTP API, event stream and MCP endpoint
//   - mcp: run the MCP server on stdin/stdout for agent clients
//   - place: dry-run board placement and camera framing on a page
//   - pages: list canvas pages
//   - config: write or print the configuration file
//
// All commands support --verbose (-v) for debug-level logging. Logs go to
// stderr so the stdio MCP transport keeps stdout to itself.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"infinicanvas/internal/app"
	"infinicanvas/internal/config"
)

var (
	version = "dev"
	commit  string
	date    string
)

// SetVersion sets the version information displayed by --version.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the CLI with ctx, which is cancelled on interrupt.
func Execute(ctx context.Context) error {
	return newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx)
}

// globalOpts are the persistent flags shared by every command.
type globalOpts struct {
	verbose    bool
	configPath string
	dataDir    string
	out        io.Writer
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	opts := &globalOpts{out: out}

	root := &cobra.Command{
		Use:          "infinicanvas",
		Short:        "Infinite canvas for AI image generation with automatic board layout",
		Long:         `infinicanvas places each batch of generated images as a board on an infinite canvas, next to the board you are working from, and moves the camera so the new board is in view.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if opts.verbose {
				level = charmlog.DebugLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(errOut, level)))
		},
	}

	root.SetOut(out)
	root.SetErr(errOut)
	root.SetVersionTemplate(fmt.Sprintf("infinicanvas %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", config.DefaultPath(), "config file (TOML)")
	root.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "", "override storage.data_dir")

	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newMCPCmd(opts))
	root.AddCommand(newPlaceCmd(opts))
	root.AddCommand(newPagesCmd(opts))
	root.AddCommand(newConfigCmd(opts))
	return root
}

// loadConfig reads the config file and applies flag overrides.
func (o *globalOpts) loadConfig() (config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if o.dataDir != "" {
		cfg.Storage.DataDir = o.dataDir
	}
	return cfg, nil
}

// openApp loads config, applies overrides and opens the app; the caller
// closes it.
func (o *globalOpts) openApp(ctx context.Context, overrides ...func(*config.Config)) (*app.App, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	for _, fn := range overrides {
		fn(&cfg)
	}
	return app.New(ctx, cfg, loggerFromContext(ctx))
}
