package cli

import (
	"github.com/spf13/cobra"
)

func newMCPCmd(opts *globalOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Run the MCP server on stdin/stdout",
		Long: `Run the MCP server on stdin/stdout for agent clients.

Destructive tools wait for approval. Run 'infinicanvas serve' on the same data
directory to approve or reject them from the UI.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			return a.ServeMCP()
		},
	}
}
