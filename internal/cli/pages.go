package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newPagesCmd(opts *globalOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "pages",
		Short: "List canvas pages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			pages, err := a.Pages()
			if err != nil {
				return err
			}
			if len(pages) == 0 {
				fmt.Fprintln(opts.out, "no pages")
				return nil
			}
			tw := tabwriter.NewWriter(opts.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tCAMERA")
			for _, p := range pages {
				fmt.Fprintf(tw, "%s\t%s\t(%.0f, %.0f) x%.2f\n", p.ID, p.Name, p.CameraX, p.CameraY, p.CameraZoom)
			}
			return tw.Flush()
		},
	}
}
