package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"infinicanvas/internal/domain"
	"infinicanvas/internal/layout"
	"infinicanvas/internal/service"
)

func newPlaceCmd(opts *globalOpts) *cobra.Command {
	var (
		pageID   string
		settings domain.GenerationSettings
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "place",
		Short: "Show where the next board would be placed",
		Long: `Compute where a board with the given settings would be placed on a page and
how the camera would move to show it. Nothing is written.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlace(cmd.Context(), opts, pageID, settings, asJSON)
		},
	}
	cmd.Flags().StringVarP(&pageID, "page", "p", "", "page ID (default: most recent page)")
	cmd.Flags().StringVarP(&settings.AspectRatio, "aspect", "a", layout.DefaultAspectRatio, "aspect ratio")
	cmd.Flags().StringVarP(&settings.Quality, "quality", "q", layout.DefaultQuality, "quality: standard, high")
	cmd.Flags().IntVarP(&settings.Count, "count", "n", 1, "images in the batch")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func runPlace(ctx context.Context, opts *globalOpts, pageID string, settings domain.GenerationSettings, asJSON bool) error {
	if settings.Count < 1 {
		return fmt.Errorf("count must be at least 1")
	}
	a, err := opts.openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	preview, err := a.Preview(pageID, settings)
	if err != nil {
		return err
	}
	if asJSON {
		enc := json.NewEncoder(opts.out)
		enc.SetIndent("", "  ")
		return enc.Encode(preview)
	}
	return writePreview(opts.out, preview)
}

func writePreview(w io.Writer, p *service.Preview) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "image\t%.0f x %.0f (x%d)\n", p.Dimensions.Generation.Width, p.Dimensions.Generation.Height, p.Dimensions.Multiplier)
	fmt.Fprintf(tw, "board\t%.0f x %.0f, %d column(s)\n", p.Board.Width, p.Board.Height, p.Board.Columns)
	fmt.Fprintf(tw, "origin\t(%.0f, %.0f)\n", p.Placement.X, p.Placement.Y)
	switch {
	case p.Placement.AnchorID == "":
		fmt.Fprintln(tw, "anchor\tnone (centred on viewport)")
	case p.Placement.Wrapped:
		fmt.Fprintf(tw, "anchor\t%s (wrapped to a new row)\n", p.Placement.AnchorID)
	default:
		fmt.Fprintf(tw, "anchor\t%s\n", p.Placement.AnchorID)
	}
	cam := p.Framing.Transition.Camera
	if p.Framing.Move {
		fmt.Fprintf(tw, "camera\t%s to (%.1f, %.1f) zoom %.3f\n", p.Framing.Mode, cam.X, cam.Y, cam.Zoom)
	} else {
		fmt.Fprintf(tw, "camera\t%s\n", p.Framing.Mode)
	}
	return tw.Flush()
}
