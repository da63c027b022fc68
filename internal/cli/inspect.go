package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/reelkit/reelkit/internal/media"
	"github.com/reelkit/reelkit/internal/project"
	"github.com/reelkit/reelkit/internal/store"
)

// InspectOptions holds flags for the inspect command.
type InspectOptions struct {
	*RootOptions
	Database string
	Track    string
	Kind     string
}

// inspectPayload is the JSON shape of the inspect output.
type inspectPayload struct {
	FrameRate    int                 `json:"frame_rate"`
	CanvasWidth  float64             `json:"canvas_width"`
	CanvasHeight float64             `json:"canvas_height"`
	Media        []media.Reference   `json:"media"`
	Tracks       []project.Track     `json:"tracks"`
	Placements   []project.Placement `json:"placements"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InspectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show the contents of a saved project database",
		Long: `Load a project database and print its media library, tracks, and
timeline placements.

Example:
  reelkit inspect --db ./project.db
  reelkit inspect --db ./project.db --track t-1
  reelkit inspect --db ./project.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return inspectDatabase(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.Track, "track", "", "only show placements on this track")
	cmd.Flags().StringVar(&opts.Kind, "kind", "", "only show placements of this media kind")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func inspectDatabase(opts *InspectOptions, cmd *cobra.Command) error {
	if _, err := os.Stat(opts.Database); err != nil {
		return WrapExitError(ExitCommandError, "database not found", err)
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	proj, lib, err := st.Load(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load project", err)
	}

	placements := proj.Items()
	if opts.Track != "" || opts.Kind != "" {
		placements, err = st.QueryPlacements(ctx, store.PlacementFilter{
			TrackID: opts.Track,
			Kind:    opts.Kind,
		})
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to query placements", err)
		}
	}

	payload := inspectPayload{
		FrameRate:    proj.FrameRate,
		CanvasWidth:  proj.CanvasWidth,
		CanvasHeight: proj.CanvasHeight,
		Media:        lib.List(),
		Tracks:       proj.Tracks(),
		Placements:   placements,
	}

	out := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	if opts.Format == "json" {
		return out.JSON(payload)
	}
	printProject(cmd.OutOrStdout(), payload)
	return nil
}

func printProject(w io.Writer, p inspectPayload) {
	fmt.Fprintf(w, "Project: %dfps %gx%g\n", p.FrameRate, p.CanvasWidth, p.CanvasHeight)

	fmt.Fprintf(w, "\nMedia (%d):\n", len(p.Media))
	for _, ref := range p.Media {
		fmt.Fprintf(w, "  %-10s %-6s %-20s %d frames\n", ref.ID, ref.Kind, ref.DisplayName, ref.DurationFrames)
	}

	fmt.Fprintf(w, "\nTracks (%d):\n", len(p.Tracks))
	for _, t := range p.Tracks {
		flags := ""
		if !t.Visible {
			flags += " hidden"
		}
		if t.Muted {
			flags += " muted"
		}
		fmt.Fprintf(w, "  %-8s %s%s\n", t.ID, t.Name, flags)
	}

	fmt.Fprintf(w, "\nPlacements (%d):\n", len(p.Placements))
	for _, item := range p.Placements {
		fmt.Fprintf(w, "  %-8s %-8s track=%-6s frames=[%d,%d) %s\n",
			item.ID, item.Kind, item.TrackID, item.Span.TimelineStart, item.Span.TimelineEnd, item.Name)
	}
}
