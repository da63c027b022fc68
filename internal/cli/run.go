package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/reelkit/reelkit/internal/harness"
	"github.com/reelkit/reelkit/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database string
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Execute an edit scenario",
		Long: `Execute a declarative edit scenario against a fresh editing session.

The scenario seeds a project and media library, then runs its steps -
edits, undos, redos - through the history manager. The final trace,
history, and state are printed; assertion failures exit non-zero.

Example:
  reelkit run demo/split-roundtrip.yaml
  reelkit run demo/split-roundtrip.yaml --db ./project.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenario(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "save the final project state to this SQLite database")

	return cmd
}

func runScenario(opts *RunOptions, path string, cmd *cobra.Command) error {
	out := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if opts.Verbose {
		logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}

	scenario, err := harness.LoadScenario(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}
	out.VerboseLog("scenario loaded: %s (%d steps)", scenario.Name, len(scenario.Steps))

	h, err := harness.New(scenario, logger)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to seed session", err)
	}
	result, err := h.Run(cmd.Context())
	if err != nil {
		return WrapExitError(ExitFailure, "scenario execution failed", err)
	}

	if opts.Database != "" {
		if err := saveResult(cmd.Context(), opts.Database, h); err != nil {
			return WrapExitError(ExitCommandError, "failed to save project", err)
		}
		out.VerboseLog("project saved to %s", opts.Database)
	}

	if opts.Format == "json" {
		payload := struct {
			*harness.Result
			Pass     bool     `json:"pass"`
			Failures []string `json:"failures,omitempty"`
		}{result, result.Pass(), result.Failures}
		if err := out.JSON(payload); err != nil {
			return err
		}
	} else {
		printResult(cmd.OutOrStdout(), result)
	}

	if !result.Pass() {
		return NewExitError(ExitFailure, fmt.Sprintf("scenario %s failed", result.ScenarioName))
	}
	return nil
}

func saveResult(ctx context.Context, path string, h *harness.Harness) error {
	if ctx == nil {
		ctx = context.Background()
	}
	st, err := store.Open(path)
	if err != nil {
		return err
	}
	defer st.Close()
	return st.Save(ctx, h.Project(), h.Library())
}

func printResult(w io.Writer, r *harness.Result) {
	fmt.Fprintf(w, "Scenario: %s\n\n", r.ScenarioName)

	fmt.Fprintln(w, "Trace:")
	for _, ev := range r.Trace {
		status := "ok"
		if !ev.Applied {
			status = "no-op"
		}
		if ev.Error != "" {
			status = "error=" + ev.Error
		}
		if ev.Description != "" {
			fmt.Fprintf(w, "  %2d  %-18s %-24s %s\n", ev.Step, ev.Op, ev.Description, status)
		} else {
			fmt.Fprintf(w, "  %2d  %-18s %-24s %s\n", ev.Step, ev.Op, "", status)
		}
	}

	fmt.Fprintln(w, "\nHistory:")
	for _, e := range r.History {
		marker := " "
		if e.Current {
			marker = "*"
		}
		fmt.Fprintf(w, "  %s %s  %s\n", marker, e.ID, e.Description)
	}

	fmt.Fprintf(w, "\nPlacements (%d):\n", len(r.Placements))
	for _, p := range r.Placements {
		fmt.Fprintf(w, "  %-8s %-8s track=%-6s frames=[%d,%d) %s\n",
			p.ID, p.Kind, p.TrackID, p.Span.TimelineStart, p.Span.TimelineEnd, p.Name)
	}

	fmt.Fprintf(w, "\nAttached nodes: %d\n", len(r.AttachedIDs))
	if len(r.Selection) > 0 {
		fmt.Fprintf(w, "Selection: %v\n", r.Selection)
	}

	if len(r.Failures) > 0 {
		fmt.Fprintln(w, "\nFailures:")
		for _, f := range r.Failures {
			fmt.Fprintf(w, "  %s\n", f)
		}
	} else {
		fmt.Fprintln(w, "\nPASS")
	}
}
