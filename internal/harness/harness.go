// Package harness runs declarative edit scenarios: YAML scripts of
// commands, undos, and redos executed against a fresh project and an
// in-process compositor.
//
// Every run is fully deterministic - sequence ids, a frozen clock that
// advances only by the script's declared delays, and sorted final state -
// so a scenario's outcome can be compared byte for byte against a golden
// trace.
package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/reelkit/reelkit/internal/comp"
	"github.com/reelkit/reelkit/internal/edit"
	"github.com/reelkit/reelkit/internal/media"
	"github.com/reelkit/reelkit/internal/project"
	"github.com/reelkit/reelkit/internal/testutil"
)

// defaultStepDelay is the simulated gap between steps when the scenario
// does not say otherwise. Large enough that consecutive selections never
// coalesce by accident.
const defaultStepDelay = time.Second

// Harness executes one scenario against a fresh session.
type Harness struct {
	scenario *Scenario
	project  *project.Project
	library  *media.Library
	comp     *comp.Memory
	env      *edit.Env
	manager  *edit.Manager
	clock    *testutil.Clock
	logger   *slog.Logger
}

// Run executes a scenario in a fresh session and returns the result.
// An error is returned only for seed failures (duplicate ids, unknown
// kinds); step failures are recorded in the trace and checked against the
// step's expected error code instead.
func Run(scenario *Scenario) (*Result, error) {
	h, err := New(scenario, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		return nil, err
	}
	return h.Run(context.Background())
}

// Project returns the session's canonical store, for persisting the final
// state after a run.
func (h *Harness) Project() *project.Project { return h.project }

// Library returns the session's media library.
func (h *Harness) Library() *media.Library { return h.library }

// Run executes the harness's scenario.
func (h *Harness) Run(ctx context.Context) (*Result, error) {
	scenario := h.scenario
	result := &Result{ScenarioName: scenario.Name, Trace: []TraceEvent{}}

	for i, step := range scenario.Steps {
		h.clock.Advance(stepDelay(step))

		ev := h.runStep(ctx, i, step)
		if step.Error == "" && ev.Error != "" {
			result.Failures = append(result.Failures,
				fmt.Sprintf("steps[%d] (%s): unexpected error %s", i, step.Op, ev.Error))
		}
		if step.Error != "" && ev.Error != step.Error {
			result.Failures = append(result.Failures,
				fmt.Sprintf("steps[%d] (%s): expected error %s, got %q", i, step.Op, step.Error, ev.Error))
		}
		result.Trace = append(result.Trace, ev)
	}

	result.History = h.manager.Summary()
	result.Placements = h.project.Items()
	result.Tracks = h.project.Tracks()
	result.Selection = h.project.Selection()
	result.AttachedIDs = h.comp.AttachedIDs()

	if scenario.Assert != nil {
		result.Failures = append(result.Failures, evaluateAssert(scenario.Assert, result, h.manager)...)
	}
	return result, nil
}

// New seeds a fresh session for the scenario: project config, media
// library, tracks, an in-process compositor, and deterministic ids and
// clock.
func New(scenario *Scenario, logger *slog.Logger) (*Harness, error) {
	cfg := project.DefaultConfig
	if c := scenario.Config; c != nil {
		if c.FrameRate > 0 {
			cfg.FrameRate = c.FrameRate
		}
		if c.CanvasWidth > 0 {
			cfg.CanvasWidth = c.CanvasWidth
		}
		if c.CanvasHeight > 0 {
			cfg.CanvasHeight = c.CanvasHeight
		}
	}

	proj := project.New(cfg)
	lib := media.NewLibrary()
	for _, seed := range scenario.Media {
		kind := media.Kind(seed.Kind)
		if !kind.Valid() {
			return nil, fmt.Errorf("media %s: unknown kind %q", seed.ID, seed.Kind)
		}
		ref := media.Reference{
			ID:             seed.ID,
			Kind:           kind,
			URI:            seed.URI,
			DisplayName:    seed.DisplayName,
			DurationFrames: seed.DurationFrames,
		}
		if err := lib.Add(ref); err != nil {
			return nil, fmt.Errorf("seed media: %w", err)
		}
		if !seed.Pending {
			lib.MarkReady(seed.ID)
		}
	}
	for _, seed := range scenario.Tracks {
		t := project.Track{ID: seed.ID, Name: seed.Name, Visible: !seed.Hidden, Muted: seed.Muted}
		if err := proj.AddTrack(t); err != nil {
			return nil, fmt.Errorf("seed track: %w", err)
		}
	}

	c := comp.NewMemory()
	clock := testutil.NewClock()
	env := edit.NewEnv(proj, lib, c, logger)
	env.IDs = edit.NewSequenceGenerator("cmd")
	env.Now = clock.Now

	return &Harness{
		scenario: scenario,
		project:  proj,
		library:  lib,
		comp:     c,
		env:      env,
		manager:  edit.NewManager(logger),
		clock:    clock,
		logger:   logger,
	}, nil
}

func stepDelay(step Step) time.Duration {
	if step.AfterMS != nil {
		return time.Duration(*step.AfterMS) * time.Millisecond
	}
	return defaultStepDelay
}

// runStep builds and executes one step's command. A nil constructor (the
// target vanished or the arguments are degenerate) and a failed execute
// both surface as the event's Error; undo/redo report Applied=false when
// there is nothing to move.
func (h *Harness) runStep(ctx context.Context, i int, step Step) TraceEvent {
	ev := TraceEvent{Step: i, Op: step.Op}

	switch step.Op {
	case OpUndo:
		moved, err := h.manager.Undo(ctx)
		ev.Applied = moved
		ev.Error = errorCode(err)
		return ev
	case OpRedo:
		moved, err := h.manager.Redo(ctx)
		ev.Applied = moved
		ev.Error = errorCode(err)
		return ev
	}

	cmd, rejected := h.buildCommand(step)
	if cmd == nil {
		ev.Error = string(rejected)
		return ev
	}

	ev.Description = cmd.Description()
	if err := h.manager.ExecuteCommand(ctx, cmd); err != nil {
		ev.Error = errorCode(err)
		return ev
	}
	ev.Applied = true
	return ev
}

// buildCommand constructs the step's command. A nil command comes with
// the code explaining the refusal: TARGET_NOT_FOUND for a vanished item or
// track, INVALID_TIME_RANGE for a split frame the target cannot honor.
func (h *Harness) buildCommand(step Step) (edit.Command, edit.Code) {
	env := h.env
	switch step.Op {
	case OpAdd:
		return env.NewAdd(*step.Placement), ""
	case OpMove:
		track := step.Track
		if track == "" {
			item, ok := h.project.Item(step.Target)
			if !ok {
				return nil, edit.CodeTargetNotFound
			}
			track = item.TrackID
		}
		if cmd := env.NewMove(step.Target, *step.Span, track); cmd != nil {
			return cmd, ""
		}
	case OpResize:
		if cmd := env.NewResize(step.Target, *step.Span); cmd != nil {
			return cmd, ""
		}
	case OpSplit:
		if cmd := env.NewSplit(step.Target, step.Frame); cmd != nil {
			return cmd, ""
		}
		if _, ok := h.project.Item(step.Target); ok {
			return nil, edit.CodeInvalidTimeRange
		}
	case OpDuplicate:
		if cmd := env.NewDuplicate(step.Target, step.Offset); cmd != nil {
			return cmd, ""
		}
	case OpTransform:
		if cmd := env.NewTransform(step.Target, step.Patch.toPatch()); cmd != nil {
			return cmd, ""
		}
	case OpRemove:
		if cmd := env.NewRemove(step.Target); cmd != nil {
			return cmd, ""
		}
	case OpSelect:
		return env.NewSelect(edit.SelectMode(step.Mode), step.Targets), ""
	case OpRenameTrack:
		if cmd := env.NewRenameTrack(step.Track, step.Name); cmd != nil {
			return cmd, ""
		}
	case OpToggleVisibility:
		if cmd := env.NewToggleTrackVisibility(step.Track); cmd != nil {
			return cmd, ""
		}
	case OpToggleMute:
		if cmd := env.NewToggleTrackMute(step.Track); cmd != nil {
			return cmd, ""
		}
	}
	return nil, edit.CodeTargetNotFound
}

// toPatch converts the YAML seed to the command-layer patch.
func (p *PatchSeed) toPatch() edit.Patch {
	return edit.Patch{
		X:              p.X,
		Y:              p.Y,
		Width:          p.Width,
		Height:         p.Height,
		Rotation:       p.Rotation,
		Opacity:        p.Opacity,
		ZIndex:         p.ZIndex,
		Volume:         p.Volume,
		Muted:          p.Muted,
		GainDB:         p.GainDB,
		DurationFrames: p.DurationFrames,
	}
}

// errorCode maps an error to its stable trace representation: the edit
// error code when there is one, the raw message otherwise, empty for nil.
func errorCode(err error) string {
	if err == nil {
		return ""
	}
	if code := edit.CodeOf(err); code != "" {
		return string(code)
	}
	return err.Error()
}
