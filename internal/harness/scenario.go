package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/reelkit/reelkit/internal/project"
	"github.com/reelkit/reelkit/internal/span"
)

// Scenario is a declarative edit script: seed state, a sequence of edit
// steps (including undo/redo), and assertions on the final state.
//
// Scenarios drive both the golden-trace tests and the CLI's run command,
// so the same YAML file serves as a regression test and as a demo script.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what the scenario exercises.
	Description string `yaml:"description"`

	// Config overrides the project defaults (frame rate, canvas size).
	Config *ConfigSeed `yaml:"config,omitempty"`

	// Media seeds the library before any step runs.
	Media []MediaSeed `yaml:"media"`

	// Tracks seeds the timeline lanes.
	Tracks []TrackSeed `yaml:"tracks"`

	// Steps is the edit script, executed in order through the history
	// manager.
	Steps []Step `yaml:"steps"`

	// Assert validates the final state after all steps ran.
	Assert *Assert `yaml:"assert,omitempty"`
}

// ConfigSeed mirrors project.Config for YAML seeding.
type ConfigSeed struct {
	FrameRate    int     `yaml:"frame_rate"`
	CanvasWidth  float64 `yaml:"canvas_width"`
	CanvasHeight float64 `yaml:"canvas_height"`
}

// MediaSeed registers one library reference. Sources are marked ready
// unless Pending is set, which models a source still decoding.
type MediaSeed struct {
	ID             string `yaml:"id"`
	Kind           string `yaml:"kind"`
	URI            string `yaml:"uri,omitempty"`
	DisplayName    string `yaml:"display_name,omitempty"`
	DurationFrames int64  `yaml:"duration_frames,omitempty"`
	Pending        bool   `yaml:"pending,omitempty"`
}

// TrackSeed creates one timeline lane. Tracks start visible and unmuted
// unless stated otherwise.
type TrackSeed struct {
	ID     string `yaml:"id"`
	Name   string `yaml:"name,omitempty"`
	Hidden bool   `yaml:"hidden,omitempty"`
	Muted  bool   `yaml:"muted,omitempty"`
}

// Step is one entry in the edit script. Op selects the command; the other
// fields carry that command's arguments and are ignored otherwise.
type Step struct {
	// Op is one of: add, move, resize, split, duplicate, transform,
	// remove, select, rename_track, toggle_visibility, toggle_mute,
	// undo, redo.
	Op string `yaml:"op"`

	// Placement is the full snapshot to add (op: add).
	Placement *project.Placement `yaml:"placement,omitempty"`

	// Target is the placement id the step operates on.
	Target string `yaml:"target,omitempty"`

	// Span is the destination interval (op: move, resize).
	Span *span.Span `yaml:"span,omitempty"`

	// Track is the destination track (op: move) or the track id to
	// rename/toggle.
	Track string `yaml:"track,omitempty"`

	// Frame is the timeline cut point (op: split).
	Frame int64 `yaml:"frame,omitempty"`

	// Offset is the timeline shift of the copy in frames (op: duplicate).
	Offset int64 `yaml:"offset,omitempty"`

	// Name is the new display name (op: rename_track).
	Name string `yaml:"name,omitempty"`

	// Mode and Targets drive selection steps (op: select).
	Mode    string   `yaml:"mode,omitempty"`
	Targets []string `yaml:"targets,omitempty"`

	// Patch holds the partial update (op: transform).
	Patch *PatchSeed `yaml:"patch,omitempty"`

	// AfterMS is the simulated delay before this step, in milliseconds.
	// Defaults to 1000, far outside the selection merge window; set a
	// small value to exercise selection coalescing.
	AfterMS *int64 `yaml:"after_ms,omitempty"`

	// Error, when set, is the error code this step is expected to fail
	// with (e.g. SOURCE_NOT_READY). The step's failure is recorded and
	// the script continues. An empty Error means the step must succeed.
	Error string `yaml:"error,omitempty"`
}

// PatchSeed mirrors edit.Patch for YAML: absent fields stay nil and are
// not applied.
type PatchSeed struct {
	X              *float64 `yaml:"x,omitempty"`
	Y              *float64 `yaml:"y,omitempty"`
	Width          *float64 `yaml:"width,omitempty"`
	Height         *float64 `yaml:"height,omitempty"`
	Rotation       *float64 `yaml:"rotation,omitempty"`
	Opacity        *float64 `yaml:"opacity,omitempty"`
	ZIndex         *int     `yaml:"z_index,omitempty"`
	Volume         *float64 `yaml:"volume,omitempty"`
	Muted          *bool    `yaml:"muted,omitempty"`
	GainDB         *float64 `yaml:"gain_db,omitempty"`
	DurationFrames *int64   `yaml:"duration_frames,omitempty"`
}

// Assert validates the final state. Nil fields are not checked.
type Assert struct {
	// Placements is the expected number of items in the project.
	Placements *int `yaml:"placements,omitempty"`

	// Attached is the expected number of live render nodes.
	Attached *int `yaml:"attached,omitempty"`

	// Selection is the expected selected ids, sorted.
	Selection []string `yaml:"selection,omitempty"`

	// HistoryLen is the expected total history length (done prefix plus
	// redo tail).
	HistoryLen *int `yaml:"history_len,omitempty"`

	CanUndo *bool `yaml:"can_undo,omitempty"`
	CanRedo *bool `yaml:"can_redo,omitempty"`
}

// Step op constants.
const (
	OpAdd              = "add"
	OpMove             = "move"
	OpResize           = "resize"
	OpSplit            = "split"
	OpDuplicate        = "duplicate"
	OpTransform        = "transform"
	OpRemove           = "remove"
	OpSelect           = "select"
	OpRenameTrack      = "rename_track"
	OpToggleVisibility = "toggle_visibility"
	OpToggleMute       = "toggle_mute"
	OpUndo             = "undo"
	OpRedo             = "redo"
)

// LoadScenario reads and parses a scenario YAML file. Unknown fields are
// rejected so a typo fails loudly instead of silently skipping a check.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML bytes.
func ParseScenario(data []byte) (*Scenario, error) {
	var s Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if err := validateScenario(&s); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &s, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, m := range s.Media {
		if m.ID == "" {
			return fmt.Errorf("media[%d]: id is required", i)
		}
		if m.Kind == "" {
			return fmt.Errorf("media[%d]: kind is required", i)
		}
	}
	for i, t := range s.Tracks {
		if t.ID == "" {
			return fmt.Errorf("tracks[%d]: id is required", i)
		}
	}
	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(i int, step *Step) error {
	switch step.Op {
	case OpAdd:
		if step.Placement == nil {
			return fmt.Errorf("steps[%d]: placement is required for add", i)
		}
	case OpMove, OpResize:
		if step.Target == "" {
			return fmt.Errorf("steps[%d]: target is required for %s", i, step.Op)
		}
		if step.Span == nil {
			return fmt.Errorf("steps[%d]: span is required for %s", i, step.Op)
		}
	case OpSplit:
		if step.Target == "" {
			return fmt.Errorf("steps[%d]: target is required for split", i)
		}
	case OpDuplicate, OpRemove:
		if step.Target == "" {
			return fmt.Errorf("steps[%d]: target is required for %s", i, step.Op)
		}
	case OpTransform:
		if step.Target == "" {
			return fmt.Errorf("steps[%d]: target is required for transform", i)
		}
		if step.Patch == nil {
			return fmt.Errorf("steps[%d]: patch is required for transform", i)
		}
	case OpSelect:
		if step.Mode != "replace" && step.Mode != "toggle" {
			return fmt.Errorf("steps[%d]: mode must be replace or toggle", i)
		}
	case OpRenameTrack:
		if step.Track == "" || step.Name == "" {
			return fmt.Errorf("steps[%d]: track and name are required for rename_track", i)
		}
	case OpToggleVisibility, OpToggleMute:
		if step.Track == "" {
			return fmt.Errorf("steps[%d]: track is required for %s", i, step.Op)
		}
	case OpUndo, OpRedo:
		// No arguments.
	case "":
		return fmt.Errorf("steps[%d]: op is required", i)
	default:
		return fmt.Errorf("steps[%d]: unknown op %q", i, step.Op)
	}
	return nil
}
