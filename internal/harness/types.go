package harness

import (
	"github.com/reelkit/reelkit/internal/edit"
	"github.com/reelkit/reelkit/internal/project"
)

// TraceEvent records the outcome of one scenario step.
type TraceEvent struct {
	// Step is the zero-based index into the scenario's steps.
	Step int `json:"step"`

	// Op is the step's operation name.
	Op string `json:"op"`

	// Description is the executed command's history label. Empty for
	// undo/redo steps and for steps that failed before construction.
	Description string `json:"description,omitempty"`

	// Applied reports whether the step changed state. False for an undo
	// on an empty stack, a redo with no tail, or a failed command.
	Applied bool `json:"applied"`

	// Error is the error code (or message, for non-edit errors) of a
	// failed step.
	Error string `json:"error,omitempty"`
}

// Result is the outcome of a scenario run: the step trace plus the final
// observable state of every subsystem the scenario touches.
type Result struct {
	ScenarioName string `json:"scenario_name"`

	Trace []TraceEvent `json:"trace"`

	// History is the final undo stack listing.
	History []edit.SummaryEntry `json:"history"`

	// Placements is the final canonical store, ordered by timeline start.
	Placements []project.Placement `json:"placements"`

	// Tracks is the final lane state, ordered by id.
	Tracks []project.Track `json:"tracks"`

	// Selection is the final selected ids, sorted.
	Selection []string `json:"selection"`

	// AttachedIDs is the ids of live render nodes, sorted. Comparing this
	// against Placements catches dangling or missing nodes.
	AttachedIDs []string `json:"attached_ids"`

	// Failures lists assertion failures. Empty means the scenario passed.
	Failures []string `json:"-"`
}

// Pass reports whether every assertion held.
func (r *Result) Pass() bool { return len(r.Failures) == 0 }
