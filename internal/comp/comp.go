// Package comp defines the contract this subsystem holds against the
// external compositing engine, plus an in-process Memory implementation
// used by the CLI, the scenario harness, and tests.
//
// The compositor owns render nodes: the live, mutable objects that draw or
// play one timeline occupant each. Edit commands construct nodes through a
// Compositor, configure them, and attach them - but never retain one past a
// single execute/undo call. Two consecutive redos are allowed to produce
// two independently constructed nodes.
//
// Time ranges cross this boundary in the engine's native microsecond clock;
// geometry crosses it in the engine's top-left-origin coordinate system.
// Both conversions happen in the caller, exactly once per call.
package comp

import "context"

// AudioState is the audible state applied to a node.
type AudioState struct {
	Volume float64 `json:"volume" yaml:"volume"`
	Muted  bool    `json:"muted" yaml:"muted"`
}

// Node is one live render object inside the compositing engine.
//
// Setters take effect immediately on the engine's copy of the state.
// A Node is only drawn/played while attached (see Compositor).
type Node interface {
	// ID returns the placement id this node was built for.
	ID() string

	// SetTimelineRange sets where the node sits on the project timeline,
	// in native clock units (microseconds).
	SetTimelineRange(startMicros, endMicros int64)

	// SetSourceRange sets which part of the source media the node plays,
	// in native clock units. Only meaningful for video and audio nodes.
	SetSourceRange(startMicros, endMicros int64)

	// SetGeometry positions the node in the engine's top-left-origin
	// coordinate system.
	SetGeometry(g Geometry)

	// SetOpacity sets the node's opacity in [0, 1].
	SetOpacity(opacity float64)

	// SetZOrder sets the node's stacking order.
	SetZOrder(z int)

	// SetAudioState sets volume and mute together.
	SetAudioState(state AudioState)

	// SetGain applies an audio gain in decibels.
	SetGain(db float64)
}

// Compositor is the node-construction and attachment contract of the
// external engine.
//
// NewNode returns a detached node; attachment is a separate step so that
// callers can sequence "construct, configure, attach" and "detach, discard"
// atomically from their own point of view.
//
// Attached resolves the live node for a placement id, if one is currently
// in the composition. Callers may use the result only within the current
// call - the engine is free to dispose nodes between calls.
type Compositor interface {
	NewNode(id string, kind string) (Node, error)
	Attach(ctx context.Context, node Node) error
	Detach(ctx context.Context, node Node) error
	Attached(id string) (Node, bool)
}
