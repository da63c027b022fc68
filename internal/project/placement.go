// Package project holds the canonical editing state: placements, tracks,
// and the selection set.
//
// A Placement is the serializable description of one timeline occupant.
// It is the ONLY state an edit command may persist for later replay:
// commands capture deep copies (Clone) and reconstruct render nodes from
// them, never aliases into whatever live node currently exists. This is
// what lets undo/redo rebuild a node long after the compositor has
// disposed the original.
package project

import (
	"github.com/reelkit/reelkit/internal/comp"
	"github.com/reelkit/reelkit/internal/media"
	"github.com/reelkit/reelkit/internal/span"
)

// Transform is a placement's visual state in the canvas-centered
// coordinate system (origin at canvas center).
type Transform struct {
	X        float64 `json:"x" yaml:"x"`
	Y        float64 `json:"y" yaml:"y"`
	Width    float64 `json:"width" yaml:"width"`
	Height   float64 `json:"height" yaml:"height"`
	Rotation float64 `json:"rotation" yaml:"rotation"`
	Opacity  float64 `json:"opacity" yaml:"opacity"`
	ZIndex   int     `json:"z_index" yaml:"z_index"`
}

// Centered returns the transform's geometry in comp's centered form.
func (t Transform) Centered() comp.Centered {
	return comp.Centered{X: t.X, Y: t.Y, Width: t.Width, Height: t.Height, Angle: t.Rotation}
}

// AudioState is a placement's audible state.
type AudioState struct {
	Volume float64 `json:"volume" yaml:"volume"`
	Muted  bool    `json:"muted" yaml:"muted"`
	GainDB float64 `json:"gain_db" yaml:"gain_db"`
}

// Animation is an opaque keyframe configuration carried through snapshot
// and restore. Interpolation math lives in the external engine; this
// subsystem only preserves the configuration byte for byte.
type Animation struct {
	Preset string             `json:"preset" yaml:"preset"`
	Params map[string]float64 `json:"params,omitempty" yaml:"params,omitempty"`
}

// clone deep-copies the animation config.
func (a *Animation) clone() *Animation {
	if a == nil {
		return nil
	}
	out := &Animation{Preset: a.Preset}
	if a.Params != nil {
		out.Params = make(map[string]float64, len(a.Params))
		for k, v := range a.Params {
			out.Params[k] = v
		}
	}
	return out
}

// Placement is the canonical, serializable description of one timeline
// occupant at a point in time.
type Placement struct {
	ID        string      `json:"id" yaml:"id"`
	MediaID   string      `json:"media_id" yaml:"media_id"`
	TrackID   string      `json:"track_id" yaml:"track_id"`
	Kind      media.Kind  `json:"kind" yaml:"kind"`
	Span      span.Span   `json:"span" yaml:"span"`
	Transform Transform   `json:"transform" yaml:"transform"`
	Audio     *AudioState `json:"audio,omitempty" yaml:"audio,omitempty"`
	Animation *Animation  `json:"animation,omitempty" yaml:"animation,omitempty"`
	Name      string      `json:"name" yaml:"name"`
}

// Clone returns a deep copy. Commands must capture clones, never the
// store's own values, so a snapshot survives independently of later edits.
func (p Placement) Clone() Placement {
	out := p
	if p.Audio != nil {
		audio := *p.Audio
		out.Audio = &audio
	}
	out.Animation = p.Animation.clone()
	return out
}

// Track is one horizontal lane of the timeline.
type Track struct {
	ID      string `json:"id" yaml:"id"`
	Name    string `json:"name" yaml:"name"`
	Visible bool   `json:"visible" yaml:"visible"`
	Muted   bool   `json:"muted" yaml:"muted"`
}
