package edit

import (
	"context"

	"github.com/reelkit/reelkit/internal/comp"
	"github.com/reelkit/reelkit/internal/project"
	"github.com/reelkit/reelkit/internal/span"
)

// Patch is a partial update of an item's visual and audible state. Nil
// fields are untouched; only the fields actually supplied are applied on
// execute and only those same fields are restored on undo.
type Patch struct {
	X        *float64
	Y        *float64
	Width    *float64
	Height   *float64
	Rotation *float64
	Opacity  *float64
	ZIndex   *int

	Volume *float64
	Muted  *bool
	GainDB *float64

	// DurationFrames adjusts the timeline interval to the given length,
	// keeping the start frame fixed.
	DurationFrames *int64
}

// Transform applies a Patch to one item.
//
// The undo patch captures, at construction time, the then-current value of
// every field the forward patch names. Interleaved edits by other commands
// are possible between capture and undo; the most recently captured
// snapshot is authoritative - undo restores exactly the fields it
// captured, nothing else.
type Transform struct {
	meta
	env     *Env
	id      string
	forward Patch
	reverse Patch
}

// NewTransform creates a transform command for the supplied fields.
// Returns nil when the placement does not exist.
func (e *Env) NewTransform(id string, patch Patch) *Transform {
	item, ok := e.Project.Item(id)
	if !ok {
		return nil
	}

	var rev Patch
	t := item.Transform
	if patch.X != nil {
		v := t.X
		rev.X = &v
	}
	if patch.Y != nil {
		v := t.Y
		rev.Y = &v
	}
	if patch.Width != nil {
		v := t.Width
		rev.Width = &v
	}
	if patch.Height != nil {
		v := t.Height
		rev.Height = &v
	}
	if patch.Rotation != nil {
		v := t.Rotation
		rev.Rotation = &v
	}
	if patch.Opacity != nil {
		v := t.Opacity
		rev.Opacity = &v
	}
	if patch.ZIndex != nil {
		v := t.ZIndex
		rev.ZIndex = &v
	}
	if item.Audio != nil {
		if patch.Volume != nil {
			v := item.Audio.Volume
			rev.Volume = &v
		}
		if patch.Muted != nil {
			v := item.Audio.Muted
			rev.Muted = &v
		}
		if patch.GainDB != nil {
			v := item.Audio.GainDB
			rev.GainDB = &v
		}
	}
	if patch.DurationFrames != nil {
		v := item.Span.Duration()
		rev.DurationFrames = &v
	}

	return &Transform{
		meta:    e.newMeta("Transform " + item.Name),
		env:     e,
		id:      id,
		forward: patch,
		reverse: rev,
	}
}

// Execute merges the forward patch into the item and the live node.
func (t *Transform) Execute(ctx context.Context) error {
	return t.apply(ctx, t.forward)
}

// Undo restores the captured fields.
func (t *Transform) Undo(ctx context.Context) error {
	return t.apply(ctx, t.reverse)
}

func (t *Transform) apply(_ context.Context, p Patch) error {
	item, ok := t.env.Project.Item(t.id)
	if !ok {
		t.env.Log.Warn("transform: placement gone, skipping", "placement", t.id)
		return nil
	}

	tr := item.Transform
	if p.X != nil {
		tr.X = *p.X
	}
	if p.Y != nil {
		tr.Y = *p.Y
	}
	if p.Width != nil {
		tr.Width = *p.Width
	}
	if p.Height != nil {
		tr.Height = *p.Height
	}
	if p.Rotation != nil {
		tr.Rotation = *p.Rotation
	}
	if p.Opacity != nil {
		tr.Opacity = *p.Opacity
	}
	if p.ZIndex != nil {
		tr.ZIndex = *p.ZIndex
	}

	audio := item.Audio
	if p.Volume != nil || p.Muted != nil || p.GainDB != nil {
		var cp project.AudioState
		if item.Audio != nil {
			cp = *item.Audio
		}
		if p.Volume != nil {
			cp.Volume = *p.Volume
		}
		if p.Muted != nil {
			cp.Muted = *p.Muted
		}
		if p.GainDB != nil {
			cp.GainDB = *p.GainDB
		}
		audio = &cp
	}

	// Validate the duration change before any write: the command either
	// applies fully or not at all.
	newSpan := item.Span
	if p.DurationFrames != nil {
		newSpan.TimelineEnd = newSpan.TimelineStart + *p.DurationFrames
		if !newSpan.Valid() {
			return NewInvalidTimeRange(t.id, "duration change produces an invalid span")
		}
	}

	if err := t.env.Project.UpdateTransform(t.id, tr, audio); err != nil {
		return err
	}
	if p.DurationFrames != nil {
		if err := t.env.Project.UpdatePosition(t.id, newSpan, item.TrackID); err != nil {
			return err
		}
	}

	if node, ok := t.env.Comp.Attached(t.id); ok {
		t.applyToNode(node, tr, audio, newSpan)
	}
	return nil
}

// applyToNode pushes the merged state to the live node.
func (t *Transform) applyToNode(node comp.Node, tr project.Transform, audio *project.AudioState, s span.Span) {
	proj := t.env.Project
	node.SetGeometry(comp.ToNative(tr.Centered(), proj.CanvasWidth, proj.CanvasHeight))
	node.SetOpacity(tr.Opacity)
	node.SetZOrder(tr.ZIndex)
	if audio != nil {
		node.SetAudioState(comp.AudioState{Volume: audio.Volume, Muted: audio.Muted})
		node.SetGain(audio.GainDB)
	}
	fps := proj.FrameRate
	node.SetTimelineRange(span.Micros(s.TimelineStart, fps), span.Micros(s.TimelineEnd, fps))
}
