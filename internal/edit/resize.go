package edit

import (
	"context"

	"github.com/reelkit/reelkit/internal/span"
)

// Resize changes an item's time range (trim or stretch). Old and new spans
// are captured; the new span is validated before anything is written.
type Resize struct {
	meta
	env *Env
	id  string

	oldSpan span.Span
	newSpan span.Span
}

// NewResize creates a resize command. Returns nil when the placement does
// not exist.
func (e *Env) NewResize(id string, to span.Span) *Resize {
	item, ok := e.Project.Item(id)
	if !ok {
		return nil
	}
	return &Resize{
		meta:    e.newMeta("Resize " + item.Name),
		env:     e,
		id:      id,
		oldSpan: item.Span,
		newSpan: to,
	}
}

// Execute applies the new span.
func (r *Resize) Execute(ctx context.Context) error {
	return r.apply(ctx, r.newSpan)
}

// Undo applies the old span.
func (r *Resize) Undo(ctx context.Context) error {
	return r.apply(ctx, r.oldSpan)
}

func (r *Resize) apply(_ context.Context, s span.Span) error {
	if !s.Valid() {
		return NewInvalidTimeRange(r.id, "resize target span fails validation")
	}
	item, ok := r.env.Project.Item(r.id)
	if !ok {
		r.env.Log.Warn("resize: placement gone, skipping", "placement", r.id)
		return nil
	}
	if err := r.env.Project.UpdatePosition(r.id, s, item.TrackID); err != nil {
		return err
	}
	if node, ok := r.env.Comp.Attached(r.id); ok {
		fps := r.env.Project.FrameRate
		node.SetTimelineRange(span.Micros(s.TimelineStart, fps), span.Micros(s.TimelineEnd, fps))
		if item.Kind.HasClip() && s.HasClip() {
			node.SetSourceRange(span.Micros(s.ClipStart, fps), span.Micros(s.ClipEnd, fps))
		}
	}
	return nil
}
