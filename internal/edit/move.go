package edit

import (
	"context"

	"github.com/reelkit/reelkit/internal/span"
)

// Move shifts an item to a new timeline position and/or track. Only the
// old and new positions are captured - a move never reconstructs, it
// repositions the live node when one exists.
type Move struct {
	meta
	env *Env
	id  string

	oldSpan  span.Span
	oldTrack string
	newSpan  span.Span
	newTrack string
}

// NewMove creates a move command. The current position is captured now as
// the undo target. Returns nil when the placement does not exist.
func (e *Env) NewMove(id string, to span.Span, toTrack string) *Move {
	item, ok := e.Project.Item(id)
	if !ok {
		return nil
	}
	return &Move{
		meta:     e.newMeta("Move " + item.Name),
		env:      e,
		id:       id,
		oldSpan:  item.Span,
		oldTrack: item.TrackID,
		newSpan:  to,
		newTrack: toTrack,
	}
}

// Execute applies the new position.
func (m *Move) Execute(ctx context.Context) error {
	return m.apply(ctx, m.newSpan, m.newTrack)
}

// Undo applies the old position.
func (m *Move) Undo(ctx context.Context) error {
	return m.apply(ctx, m.oldSpan, m.oldTrack)
}

// apply writes the position to the canonical store and, when a live node
// exists, repositions it. A missing placement is a logged no-op rather
// than an error - a concurrent edit may have removed it, and the end state
// is then moot.
func (m *Move) apply(_ context.Context, s span.Span, trackID string) error {
	if !s.Valid() {
		return NewInvalidTimeRange(m.id, "move target span fails validation")
	}
	if _, ok := m.env.Project.Item(m.id); !ok {
		m.env.Log.Warn("move: placement gone, skipping", "placement", m.id)
		return nil
	}
	if err := m.env.Project.UpdatePosition(m.id, s, trackID); err != nil {
		return err
	}
	if node, ok := m.env.Comp.Attached(m.id); ok {
		fps := m.env.Project.FrameRate
		node.SetTimelineRange(span.Micros(s.TimelineStart, fps), span.Micros(s.TimelineEnd, fps))
	} else {
		m.env.Log.Warn("move: no live node, store updated only", "placement", m.id)
	}
	return nil
}
