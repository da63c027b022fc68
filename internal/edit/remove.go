package edit

import (
	"context"

	"github.com/reelkit/reelkit/internal/project"
)

// Remove deletes an item from the timeline. The full snapshot is captured
// at construction so undo can rebuild the node from canonical data alone.
type Remove struct {
	meta
	env  *Env
	snap project.Placement
}

// NewRemove creates a remove command. Returns nil when the placement does
// not exist - there is nothing to capture.
func (e *Env) NewRemove(id string) *Remove {
	snap, ok := e.Project.Item(id)
	if !ok {
		return nil
	}
	return &Remove{
		meta: e.newMeta("Remove " + snap.Name),
		env:  e,
		snap: snap,
	}
}

// Execute detaches the live node and removes the placement. A placement
// already gone is a logged no-op.
func (r *Remove) Execute(ctx context.Context) error {
	if _, ok := r.env.Project.Item(r.snap.ID); !ok {
		r.env.Log.Warn("remove: placement already gone", "placement", r.snap.ID)
		return nil
	}
	if node, ok := r.env.Comp.Attached(r.snap.ID); ok {
		if err := r.env.Comp.Detach(ctx, node); err != nil {
			return NewAttachmentFailed(r.snap.ID, err)
		}
	}
	r.env.Project.RemoveItem(r.snap.ID)
	return nil
}

// Undo rebuilds the node from the saved snapshot and re-adds the placement.
func (r *Remove) Undo(ctx context.Context) error {
	node, err := r.env.Rebuild.Rebuild(ctx, r.snap)
	if err != nil {
		return err
	}
	if err := r.env.Comp.Attach(ctx, node); err != nil {
		return NewAttachmentFailed(r.snap.ID, err)
	}
	if err := r.env.Project.AddItem(r.snap); err != nil {
		if derr := r.env.Comp.Detach(ctx, node); derr != nil {
			r.env.Log.Warn("detach after failed undo-remove", "placement", r.snap.ID, "error", derr)
		}
		return err
	}
	return nil
}
