package edit

import (
	"context"

	"github.com/reelkit/reelkit/internal/project"
)

// Add places a new item on the timeline.
//
// The full placement snapshot is captured at construction; execute (and
// every redo) rebuilds the render node from it and attaches, undo detaches
// and removes. No node outlives a single call.
type Add struct {
	meta
	env  *Env
	snap project.Placement
}

// NewAdd creates an add command for the given placement snapshot.
func (e *Env) NewAdd(snap project.Placement) *Add {
	return &Add{
		meta: e.newMeta("Add " + snap.Name),
		env:  e,
		snap: snap.Clone(),
	}
}

// Execute rebuilds the node, attaches it, and records the placement in the
// canonical store. Ordering matters: the store is written only after the
// compositor accepted the node, so a failed attach leaves no state behind.
func (a *Add) Execute(ctx context.Context) error {
	node, err := a.env.Rebuild.Rebuild(ctx, a.snap)
	if err != nil {
		return err
	}
	if err := a.env.Comp.Attach(ctx, node); err != nil {
		return NewAttachmentFailed(a.snap.ID, err)
	}
	if err := a.env.Project.AddItem(a.snap); err != nil {
		// Unwind the attach so a store refusal is side-effect free.
		if derr := a.env.Comp.Detach(ctx, node); derr != nil {
			a.env.Log.Warn("detach after failed add", "placement", a.snap.ID, "error", derr)
		}
		return err
	}
	return nil
}

// Undo detaches the node (when still live) and removes the placement.
// A placement already gone is a logged no-op: the end state holds.
func (a *Add) Undo(ctx context.Context) error {
	if _, ok := a.env.Project.Item(a.snap.ID); !ok {
		a.env.Log.Warn("undo add: placement already gone", "placement", a.snap.ID)
		return nil
	}
	if node, ok := a.env.Comp.Attached(a.snap.ID); ok {
		if err := a.env.Comp.Detach(ctx, node); err != nil {
			return NewAttachmentFailed(a.snap.ID, err)
		}
	}
	a.env.Project.RemoveItem(a.snap.ID)
	return nil
}
