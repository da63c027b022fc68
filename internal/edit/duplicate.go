package edit

import (
	"context"

	"github.com/reelkit/reelkit/internal/project"
)

// Duplicate clones an existing item at a frame offset. The source snapshot
// and the generated id are captured at construction, so redo always
// recreates the same placement; the source item is never touched.
type Duplicate struct {
	meta
	env  *Env
	copy project.Placement
}

// NewDuplicate creates a duplicate command. The new placement reuses the
// source's media reference and transform, offset on the timeline by
// offsetFrames. Returns nil when the source does not exist.
func (e *Env) NewDuplicate(sourceID string, offsetFrames int64) *Duplicate {
	src, ok := e.Project.Item(sourceID)
	if !ok {
		return nil
	}

	cp := src.Clone()
	cp.ID = e.IDs.Generate()
	cp.Name = src.Name + " copy"
	cp.Span.TimelineStart += offsetFrames
	cp.Span.TimelineEnd += offsetFrames

	return &Duplicate{
		meta: e.newMeta("Duplicate " + src.Name),
		env:  e,
		copy: cp,
	}
}

// CopyID returns the generated placement id.
func (d *Duplicate) CopyID() string { return d.copy.ID }

// Execute rebuilds a brand-new node from the source's media reference at
// the offset position and attaches it.
func (d *Duplicate) Execute(ctx context.Context) error {
	if !d.copy.Span.Valid() {
		return NewInvalidTimeRange(d.copy.ID, "offset places the copy outside the timeline")
	}
	node, err := d.env.Rebuild.Rebuild(ctx, d.copy)
	if err != nil {
		return err
	}
	if err := d.env.Comp.Attach(ctx, node); err != nil {
		return NewAttachmentFailed(d.copy.ID, err)
	}
	if err := d.env.Project.AddItem(d.copy); err != nil {
		if derr := d.env.Comp.Detach(ctx, node); derr != nil {
			d.env.Log.Warn("detach after failed duplicate", "placement", d.copy.ID, "error", derr)
		}
		return err
	}
	return nil
}

// Undo removes only the duplicated item; the source is untouched.
func (d *Duplicate) Undo(ctx context.Context) error {
	if _, ok := d.env.Project.Item(d.copy.ID); !ok {
		d.env.Log.Warn("undo duplicate: copy already gone", "placement", d.copy.ID)
		return nil
	}
	if node, ok := d.env.Comp.Attached(d.copy.ID); ok {
		if err := d.env.Comp.Detach(ctx, node); err != nil {
			return NewAttachmentFailed(d.copy.ID, err)
		}
	}
	d.env.Project.RemoveItem(d.copy.ID)
	return nil
}
