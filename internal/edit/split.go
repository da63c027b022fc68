package edit

import (
	"context"

	"github.com/reelkit/reelkit/internal/comp"
	"github.com/reelkit/reelkit/internal/project"
	"github.com/reelkit/reelkit/internal/span"
)

// Split cuts an item in two at a timeline frame.
//
// The clip-relative cut point is computed proportionally (span.Split): the
// timeline may run at a non-unit playback rate, so the clip cut is NOT the
// same frame offset. Both child ids are generated at construction so redo
// is deterministic.
type Split struct {
	meta
	env *Env

	source project.Placement
	frame  int64
	left   project.Placement
	right  project.Placement
}

// NewSplit creates a split command. The child spans are derived and
// validated at construction; a cut frame outside the item returns nil and
// no command is created.
func (e *Env) NewSplit(id string, frame int64) *Split {
	src, ok := e.Project.Item(id)
	if !ok {
		return nil
	}
	leftSpan, rightSpan, err := span.Split(src.Span, frame)
	if err != nil {
		return nil
	}

	left := src.Clone()
	left.ID = e.IDs.Generate()
	left.Span = leftSpan

	right := src.Clone()
	right.ID = e.IDs.Generate()
	right.Span = rightSpan

	return &Split{
		meta:   e.newMeta("Split " + src.Name),
		env:    e,
		source: src,
		frame:  frame,
		left:   left,
		right:  right,
	}
}

// ChildIDs returns the generated ids of the two children (left, right).
func (s *Split) ChildIDs() (string, string) { return s.left.ID, s.right.ID }

// Execute rebuilds the two child nodes, attaches them, and removes the
// original. The original is taken down first so the compositor never holds
// overlapping nodes for the same media at the same timeline position.
func (s *Split) Execute(ctx context.Context) error {
	if _, ok := s.env.Project.Item(s.source.ID); !ok {
		s.env.Log.Warn("split: source gone, skipping", "placement", s.source.ID)
		return nil
	}

	leftNode, err := s.env.Rebuild.Rebuild(ctx, s.left)
	if err != nil {
		return err
	}
	rightNode, err := s.env.Rebuild.Rebuild(ctx, s.right)
	if err != nil {
		return err
	}

	if node, ok := s.env.Comp.Attached(s.source.ID); ok {
		if err := s.env.Comp.Detach(ctx, node); err != nil {
			return NewAttachmentFailed(s.source.ID, err)
		}
	}
	s.env.Project.RemoveItem(s.source.ID)

	if err := s.attachChild(ctx, leftNode, s.left); err != nil {
		return err
	}
	if err := s.attachChild(ctx, rightNode, s.right); err != nil {
		return err
	}
	return nil
}

// Undo removes both children and rebuilds the single original from its
// saved snapshot.
func (s *Split) Undo(ctx context.Context) error {
	for _, child := range []project.Placement{s.right, s.left} {
		if _, ok := s.env.Project.Item(child.ID); !ok {
			s.env.Log.Warn("undo split: child already gone", "placement", child.ID)
			continue
		}
		if node, ok := s.env.Comp.Attached(child.ID); ok {
			if err := s.env.Comp.Detach(ctx, node); err != nil {
				return NewAttachmentFailed(child.ID, err)
			}
		}
		s.env.Project.RemoveItem(child.ID)
	}

	node, err := s.env.Rebuild.Rebuild(ctx, s.source)
	if err != nil {
		return err
	}
	if err := s.env.Comp.Attach(ctx, node); err != nil {
		return NewAttachmentFailed(s.source.ID, err)
	}
	return s.env.Project.AddItem(s.source)
}

func (s *Split) attachChild(ctx context.Context, node comp.Node, child project.Placement) error {
	if err := s.env.Comp.Attach(ctx, node); err != nil {
		return NewAttachmentFailed(child.ID, err)
	}
	if err := s.env.Project.AddItem(child); err != nil {
		if derr := s.env.Comp.Detach(ctx, node); derr != nil {
			s.env.Log.Warn("detach after failed split attach", "placement", child.ID, "error", derr)
		}
		return err
	}
	return nil
}
