package edit

import (
	"context"
	"sort"
	"time"
)

// SelectMode controls how a selection command computes its after state.
type SelectMode string

const (
	// SelectReplace makes the target set the new selection.
	SelectReplace SelectMode = "replace"
	// SelectToggle flips membership of each target id.
	SelectToggle SelectMode = "toggle"
)

// MergeWindow is the maximum gap between two selection commands of the
// same mode for them to coalesce into one history entry. Drag-multi-select
// emits one command per item crossed; without merging the undo stack
// floods with one entry per click.
const MergeWindow = 100 * time.Millisecond

// Select captures the full before selection and computes the after set
// from its mode and target ids. Selection touches no render nodes, so
// execute and undo are pure store mutations.
type Select struct {
	meta
	env     *Env
	mode    SelectMode
	targets []string
	before  []string
	after   []string
}

// NewSelect creates a selection command. The before set is captured now,
// at construction, from the current store state.
func (e *Env) NewSelect(mode SelectMode, targets []string) *Select {
	return &Select{
		meta:    e.newMeta("Select items"),
		env:     e,
		mode:    mode,
		targets: append([]string(nil), targets...),
		before:  e.Project.Selection(),
	}
}

// Execute computes and applies the after set.
func (s *Select) Execute(_ context.Context) error {
	s.after = s.apply(s.before)
	s.env.Project.SetSelection(s.after)
	return nil
}

// Undo restores the captured before set.
func (s *Select) Undo(_ context.Context) error {
	s.env.Project.SetSelection(s.before)
	return nil
}

// After returns the computed after set. Empty until first executed.
func (s *Select) After() []string {
	return append([]string(nil), s.after...)
}

// TryMerge implements Merger: two consecutive selection commands of the
// same mode within MergeWindow coalesce. Target lists are unioned in order
// and the after state is recomputed from the receiver's original before
// state, so undoing the merged entry restores the selection as it was
// before the first click.
func (s *Select) TryMerge(next Command) bool {
	ns, ok := next.(*Select)
	if !ok || ns.mode != s.mode {
		return false
	}
	if ns.timestamp.Sub(s.timestamp) >= MergeWindow {
		return false
	}

	seen := make(map[string]bool, len(s.targets))
	for _, id := range s.targets {
		seen[id] = true
	}
	for _, id := range ns.targets {
		if !seen[id] {
			s.targets = append(s.targets, id)
			seen[id] = true
		}
	}

	s.timestamp = ns.timestamp
	s.after = s.apply(s.before)
	s.env.Project.SetSelection(s.after)
	return true
}

// apply computes the resulting selection from a starting set.
func (s *Select) apply(from []string) []string {
	switch s.mode {
	case SelectToggle:
		set := make(map[string]bool, len(from))
		for _, id := range from {
			set[id] = true
		}
		for _, id := range s.targets {
			if set[id] {
				delete(set, id)
			} else {
				set[id] = true
			}
		}
		out := make([]string, 0, len(set))
		for id := range set {
			out = append(out, id)
		}
		sort.Strings(out)
		return out
	default: // SelectReplace
		return append([]string(nil), s.targets...)
	}
}
