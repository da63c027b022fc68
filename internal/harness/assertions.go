package harness

import (
	"fmt"
	"reflect"

	"github.com/reelkit/reelkit/internal/edit"
)

// evaluateAssert checks the scenario's final-state assertions against the
// result. Returns one message per failed check; an empty slice means the
// scenario passed.
func evaluateAssert(a *Assert, r *Result, mgr *edit.Manager) []string {
	var failures []string

	if a.Placements != nil && len(r.Placements) != *a.Placements {
		failures = append(failures,
			fmt.Sprintf("assert placements: expected %d, got %d", *a.Placements, len(r.Placements)))
	}
	if a.Attached != nil && len(r.AttachedIDs) != *a.Attached {
		failures = append(failures,
			fmt.Sprintf("assert attached: expected %d, got %d", *a.Attached, len(r.AttachedIDs)))
	}
	if a.Selection != nil && !reflect.DeepEqual(a.Selection, r.Selection) {
		failures = append(failures,
			fmt.Sprintf("assert selection: expected %v, got %v", a.Selection, r.Selection))
	}
	if a.HistoryLen != nil && len(r.History) != *a.HistoryLen {
		failures = append(failures,
			fmt.Sprintf("assert history_len: expected %d, got %d", *a.HistoryLen, len(r.History)))
	}
	if a.CanUndo != nil && mgr.CanUndo() != *a.CanUndo {
		failures = append(failures,
			fmt.Sprintf("assert can_undo: expected %t, got %t", *a.CanUndo, mgr.CanUndo()))
	}
	if a.CanRedo != nil && mgr.CanRedo() != *a.CanRedo {
		failures = append(failures,
			fmt.Sprintf("assert can_redo: expected %t, got %t", *a.CanRedo, mgr.CanRedo()))
	}
	return failures
}
