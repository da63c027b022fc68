package edit

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelkit/reelkit/internal/comp"
	"github.com/reelkit/reelkit/internal/span"
)

func TestAdd_ExecuteUndo(t *testing.T) {
	te := newTestEnv(t)
	ctx := context.Background()

	before := te.comp.AttachedCount()
	add := te.NewAdd(videoSnap("p-1"))
	require.NoError(t, add.Execute(ctx))

	assert.Equal(t, before+1, te.comp.AttachedCount())
	_, ok := te.Project.Item("p-1")
	assert.True(t, ok)

	require.NoError(t, add.Undo(ctx))
	assert.Equal(t, before, te.comp.AttachedCount(), "no dangling render nodes after undo")
	_, ok = te.Project.Item("p-1")
	assert.False(t, ok)
}

func TestAdd_RoundTripIsBitIdentical(t *testing.T) {
	te := newTestEnv(t)
	ctx := context.Background()

	add := te.NewAdd(videoSnap("p-1"))
	require.NoError(t, add.Execute(ctx))
	first, _ := te.comp.AttachedNode("p-1")
	firstState := first.State()

	require.NoError(t, add.Undo(ctx))
	require.NoError(t, add.Execute(ctx))

	second, ok := te.comp.AttachedNode("p-1")
	require.True(t, ok)
	assert.Equal(t, firstState, second.State(),
		"replayed reconstruction must match the first execute exactly")
}

func TestAdd_AttachFailureLeavesNoState(t *testing.T) {
	te := newTestEnv(t)
	ctx := context.Background()

	te.comp.FailAttach = errors.New("engine refused")
	add := te.NewAdd(videoSnap("p-1"))

	err := add.Execute(ctx)
	assert.True(t, IsAttachmentFailed(err), "got %v", err)
	_, ok := te.Project.Item("p-1")
	assert.False(t, ok, "failed attach must not write the store")
}

func TestAdd_SourceNotReadyPropagates(t *testing.T) {
	te := newTestEnv(t)
	snap := videoSnap("p-1")
	snap.MediaID = "m-pending"
	snap.Span.ClipEnd = 900

	err := te.NewAdd(snap).Execute(context.Background())
	assert.True(t, IsSourceNotReady(err))
}

func TestAdd_UndoOnMissingTargetIsNoOp(t *testing.T) {
	te := newTestEnv(t)
	ctx := context.Background()

	add := te.NewAdd(videoSnap("p-1"))
	require.NoError(t, add.Execute(ctx))

	// A concurrent edit removed the item behind our back.
	node, _ := te.comp.Attached("p-1")
	require.NoError(t, te.Comp.Detach(ctx, node))
	te.Project.RemoveItem("p-1")

	require.NoError(t, add.Undo(ctx), "missing target undo is recoverable")
}

func TestRemove_ExecuteUndo(t *testing.T) {
	te := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, te.NewAdd(videoSnap("p-1")).Execute(ctx))

	rm := te.NewRemove("p-1")
	require.NotNil(t, rm)
	require.NoError(t, rm.Execute(ctx))
	assert.Equal(t, 0, te.comp.AttachedCount())
	_, ok := te.Project.Item("p-1")
	assert.False(t, ok)

	// Undo rebuilds from the captured snapshot alone.
	require.NoError(t, rm.Undo(ctx))
	item, ok := te.Project.Item("p-1")
	require.True(t, ok)
	assert.Equal(t, videoSnap("p-1").Span, item.Span)
	assert.Equal(t, 1, te.comp.AttachedCount())

	assert.Nil(t, te.NewRemove("ghost"), "nothing to capture for a missing item")
}

func TestRemove_UndoAfterSourceDeletedFails(t *testing.T) {
	te := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, te.NewAdd(videoSnap("p-1")).Execute(ctx))
	rm := te.NewRemove("p-1")
	require.NoError(t, rm.Execute(ctx))

	te.Library.Remove("m-video")
	err := rm.Undo(ctx)
	assert.True(t, IsSourceMissing(err), "got %v", err)
	assert.Equal(t, 0, te.comp.AttachedCount(), "failed rebuild attaches nothing")
}

func TestMove_ExecuteUndo(t *testing.T) {
	te := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, te.NewAdd(videoSnap("p-1")).Execute(ctx))

	to := span.Span{ClipStart: 0, ClipEnd: 300, TimelineStart: 90, TimelineEnd: 240}
	mv := te.NewMove("p-1", to, "t-2")
	require.NotNil(t, mv)
	require.NoError(t, mv.Execute(ctx))

	item, _ := te.Project.Item("p-1")
	assert.Equal(t, to, item.Span)
	assert.Equal(t, "t-2", item.TrackID)
	node, _ := te.comp.AttachedNode("p-1")
	assert.Equal(t, int64(3_000_000), node.TimelineStartMicros)

	require.NoError(t, mv.Undo(ctx))
	item, _ = te.Project.Item("p-1")
	assert.Equal(t, videoSnap("p-1").Span, item.Span)
	assert.Equal(t, "t-1", item.TrackID)
}

func TestMove_MissingTargetIsWarnedNoOp(t *testing.T) {
	te := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, te.NewAdd(videoSnap("p-1")).Execute(ctx))
	mv := te.NewMove("p-1", span.Span{ClipStart: 0, ClipEnd: 300, TimelineStart: 10, TimelineEnd: 160}, "t-1")

	node, _ := te.comp.Attached("p-1")
	require.NoError(t, te.Comp.Detach(ctx, node))
	te.Project.RemoveItem("p-1")

	require.NoError(t, mv.Execute(ctx), "moving a vanished item is not fatal")
}

func TestMove_InvalidSpanRejected(t *testing.T) {
	te := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, te.NewAdd(videoSnap("p-1")).Execute(ctx))
	mv := te.NewMove("p-1", span.Span{ClipStart: 0, ClipEnd: 300, TimelineStart: -5, TimelineEnd: 145}, "t-1")

	err := mv.Execute(ctx)
	assert.True(t, IsInvalidTimeRange(err))
	item, _ := te.Project.Item("p-1")
	assert.Equal(t, videoSnap("p-1").Span, item.Span, "rejected before any state change")
}

func TestResize_ExecuteUndo(t *testing.T) {
	te := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, te.NewAdd(videoSnap("p-1")).Execute(ctx))

	// Stretch to unit rate: 300 clip frames over 300 timeline frames.
	to := span.Span{ClipStart: 0, ClipEnd: 300, TimelineStart: 0, TimelineEnd: 300}
	rs := te.NewResize("p-1", to)
	require.NoError(t, rs.Execute(ctx))

	item, _ := te.Project.Item("p-1")
	assert.Equal(t, to, item.Span)
	assert.InDelta(t, 1.0, item.Span.Rate(), 1e-9)

	node, _ := te.comp.AttachedNode("p-1")
	assert.Equal(t, int64(10_000_000), node.TimelineEndMicros)

	require.NoError(t, rs.Undo(ctx))
	item, _ = te.Project.Item("p-1")
	assert.InDelta(t, 2.0, item.Span.Rate(), 1e-9)
}

func TestResize_InvalidSpanRejected(t *testing.T) {
	te := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, te.NewAdd(videoSnap("p-1")).Execute(ctx))
	rs := te.NewResize("p-1", span.Span{ClipStart: 100, ClipEnd: 50, TimelineStart: 0, TimelineEnd: 150})

	err := rs.Execute(ctx)
	assert.True(t, IsInvalidTimeRange(err))
}

func TestDuplicate_ExecuteUndo(t *testing.T) {
	te := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, te.NewAdd(videoSnap("p-1")).Execute(ctx))

	dup := te.NewDuplicate("p-1", 150)
	require.NotNil(t, dup)
	require.NoError(t, dup.Execute(ctx))

	copyID := dup.CopyID()
	cp, ok := te.Project.Item(copyID)
	require.True(t, ok)
	assert.Equal(t, int64(150), cp.Span.TimelineStart, "copy is offset")
	assert.Equal(t, int64(300), cp.Span.TimelineEnd)
	assert.Equal(t, "m-video", cp.MediaID, "copy reuses the source's media reference")
	assert.Equal(t, 2, te.comp.AttachedCount())

	// Redo must recreate the same id.
	require.NoError(t, dup.Undo(ctx))
	assert.Equal(t, 1, te.comp.AttachedCount())
	_, ok = te.Project.Item("p-1")
	assert.True(t, ok, "undo removes only the copy")

	require.NoError(t, dup.Execute(ctx))
	_, ok = te.Project.Item(copyID)
	assert.True(t, ok)
}

func TestSplit_Invariant(t *testing.T) {
	te := newTestEnv(t)
	ctx := context.Background()

	// clip [0,300) over timeline [0,150) is a 2x rate; split at frame 60.
	require.NoError(t, te.NewAdd(videoSnap("p-1")).Execute(ctx))
	sp := te.NewSplit("p-1", 60)
	require.NotNil(t, sp)
	require.NoError(t, sp.Execute(ctx))

	leftID, rightID := sp.ChildIDs()
	left, ok := te.Project.Item(leftID)
	require.True(t, ok)
	right, ok := te.Project.Item(rightID)
	require.True(t, ok)

	assert.Equal(t, span.Span{ClipStart: 0, ClipEnd: 120, TimelineStart: 0, TimelineEnd: 60}, left.Span)
	assert.Equal(t, span.Span{ClipStart: 120, ClipEnd: 300, TimelineStart: 60, TimelineEnd: 150}, right.Span)

	_, ok = te.Project.Item("p-1")
	assert.False(t, ok, "original replaced by the two children")
	assert.Equal(t, 2, te.comp.AttachedCount())
}

func TestSplit_Undo(t *testing.T) {
	te := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, te.NewAdd(videoSnap("p-1")).Execute(ctx))
	sp := te.NewSplit("p-1", 60)
	require.NoError(t, sp.Execute(ctx))
	require.NoError(t, sp.Undo(ctx))

	item, ok := te.Project.Item("p-1")
	require.True(t, ok, "original rebuilt from its saved snapshot")
	assert.Equal(t, videoSnap("p-1").Span, item.Span)
	assert.Equal(t, 1, te.comp.AttachedCount())

	leftID, rightID := sp.ChildIDs()
	_, ok = te.Project.Item(leftID)
	assert.False(t, ok)
	_, ok = te.Project.Item(rightID)
	assert.False(t, ok)
}

func TestSplit_OutOfBoundsReturnsNil(t *testing.T) {
	te := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, te.NewAdd(videoSnap("p-1")).Execute(ctx))
	assert.Nil(t, te.NewSplit("p-1", 0), "cut at start is degenerate")
	assert.Nil(t, te.NewSplit("p-1", 150), "cut at end is degenerate")
	assert.Nil(t, te.NewSplit("ghost", 10))
}

func TestTrackMutators(t *testing.T) {
	te := newTestEnv(t)
	ctx := context.Background()

	rn := te.NewRenameTrack("t-1", "Main")
	require.NotNil(t, rn)
	require.NoError(t, rn.Execute(ctx))
	tr, _ := te.Project.Track("t-1")
	assert.Equal(t, "Main", tr.Name)
	require.NoError(t, rn.Undo(ctx))
	tr, _ = te.Project.Track("t-1")
	assert.Equal(t, "Video 1", tr.Name)

	tv := te.NewToggleTrackVisibility("t-1")
	require.NoError(t, tv.Execute(ctx))
	tr, _ = te.Project.Track("t-1")
	assert.False(t, tr.Visible)
	require.NoError(t, tv.Undo(ctx))
	tr, _ = te.Project.Track("t-1")
	assert.True(t, tr.Visible)

	tm := te.NewToggleTrackMute("t-1")
	require.NoError(t, tm.Execute(ctx))
	tr, _ = te.Project.Track("t-1")
	assert.True(t, tr.Muted)

	assert.Nil(t, te.NewRenameTrack("ghost", "x"))
	assert.Nil(t, te.NewToggleTrackVisibility("ghost"))
	assert.Nil(t, te.NewToggleTrackMute("ghost"))
}

func TestAdd_RedoProducesIndependentNodes(t *testing.T) {
	te := newTestEnv(t)
	ctx := context.Background()

	add := te.NewAdd(imageSnap("p-img"))
	require.NoError(t, add.Execute(ctx))
	first, _ := te.comp.AttachedNode("p-img")

	require.NoError(t, add.Undo(ctx))
	require.NoError(t, add.Execute(ctx))
	second, _ := te.comp.AttachedNode("p-img")

	assert.NotSame(t, first, second, "each replay constructs a fresh node")
	assert.Equal(t, first.State(), second.State())
}

var _ comp.Compositor = (*comp.Memory)(nil)
