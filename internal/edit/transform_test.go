package edit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }
func b(v bool) *bool       { return &v }
func i64(v int64) *int64   { return &v }

func TestTransform_PartialFields(t *testing.T) {
	te := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, te.NewAdd(videoSnap("p-1")).Execute(ctx))

	// Only opacity and X change; everything else is untouched.
	tf := te.NewTransform("p-1", Patch{Opacity: f(0.4), X: f(100)})
	require.NotNil(t, tf)
	require.NoError(t, tf.Execute(ctx))

	item, _ := te.Project.Item("p-1")
	assert.Equal(t, 0.4, item.Transform.Opacity)
	assert.Equal(t, 100.0, item.Transform.X)
	assert.Equal(t, -20.0, item.Transform.Y, "unsupplied fields keep their value")
	assert.Equal(t, 15.0, item.Transform.Rotation)

	require.NoError(t, tf.Undo(ctx))
	item, _ = te.Project.Item("p-1")
	assert.Equal(t, 0.9, item.Transform.Opacity)
	assert.Equal(t, 10.0, item.Transform.X)
}

func TestTransform_UndoRestoresOnlyCapturedFields(t *testing.T) {
	te := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, te.NewAdd(videoSnap("p-1")).Execute(ctx))

	tf := te.NewTransform("p-1", Patch{Opacity: f(0.4)})
	require.NoError(t, tf.Execute(ctx))

	// An interleaved command changes rotation. The opacity undo leaves the
	// newer rotation in place: the most recently captured snapshot wins.
	other := te.NewTransform("p-1", Patch{Rotation: f(90)})
	require.NoError(t, other.Execute(ctx))

	require.NoError(t, tf.Undo(ctx))
	item, _ := te.Project.Item("p-1")
	assert.Equal(t, 0.9, item.Transform.Opacity)
	assert.Equal(t, 90.0, item.Transform.Rotation)
}

func TestTransform_AudioFields(t *testing.T) {
	te := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, te.NewAdd(videoSnap("p-1")).Execute(ctx))

	tf := te.NewTransform("p-1", Patch{Volume: f(0.2), Muted: b(true), GainDB: f(-12)})
	require.NoError(t, tf.Execute(ctx))

	item, _ := te.Project.Item("p-1")
	require.NotNil(t, item.Audio)
	assert.Equal(t, 0.2, item.Audio.Volume)
	assert.True(t, item.Audio.Muted)
	assert.Equal(t, -12.0, item.Audio.GainDB)

	node, _ := te.comp.AttachedNode("p-1")
	assert.True(t, node.Audio.Muted)
	assert.Equal(t, -12.0, node.GainDB)

	require.NoError(t, tf.Undo(ctx))
	item, _ = te.Project.Item("p-1")
	assert.Equal(t, 0.8, item.Audio.Volume)
	assert.False(t, item.Audio.Muted)
	assert.Equal(t, -3.0, item.Audio.GainDB)
}

func TestTransform_Duration(t *testing.T) {
	te := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, te.NewAdd(videoSnap("p-1")).Execute(ctx))

	tf := te.NewTransform("p-1", Patch{DurationFrames: i64(300)})
	require.NoError(t, tf.Execute(ctx))

	item, _ := te.Project.Item("p-1")
	assert.Equal(t, int64(300), item.Span.Duration())

	require.NoError(t, tf.Undo(ctx))
	item, _ = te.Project.Item("p-1")
	assert.Equal(t, int64(150), item.Span.Duration())
}

func TestTransform_InvalidDurationRejected(t *testing.T) {
	te := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, te.NewAdd(videoSnap("p-1")).Execute(ctx))

	tf := te.NewTransform("p-1", Patch{Opacity: f(0.1), DurationFrames: i64(0)})
	err := tf.Execute(ctx)
	assert.True(t, IsInvalidTimeRange(err))

	item, _ := te.Project.Item("p-1")
	assert.Equal(t, 0.9, item.Transform.Opacity, "rejected before any state change")
}

func TestTransform_MissingTargetIsNoOp(t *testing.T) {
	te := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, te.NewAdd(videoSnap("p-1")).Execute(ctx))
	tf := te.NewTransform("p-1", Patch{Opacity: f(0.5)})

	node, _ := te.comp.Attached("p-1")
	require.NoError(t, te.Comp.Detach(ctx, node))
	te.Project.RemoveItem("p-1")

	require.NoError(t, tf.Execute(ctx))
	assert.Nil(t, te.NewTransform("ghost", Patch{}))
}
