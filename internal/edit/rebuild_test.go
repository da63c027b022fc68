package edit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelkit/reelkit/internal/comp"
)

func TestRebuilder_Video(t *testing.T) {
	te := newTestEnv(t)
	node, err := te.Rebuild.Rebuild(context.Background(), videoSnap("p-1"))
	require.NoError(t, err)

	mn := node.(*comp.MemoryNode)

	// 30 fps: frame 150 is 5s.
	assert.Equal(t, int64(0), mn.TimelineStartMicros)
	assert.Equal(t, int64(5_000_000), mn.TimelineEndMicros)
	assert.True(t, mn.HasSourceRange, "video sets a clip-relative interval")
	assert.Equal(t, int64(10_000_000), mn.SourceEndMicros)

	// Centered (10, -20) on a 1920x1080 canvas, 640x360 node.
	assert.Equal(t, comp.Geometry{X: 650, Y: 340, Width: 640, Height: 360, Angle: 15}, mn.Geometry)
	assert.Equal(t, 0.9, mn.Opacity)
	assert.Equal(t, 2, mn.ZOrder)
	assert.Equal(t, comp.AudioState{Volume: 0.8}, mn.Audio)
	assert.Equal(t, -3.0, mn.GainDB)

	assert.Equal(t, 0, te.comp.AttachedCount(), "rebuild output is not attached")
}

func TestRebuilder_StillKindsSkipSourceRange(t *testing.T) {
	te := newTestEnv(t)
	node, err := te.Rebuild.Rebuild(context.Background(), imageSnap("p-1"))
	require.NoError(t, err)

	mn := node.(*comp.MemoryNode)
	assert.False(t, mn.HasSourceRange, "still kinds have no clip interval")
	assert.Equal(t, int64(1_000_000), mn.TimelineStartMicros)
	assert.Equal(t, int64(4_000_000), mn.TimelineEndMicros)
}

func TestRebuilder_SourceMissing(t *testing.T) {
	te := newTestEnv(t)
	snap := videoSnap("p-1")
	snap.MediaID = "deleted"

	_, err := te.Rebuild.Rebuild(context.Background(), snap)
	assert.True(t, IsSourceMissing(err), "got %v", err)
}

func TestRebuilder_SourceNotReady(t *testing.T) {
	te := newTestEnv(t)
	snap := videoSnap("p-1")
	snap.MediaID = "m-pending"
	snap.Span.ClipEnd = 900

	_, err := te.Rebuild.Rebuild(context.Background(), snap)
	assert.True(t, IsSourceNotReady(err), "got %v", err)
}

func TestRebuilder_InvalidSpan(t *testing.T) {
	te := newTestEnv(t)
	snap := videoSnap("p-1")
	snap.Span.TimelineEnd = snap.Span.TimelineStart

	_, err := te.Rebuild.Rebuild(context.Background(), snap)
	assert.True(t, IsInvalidTimeRange(err), "got %v", err)
}

func TestRebuilder_NoAudioState(t *testing.T) {
	te := newTestEnv(t)
	snap := videoSnap("p-1")
	snap.Audio = nil

	node, err := te.Rebuild.Rebuild(context.Background(), snap)
	require.NoError(t, err)
	mn := node.(*comp.MemoryNode)
	assert.Equal(t, comp.AudioState{}, mn.Audio)
}

// recordingThumbnailer captures thumbnail requests; optionally panics to
// prove the rebuilder isolates the side effect.
type recordingThumbnailer struct {
	mu       sync.Mutex
	requests []string
	panics   bool
	done     chan struct{}
}

func (r *recordingThumbnailer) RequestThumbnail(placementID, mediaID string) {
	r.mu.Lock()
	r.requests = append(r.requests, placementID)
	r.mu.Unlock()
	close(r.done)
	if r.panics {
		panic("thumbnail pipeline offline")
	}
}

func TestRebuilder_ThumbnailBestEffort(t *testing.T) {
	te := newTestEnv(t)
	thumbs := &recordingThumbnailer{panics: true, done: make(chan struct{})}
	te.Rebuild.SetThumbnailer(thumbs)

	_, err := te.Rebuild.Rebuild(context.Background(), videoSnap("p-1"))
	require.NoError(t, err, "a panicking thumbnailer must not fail reconstruction")

	select {
	case <-thumbs.done:
	case <-time.After(time.Second):
		t.Fatal("thumbnail request never fired")
	}

	thumbs.mu.Lock()
	defer thumbs.mu.Unlock()
	assert.Equal(t, []string{"p-1"}, thumbs.requests)
}

func TestRebuilder_NoThumbnailForAudio(t *testing.T) {
	te := newTestEnv(t)
	require.NoError(t, te.Library.Add(newAudioRef()))
	te.Library.MarkReady("m-audio")

	thumbs := &recordingThumbnailer{done: make(chan struct{})}
	te.Rebuild.SetThumbnailer(thumbs)

	snap := videoSnap("p-1")
	snap.MediaID = "m-audio"
	snap.Kind = "audio"

	_, err := te.Rebuild.Rebuild(context.Background(), snap)
	require.NoError(t, err)

	select {
	case <-thumbs.done:
		t.Fatal("audio must not request a thumbnail")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRebuilder_ContextCancelled(t *testing.T) {
	te := newTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := te.Rebuild.Rebuild(ctx, videoSnap("p-1"))
	assert.ErrorIs(t, err, context.Canceled)
}
