package edit

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/reelkit/reelkit/internal/comp"
	"github.com/reelkit/reelkit/internal/media"
	"github.com/reelkit/reelkit/internal/project"
	"github.com/reelkit/reelkit/internal/span"
)

// testEnv is the fixture every command test runs against: an empty
// project with two tracks, a ready video source and a ready image source,
// an in-process compositor, and deterministic ids.
type testEnv struct {
	*Env
	comp *comp.Memory
	now  time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	p := project.New(project.DefaultConfig)
	require.NoError(t, p.AddTrack(project.Track{ID: "t-1", Name: "Video 1", Visible: true}))
	require.NoError(t, p.AddTrack(project.Track{ID: "t-2", Name: "Video 2", Visible: true}))

	lib := media.NewLibrary()
	require.NoError(t, lib.Add(media.Reference{ID: "m-video", Kind: media.KindVideo, DisplayName: "intro.mp4", DurationFrames: 600}))
	require.NoError(t, lib.Add(media.Reference{ID: "m-image", Kind: media.KindImage, DisplayName: "logo.png"}))
	require.NoError(t, lib.Add(media.Reference{ID: "m-pending", Kind: media.KindVideo, DisplayName: "slow.mp4", DurationFrames: 900}))
	lib.MarkReady("m-video")
	lib.MarkReady("m-image")

	c := comp.NewMemory()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	te := &testEnv{
		Env:  NewEnv(p, lib, c, logger),
		comp: c,
		now:  time.Unix(1700000000, 0),
	}
	te.IDs = NewSequenceGenerator("id")
	te.Now = func() time.Time { return te.now }
	return te
}

// advance moves the fixture clock forward.
func (te *testEnv) advance(d time.Duration) { te.now = te.now.Add(d) }

// videoSnap is a standard 2x-rate video placement: 300 clip frames over
// 150 timeline frames.
func videoSnap(id string) project.Placement {
	return project.Placement{
		ID:      id,
		MediaID: "m-video",
		TrackID: "t-1",
		Kind:    media.KindVideo,
		Span:    span.Span{ClipStart: 0, ClipEnd: 300, TimelineStart: 0, TimelineEnd: 150},
		Transform: project.Transform{
			X: 10, Y: -20, Width: 640, Height: 360, Rotation: 15, Opacity: 0.9, ZIndex: 2,
		},
		Audio: &project.AudioState{Volume: 0.8, Muted: false, GainDB: -3},
		Name:  "intro",
	}
}

// newAudioRef is a ready-to-register audio reference.
func newAudioRef() media.Reference {
	return media.Reference{ID: "m-audio", Kind: media.KindAudio, DisplayName: "voiceover.wav", DurationFrames: 600}
}

// imageSnap is a still placement with sentinel clip bounds.
func imageSnap(id string) project.Placement {
	return project.Placement{
		ID:        id,
		MediaID:   "m-image",
		TrackID:   "t-2",
		Kind:      media.KindImage,
		Span:      span.Still(30, 120),
		Transform: project.Transform{Width: 200, Height: 100, Opacity: 1},
		Name:      "logo",
	}
}
