package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLibrary_AddResolve(t *testing.T) {
	lib := NewLibrary()

	err := lib.Add(Reference{ID: "clip-1", Kind: KindVideo, URI: "file:///a.mp4", DisplayName: "A", DurationFrames: 300})
	require.NoError(t, err)

	ref, ok := lib.Resolve("clip-1")
	require.True(t, ok)
	assert.Equal(t, KindVideo, ref.Kind)
	assert.Equal(t, int64(300), ref.DurationFrames)

	_, ok = lib.Resolve("missing")
	assert.False(t, ok)
}

func TestLibrary_AddValidation(t *testing.T) {
	lib := NewLibrary()

	assert.Error(t, lib.Add(Reference{Kind: KindVideo}), "missing id")
	assert.Error(t, lib.Add(Reference{ID: "x", Kind: Kind("gif")}), "unknown kind")

	require.NoError(t, lib.Add(Reference{ID: "x", Kind: KindImage}))
	assert.Error(t, lib.Add(Reference{ID: "x", Kind: KindImage}), "duplicate id")
}

func TestLibrary_Readiness(t *testing.T) {
	lib := NewLibrary()
	require.NoError(t, lib.Add(Reference{ID: "clip-1", Kind: KindAudio}))

	assert.False(t, lib.IsReady("clip-1"), "fresh references are not ready")
	assert.True(t, lib.MarkReady("clip-1"))
	assert.True(t, lib.IsReady("clip-1"))

	assert.False(t, lib.MarkReady("missing"), "unknown id cannot become ready")
	assert.False(t, lib.IsReady("missing"))
}

func TestLibrary_RemoveClearsReadiness(t *testing.T) {
	lib := NewLibrary()
	require.NoError(t, lib.Add(Reference{ID: "clip-1", Kind: KindVideo}))
	lib.MarkReady("clip-1")

	lib.Remove("clip-1")
	_, ok := lib.Resolve("clip-1")
	assert.False(t, ok)
	assert.False(t, lib.IsReady("clip-1"))

	// Removing again is a no-op.
	lib.Remove("clip-1")
}

func TestLibrary_ListSorted(t *testing.T) {
	lib := NewLibrary()
	require.NoError(t, lib.Add(Reference{ID: "b", Kind: KindImage, DisplayName: "Beta"}))
	require.NoError(t, lib.Add(Reference{ID: "a", Kind: KindVideo, DisplayName: "Alpha"}))
	require.NoError(t, lib.Add(Reference{ID: "c", Kind: KindText, DisplayName: "Alpha"}))

	list := lib.List()
	require.Len(t, list, 3)
	assert.Equal(t, "a", list[0].ID)
	assert.Equal(t, "c", list[1].ID, "ties break on id")
	assert.Equal(t, "b", list[2].ID)
}

func TestNormalizeName(t *testing.T) {
	// U+0065 U+0301 (decomposed) normalizes to U+00E9 (composed).
	decomposed := "cafe\u0301"
	composed := "caf\u00e9"
	assert.Equal(t, composed, NormalizeName(decomposed))

	lib := NewLibrary()
	require.NoError(t, lib.Add(Reference{ID: "n", Kind: KindText, DisplayName: decomposed}))
	ref, _ := lib.Resolve("n")
	assert.Equal(t, composed, ref.DisplayName)
}

func TestKind_Properties(t *testing.T) {
	assert.True(t, KindVideo.HasClip())
	assert.True(t, KindAudio.HasClip())
	assert.False(t, KindImage.HasClip())
	assert.False(t, KindText.HasClip())

	assert.True(t, KindVideo.Visual())
	assert.False(t, KindAudio.Visual())
}
