package edit

import (
	"context"
	"log/slog"

	"github.com/reelkit/reelkit/internal/comp"
	"github.com/reelkit/reelkit/internal/media"
	"github.com/reelkit/reelkit/internal/project"
	"github.com/reelkit/reelkit/internal/span"
)

// Thumbnailer requests a preview thumbnail for a placement. Requests are
// best-effort: the rebuilder fires them without awaiting the result, and a
// failed or absent thumbnail never fails a reconstruction.
type Thumbnailer interface {
	RequestThumbnail(placementID, mediaID string)
}

// Rebuilder turns a placement snapshot plus a ready media reference into a
// fresh, detached render node.
//
// This is the replay half of every reconstruction command: execute and
// undo call Rebuild instead of reusing any previously created node, so the
// node's observable state is a pure function of the snapshot.
type Rebuilder struct {
	proj   *project.Project
	lib    *media.Library
	comp   comp.Compositor
	thumbs Thumbnailer
	log    *slog.Logger
}

// NewRebuilder creates a Rebuilder over the given collaborators.
func NewRebuilder(p *project.Project, lib *media.Library, c comp.Compositor, logger *slog.Logger) *Rebuilder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Rebuilder{proj: p, lib: lib, comp: c, log: logger}
}

// SetThumbnailer installs the optional preview-asset hook.
func (r *Rebuilder) SetThumbnailer(t Thumbnailer) { r.thumbs = t }

// Rebuild constructs a new render node whose geometry, time range, z-order,
// opacity, and audio state exactly match the snapshot.
//
// Fails with CodeSourceMissing when the media reference no longer resolves
// and CodeSourceNotReady when it has not finished decoding. The returned
// node is NOT attached; sequencing "rebuild, then attach" (or "detach,
// then discard") is the calling command's responsibility.
func (r *Rebuilder) Rebuild(ctx context.Context, snap project.Placement) (comp.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ref, ok := r.lib.Resolve(snap.MediaID)
	if !ok {
		return nil, NewSourceMissing(snap.MediaID)
	}
	if !r.lib.IsReady(snap.MediaID) {
		return nil, NewSourceNotReady(snap.MediaID)
	}
	if !snap.Span.Valid() {
		return nil, NewInvalidTimeRange(snap.ID, "snapshot span fails validation")
	}

	node, err := r.comp.NewNode(snap.ID, string(ref.Kind))
	if err != nil {
		return nil, NewAttachmentFailed(snap.ID, err)
	}

	r.applyTimeRange(node, ref.Kind, snap.Span)
	r.applyTransform(node, snap.Transform)
	r.applyAudio(node, snap.Audio)

	// Best-effort preview asset. Fire-and-forget: never awaited, never
	// allowed to fail the reconstruction.
	if r.thumbs != nil && ref.Kind.Visual() {
		go r.requestThumbnail(snap.ID, snap.MediaID)
	}

	return node, nil
}

// applyTimeRange pushes the frame-based span across the boundary in the
// compositor's native clock. Video and audio set both the source and
// timeline intervals; still kinds (image, text) set only the timeline
// interval - their source is conceptually infinite.
func (r *Rebuilder) applyTimeRange(node comp.Node, kind media.Kind, s span.Span) {
	fps := r.proj.FrameRate
	node.SetTimelineRange(span.Micros(s.TimelineStart, fps), span.Micros(s.TimelineEnd, fps))
	if kind.HasClip() && s.HasClip() {
		node.SetSourceRange(span.Micros(s.ClipStart, fps), span.Micros(s.ClipEnd, fps))
	}
}

// applyTransform converts the snapshot's canvas-centered geometry to the
// compositor's top-left-origin system and applies the visual state.
func (r *Rebuilder) applyTransform(node comp.Node, t project.Transform) {
	node.SetGeometry(comp.ToNative(t.Centered(), r.proj.CanvasWidth, r.proj.CanvasHeight))
	node.SetOpacity(t.Opacity)
	node.SetZOrder(t.ZIndex)
}

// applyAudio applies the audible state, when the snapshot carries one.
func (r *Rebuilder) applyAudio(node comp.Node, a *project.AudioState) {
	if a == nil {
		return
	}
	node.SetAudioState(comp.AudioState{Volume: a.Volume, Muted: a.Muted})
	node.SetGain(a.GainDB)
}

func (r *Rebuilder) requestThumbnail(placementID, mediaID string) {
	defer func() {
		if p := recover(); p != nil {
			r.log.Warn("thumbnail request panicked", "placement", placementID, "panic", p)
		}
	}()
	r.thumbs.RequestThumbnail(placementID, mediaID)
}
