// Package media defines immutable references to decoded source media and
// the library that owns them.
//
// A Reference describes one decoded source (video file, image, audio file,
// text block). References are content-addressed and read-only: edit
// commands never mutate them, they only resolve ids against the Library at
// replay time. Decoding itself is owned by the external engine; the library
// only tracks whether a source has finished decoding.
package media

import (
	"golang.org/x/text/unicode/norm"
)

// Kind identifies the media type of a source.
type Kind string

const (
	KindVideo Kind = "video"
	KindImage Kind = "image"
	KindAudio Kind = "audio"
	KindText  Kind = "text"
)

// Valid reports whether k is a known media kind.
func (k Kind) Valid() bool {
	switch k {
	case KindVideo, KindImage, KindAudio, KindText:
		return true
	}
	return false
}

// HasClip reports whether sources of this kind have an internal timeline.
// Images and text are conceptually still: only their timeline placement
// is meaningful.
func (k Kind) HasClip() bool {
	return k == KindVideo || k == KindAudio
}

// Visual reports whether sources of this kind produce pixels, and so are
// eligible for preview thumbnails.
func (k Kind) Visual() bool {
	return k == KindVideo || k == KindImage || k == KindText
}

// Reference is an immutable description of one decoded source.
// The decode handle itself lives in the external engine; this subsystem
// only carries the identity and static properties.
type Reference struct {
	ID             string `json:"id" yaml:"id"`
	Kind           Kind   `json:"kind" yaml:"kind"`
	URI            string `json:"uri" yaml:"uri"`
	DisplayName    string `json:"display_name" yaml:"display_name"`
	DurationFrames int64  `json:"duration_frames" yaml:"duration_frames"`
}

// NormalizeName returns the NFC-normalized form of a display name.
// Names arrive from filesystems and user input with mixed Unicode
// composition; normalizing once at the boundary keeps id lookups and
// history summaries byte-comparable.
func NormalizeName(name string) string {
	return norm.NFC.String(name)
}
