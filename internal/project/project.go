package project

import (
	"fmt"
	"sort"

	"github.com/reelkit/reelkit/internal/media"
	"github.com/reelkit/reelkit/internal/span"
)

// Project is the canonical placement store: the single source of truth for
// what occupies the timeline. It is mutated only by the currently-executing
// edit command; the history manager serializes those, so Project itself is
// deliberately not locked.
//
// All accessors return copies. Nothing hands out an alias into the store.
type Project struct {
	FrameRate    int
	CanvasWidth  float64
	CanvasHeight float64

	placements map[string]Placement
	tracks     map[string]Track
	selection  map[string]bool
}

// Config carries the project-level constants every reconstruction needs.
type Config struct {
	FrameRate    int     `yaml:"frame_rate"`
	CanvasWidth  float64 `yaml:"canvas_width"`
	CanvasHeight float64 `yaml:"canvas_height"`
}

// DefaultConfig is a 30fps 1080p project.
var DefaultConfig = Config{FrameRate: 30, CanvasWidth: 1920, CanvasHeight: 1080}

// New creates an empty project.
func New(cfg Config) *Project {
	if cfg.FrameRate <= 0 {
		cfg.FrameRate = DefaultConfig.FrameRate
	}
	if cfg.CanvasWidth <= 0 || cfg.CanvasHeight <= 0 {
		cfg.CanvasWidth = DefaultConfig.CanvasWidth
		cfg.CanvasHeight = DefaultConfig.CanvasHeight
	}
	return &Project{
		FrameRate:    cfg.FrameRate,
		CanvasWidth:  cfg.CanvasWidth,
		CanvasHeight: cfg.CanvasHeight,
		placements:   make(map[string]Placement),
		tracks:       make(map[string]Track),
		selection:    make(map[string]bool),
	}
}

// Item returns a copy of the placement with the given id.
func (p *Project) Item(id string) (Placement, bool) {
	item, ok := p.placements[id]
	if !ok {
		return Placement{}, false
	}
	return item.Clone(), true
}

// AddItem inserts a placement. The track must exist and the span must be
// valid; the placement's display name is NFC-normalized on the way in.
func (p *Project) AddItem(item Placement) error {
	if item.ID == "" {
		return fmt.Errorf("project: placement id is required")
	}
	if _, exists := p.placements[item.ID]; exists {
		return fmt.Errorf("project: duplicate placement id %s", item.ID)
	}
	if _, ok := p.tracks[item.TrackID]; !ok {
		return fmt.Errorf("project: unknown track %s", item.TrackID)
	}
	if !item.Span.Valid() {
		return fmt.Errorf("project: invalid span for placement %s", item.ID)
	}
	item.Name = media.NormalizeName(item.Name)
	p.placements[item.ID] = item.Clone()
	return nil
}

// RemoveItem deletes a placement and drops it from the selection.
// Returns false if the id is unknown.
func (p *Project) RemoveItem(id string) bool {
	if _, ok := p.placements[id]; !ok {
		return false
	}
	delete(p.placements, id)
	delete(p.selection, id)
	return true
}

// UpdatePosition moves a placement to a new span and track.
// The span is validated before anything is written.
func (p *Project) UpdatePosition(id string, s span.Span, trackID string) error {
	item, ok := p.placements[id]
	if !ok {
		return fmt.Errorf("project: placement %s not found", id)
	}
	if !s.Valid() {
		return fmt.Errorf("project: invalid span for placement %s", id)
	}
	if _, ok := p.tracks[trackID]; !ok {
		return fmt.Errorf("project: unknown track %s", trackID)
	}
	item.Span = s
	item.TrackID = trackID
	p.placements[id] = item
	return nil
}

// UpdateTransform replaces a placement's transform and audio state.
func (p *Project) UpdateTransform(id string, tr Transform, audio *AudioState) error {
	item, ok := p.placements[id]
	if !ok {
		return fmt.Errorf("project: placement %s not found", id)
	}
	item.Transform = tr
	if audio != nil {
		a := *audio
		item.Audio = &a
	}
	p.placements[id] = item
	return nil
}

// Replace overwrites a placement wholesale. Used by snapshot restore.
func (p *Project) Replace(item Placement) error {
	if _, ok := p.placements[item.ID]; !ok {
		return fmt.Errorf("project: placement %s not found", item.ID)
	}
	if !item.Span.Valid() {
		return fmt.Errorf("project: invalid span for placement %s", item.ID)
	}
	p.placements[item.ID] = item.Clone()
	return nil
}

// Items returns copies of all placements ordered by timeline start, then id.
func (p *Project) Items() []Placement {
	items := make([]Placement, 0, len(p.placements))
	for _, item := range p.placements {
		items = append(items, item.Clone())
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Span.TimelineStart != items[j].Span.TimelineStart {
			return items[i].Span.TimelineStart < items[j].Span.TimelineStart
		}
		return items[i].ID < items[j].ID
	})
	return items
}

// Len returns the number of placements.
func (p *Project) Len() int { return len(p.placements) }

// Track returns a copy of the track with the given id.
func (p *Project) Track(id string) (Track, bool) {
	t, ok := p.tracks[id]
	return t, ok
}

// AddTrack inserts a track. New tracks start visible and unmuted unless
// stated otherwise.
func (p *Project) AddTrack(t Track) error {
	if t.ID == "" {
		return fmt.Errorf("project: track id is required")
	}
	if _, exists := p.tracks[t.ID]; exists {
		return fmt.Errorf("project: duplicate track id %s", t.ID)
	}
	t.Name = media.NormalizeName(t.Name)
	p.tracks[t.ID] = t
	return nil
}

// RenameTrack sets a track's display name.
func (p *Project) RenameTrack(id, name string) error {
	t, ok := p.tracks[id]
	if !ok {
		return fmt.Errorf("project: track %s not found", id)
	}
	t.Name = media.NormalizeName(name)
	p.tracks[id] = t
	return nil
}

// ToggleVisibility flips a track's visibility and returns the new value.
func (p *Project) ToggleVisibility(id string) (bool, error) {
	t, ok := p.tracks[id]
	if !ok {
		return false, fmt.Errorf("project: track %s not found", id)
	}
	t.Visible = !t.Visible
	p.tracks[id] = t
	return t.Visible, nil
}

// ToggleMute flips a track's mute state and returns the new value.
func (p *Project) ToggleMute(id string) (bool, error) {
	t, ok := p.tracks[id]
	if !ok {
		return false, fmt.Errorf("project: track %s not found", id)
	}
	t.Muted = !t.Muted
	p.tracks[id] = t
	return t.Muted, nil
}

// Tracks returns copies of all tracks ordered by id.
func (p *Project) Tracks() []Track {
	tracks := make([]Track, 0, len(p.tracks))
	for _, t := range p.tracks {
		tracks = append(tracks, t)
	}
	sort.Slice(tracks, func(i, j int) bool { return tracks[i].ID < tracks[j].ID })
	return tracks
}

// Selection returns the selected placement ids, sorted.
func (p *Project) Selection() []string {
	ids := make([]string, 0, len(p.selection))
	for id := range p.selection {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// SetSelection replaces the selection set. Unknown ids are dropped rather
// than rejected: a selection may legitimately outlive the items it named.
func (p *Project) SetSelection(ids []string) {
	p.selection = make(map[string]bool, len(ids))
	for _, id := range ids {
		if _, ok := p.placements[id]; ok {
			p.selection[id] = true
		}
	}
}

// IsSelected reports whether a placement is in the selection set.
func (p *Project) IsSelected(id string) bool { return p.selection[id] }
