package edit

import "context"

// The commands in this file are simple mutators: they touch only the
// canonical track state and never reconstruct a render node.

// RenameTrack changes a track's display name.
type RenameTrack struct {
	meta
	env     *Env
	trackID string
	oldName string
	newName string
}

// NewRenameTrack creates a rename command. Returns nil when the track does
// not exist.
func (e *Env) NewRenameTrack(trackID, name string) *RenameTrack {
	t, ok := e.Project.Track(trackID)
	if !ok {
		return nil
	}
	return &RenameTrack{
		meta:    e.newMeta("Rename track " + t.Name),
		env:     e,
		trackID: trackID,
		oldName: t.Name,
		newName: name,
	}
}

// Execute applies the new name.
func (r *RenameTrack) Execute(_ context.Context) error {
	return r.applyName(r.newName)
}

// Undo restores the old name.
func (r *RenameTrack) Undo(_ context.Context) error {
	return r.applyName(r.oldName)
}

func (r *RenameTrack) applyName(name string) error {
	if _, ok := r.env.Project.Track(r.trackID); !ok {
		r.env.Log.Warn("rename: track gone, skipping", "track", r.trackID)
		return nil
	}
	return r.env.Project.RenameTrack(r.trackID, name)
}

// ToggleTrackVisibility flips a track's visibility. Toggling is its own
// inverse, so execute and undo share one implementation.
type ToggleTrackVisibility struct {
	meta
	env     *Env
	trackID string
}

// NewToggleTrackVisibility creates a visibility toggle. Returns nil when
// the track does not exist.
func (e *Env) NewToggleTrackVisibility(trackID string) *ToggleTrackVisibility {
	t, ok := e.Project.Track(trackID)
	if !ok {
		return nil
	}
	return &ToggleTrackVisibility{
		meta:    e.newMeta("Toggle visibility of " + t.Name),
		env:     e,
		trackID: trackID,
	}
}

// Execute flips visibility.
func (c *ToggleTrackVisibility) Execute(_ context.Context) error { return c.flip() }

// Undo flips it back.
func (c *ToggleTrackVisibility) Undo(_ context.Context) error { return c.flip() }

func (c *ToggleTrackVisibility) flip() error {
	if _, ok := c.env.Project.Track(c.trackID); !ok {
		c.env.Log.Warn("toggle visibility: track gone, skipping", "track", c.trackID)
		return nil
	}
	_, err := c.env.Project.ToggleVisibility(c.trackID)
	return err
}

// ToggleTrackMute flips a track's mute state.
type ToggleTrackMute struct {
	meta
	env     *Env
	trackID string
}

// NewToggleTrackMute creates a mute toggle. Returns nil when the track
// does not exist.
func (e *Env) NewToggleTrackMute(trackID string) *ToggleTrackMute {
	t, ok := e.Project.Track(trackID)
	if !ok {
		return nil
	}
	return &ToggleTrackMute{
		meta:    e.newMeta("Toggle mute of " + t.Name),
		env:     e,
		trackID: trackID,
	}
}

// Execute flips mute.
func (c *ToggleTrackMute) Execute(_ context.Context) error { return c.flip() }

// Undo flips it back.
func (c *ToggleTrackMute) Undo(_ context.Context) error { return c.flip() }

func (c *ToggleTrackMute) flip() error {
	if _, ok := c.env.Project.Track(c.trackID); !ok {
		c.env.Log.Warn("toggle mute: track gone, skipping", "track", c.trackID)
		return nil
	}
	_, err := c.env.Project.ToggleMute(c.trackID)
	return err
}
