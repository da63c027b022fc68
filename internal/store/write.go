package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/reelkit/reelkit/internal/media"
	"github.com/reelkit/reelkit/internal/project"
)

// Save replaces the database contents with the given project and library.
// The write is transactional: a crash mid-save leaves the previous
// contents intact.
func (s *Store) Save(ctx context.Context, proj *project.Project, lib *media.Library) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"placements", "tracks", "media_refs", "project_meta"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	if err := writeMeta(ctx, tx, proj); err != nil {
		return err
	}
	for _, ref := range lib.List() {
		if err := writeMediaRef(ctx, tx, ref); err != nil {
			return err
		}
	}
	for _, track := range proj.Tracks() {
		if err := writeTrack(ctx, tx, track); err != nil {
			return err
		}
	}
	for _, item := range proj.Items() {
		if err := writePlacement(ctx, tx, item); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

func writeMeta(ctx context.Context, tx *sql.Tx, proj *project.Project) error {
	meta := map[string]string{
		"frame_rate":    strconv.Itoa(proj.FrameRate),
		"canvas_width":  strconv.FormatFloat(proj.CanvasWidth, 'f', -1, 64),
		"canvas_height": strconv.FormatFloat(proj.CanvasHeight, 'f', -1, 64),
	}
	for key, value := range meta {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO project_meta (key, value) VALUES (?, ?)`, key, value); err != nil {
			return fmt.Errorf("write meta %s: %w", key, err)
		}
	}
	return nil
}

func writeMediaRef(ctx context.Context, tx *sql.Tx, ref media.Reference) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO media_refs (id, kind, uri, display_name, duration_frames)
		VALUES (?, ?, ?, ?, ?)
	`, ref.ID, string(ref.Kind), ref.URI, ref.DisplayName, ref.DurationFrames)
	if err != nil {
		return fmt.Errorf("write media ref %s: %w", ref.ID, err)
	}
	return nil
}

func writeTrack(ctx context.Context, tx *sql.Tx, t project.Track) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO tracks (id, name, visible, muted)
		VALUES (?, ?, ?, ?)
	`, t.ID, t.Name, boolToInt(t.Visible), boolToInt(t.Muted))
	if err != nil {
		return fmt.Errorf("write track %s: %w", t.ID, err)
	}
	return nil
}

func writePlacement(ctx context.Context, tx *sql.Tx, p project.Placement) error {
	audioJSON, err := marshalOptional(p.Audio)
	if err != nil {
		return fmt.Errorf("write placement %s: %w", p.ID, err)
	}
	animJSON, err := marshalOptional(p.Animation)
	if err != nil {
		return fmt.Errorf("write placement %s: %w", p.ID, err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO placements
		(id, media_id, track_id, kind,
		 clip_start, clip_end, timeline_start, timeline_end,
		 x, y, width, height, rotation, opacity, z_index,
		 audio_json, animation_json, name)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		p.ID, p.MediaID, p.TrackID, string(p.Kind),
		p.Span.ClipStart, p.Span.ClipEnd, p.Span.TimelineStart, p.Span.TimelineEnd,
		p.Transform.X, p.Transform.Y, p.Transform.Width, p.Transform.Height,
		p.Transform.Rotation, p.Transform.Opacity, p.Transform.ZIndex,
		audioJSON, animJSON, p.Name,
	)
	if err != nil {
		return fmt.Errorf("write placement %s: %w", p.ID, err)
	}
	return nil
}

// marshalOptional serializes a nullable struct pointer to JSON, mapping a
// nil pointer to SQL NULL.
func marshalOptional(v any) (sql.NullString, error) {
	switch x := v.(type) {
	case *project.AudioState:
		if x == nil {
			return sql.NullString{}, nil
		}
	case *project.Animation:
		if x == nil {
			return sql.NullString{}, nil
		}
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(raw), Valid: true}, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
