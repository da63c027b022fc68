package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/reelkit/reelkit/internal/media"
	"github.com/reelkit/reelkit/internal/project"
	"github.com/reelkit/reelkit/internal/span"
)

// Load rebuilds the project and media library from the database.
// Loaded references are marked ready: persistence implies the source was
// decodable when it was saved, and the caller re-verifies via the library
// before any reconstruction anyway.
func (s *Store) Load(ctx context.Context) (*project.Project, *media.Library, error) {
	cfg, err := s.readMeta(ctx)
	if err != nil {
		return nil, nil, err
	}
	proj := project.New(cfg)
	lib := media.NewLibrary()

	if err := s.readMediaRefs(ctx, lib); err != nil {
		return nil, nil, err
	}
	if err := s.readTracks(ctx, proj); err != nil {
		return nil, nil, err
	}
	if err := s.readPlacements(ctx, proj); err != nil {
		return nil, nil, err
	}
	return proj, lib, nil
}

func (s *Store) readMeta(ctx context.Context) (project.Config, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM project_meta`)
	if err != nil {
		return project.Config{}, fmt.Errorf("read meta: %w", err)
	}
	defer rows.Close()

	cfg := project.DefaultConfig
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return project.Config{}, fmt.Errorf("scan meta: %w", err)
		}
		switch key {
		case "frame_rate":
			if n, err := strconv.Atoi(value); err == nil {
				cfg.FrameRate = n
			}
		case "canvas_width":
			if f, err := strconv.ParseFloat(value, 64); err == nil {
				cfg.CanvasWidth = f
			}
		case "canvas_height":
			if f, err := strconv.ParseFloat(value, 64); err == nil {
				cfg.CanvasHeight = f
			}
		}
	}
	return cfg, rows.Err()
}

func (s *Store) readMediaRefs(ctx context.Context, lib *media.Library) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, uri, display_name, duration_frames
		FROM media_refs ORDER BY id
	`)
	if err != nil {
		return fmt.Errorf("read media refs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ref media.Reference
		var kind string
		if err := rows.Scan(&ref.ID, &kind, &ref.URI, &ref.DisplayName, &ref.DurationFrames); err != nil {
			return fmt.Errorf("scan media ref: %w", err)
		}
		ref.Kind = media.Kind(kind)
		if err := lib.Add(ref); err != nil {
			return fmt.Errorf("load media ref: %w", err)
		}
		lib.MarkReady(ref.ID)
	}
	return rows.Err()
}

func (s *Store) readTracks(ctx context.Context, proj *project.Project) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, visible, muted FROM tracks ORDER BY id
	`)
	if err != nil {
		return fmt.Errorf("read tracks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t project.Track
		var visible, muted int
		if err := rows.Scan(&t.ID, &t.Name, &visible, &muted); err != nil {
			return fmt.Errorf("scan track: %w", err)
		}
		t.Visible = visible != 0
		t.Muted = muted != 0
		if err := proj.AddTrack(t); err != nil {
			return fmt.Errorf("load track: %w", err)
		}
	}
	return rows.Err()
}

func (s *Store) readPlacements(ctx context.Context, proj *project.Project) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, media_id, track_id, kind,
		       clip_start, clip_end, timeline_start, timeline_end,
		       x, y, width, height, rotation, opacity, z_index,
		       audio_json, animation_json, name
		FROM placements ORDER BY timeline_start, id
	`)
	if err != nil {
		return fmt.Errorf("read placements: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanPlacement(rows)
		if err != nil {
			return err
		}
		if err := proj.AddItem(p); err != nil {
			return fmt.Errorf("load placement: %w", err)
		}
	}
	return rows.Err()
}

// scanPlacement decodes one placement row, including the nullable JSON
// columns for audio and animation state.
func scanPlacement(rows *sql.Rows) (project.Placement, error) {
	var p project.Placement
	var kind string
	var sp span.Span
	var audioJSON, animJSON sql.NullString
	if err := rows.Scan(
		&p.ID, &p.MediaID, &p.TrackID, &kind,
		&sp.ClipStart, &sp.ClipEnd, &sp.TimelineStart, &sp.TimelineEnd,
		&p.Transform.X, &p.Transform.Y, &p.Transform.Width, &p.Transform.Height,
		&p.Transform.Rotation, &p.Transform.Opacity, &p.Transform.ZIndex,
		&audioJSON, &animJSON, &p.Name,
	); err != nil {
		return project.Placement{}, fmt.Errorf("scan placement: %w", err)
	}
	p.Kind = media.Kind(kind)
	p.Span = sp

	if audioJSON.Valid {
		var a project.AudioState
		if err := json.Unmarshal([]byte(audioJSON.String), &a); err != nil {
			return project.Placement{}, fmt.Errorf("placement %s audio: %w", p.ID, err)
		}
		p.Audio = &a
	}
	if animJSON.Valid {
		var anim project.Animation
		if err := json.Unmarshal([]byte(animJSON.String), &anim); err != nil {
			return project.Placement{}, fmt.Errorf("placement %s animation: %w", p.ID, err)
		}
		p.Animation = &anim
	}
	return p, nil
}
