package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/reelkit/reelkit/internal/project"
)

// PlacementFilter narrows a placement query. Zero-valued fields are not
// applied. Frame bounds select placements whose timeline interval overlaps
// [FromFrame, ToFrame).
type PlacementFilter struct {
	TrackID   string
	MediaID   string
	Kind      string
	FromFrame int64
	ToFrame   int64
}

// QueryPlacements returns placements matching the filter, ordered by
// timeline start with id as tiebreaker so results are deterministic.
// All filter values are parameterized, never interpolated.
func (s *Store) QueryPlacements(ctx context.Context, f PlacementFilter) ([]project.Placement, error) {
	where, params := compileFilter(f)

	query := `
		SELECT id, media_id, track_id, kind,
		       clip_start, clip_end, timeline_start, timeline_end,
		       x, y, width, height, rotation, opacity, z_index,
		       audio_json, animation_json, name
		FROM placements` + where + `
		ORDER BY timeline_start, id`

	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("query placements: %w", err)
	}
	defer rows.Close()

	var out []project.Placement
	for rows.Next() {
		p, err := scanPlacement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// compileFilter builds the WHERE clause and parameter list for a filter.
func compileFilter(f PlacementFilter) (string, []any) {
	var conds []string
	var params []any

	if f.TrackID != "" {
		conds = append(conds, "track_id = ?")
		params = append(params, f.TrackID)
	}
	if f.MediaID != "" {
		conds = append(conds, "media_id = ?")
		params = append(params, f.MediaID)
	}
	if f.Kind != "" {
		conds = append(conds, "kind = ?")
		params = append(params, f.Kind)
	}
	if f.ToFrame > f.FromFrame {
		// Overlap test for half-open intervals.
		conds = append(conds, "timeline_start < ? AND timeline_end > ?")
		params = append(params, f.ToFrame, f.FromFrame)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), params
}
