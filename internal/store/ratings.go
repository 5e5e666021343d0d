package store

import (
	"context"
	"database/sql"
	"fmt"
)

// SetTrackRating persists a user rating for trackID (§6
// `PUT /api/track/:track_id/rating/:n`). Ratings are user state, not
// derived from file tags, so they live outside the rebuilt-from-files
// model and survive rescans on their own.
func (s *Store) SetTrackRating(ctx context.Context, trackID uint64, rating int8) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ratings (track_id, rating) VALUES (?, ?)
		ON CONFLICT(track_id) DO UPDATE SET rating = excluded.rating
	`, trackID, rating)
	if err != nil {
		return fmt.Errorf("store: set_track_rating %d: %w", trackID, err)
	}
	return nil
}

// GetTrackRating returns trackID's rating, or 0 (neutral) if none was ever
// set.
func (s *Store) GetTrackRating(ctx context.Context, trackID uint64) (int8, error) {
	var rating int8
	err := s.db.QueryRowContext(ctx, `SELECT rating FROM ratings WHERE track_id = ?`, trackID).Scan(&rating)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("store: get_track_rating %d: %w", trackID, err)
	}
	return rating, nil
}

// ListRatings returns every persisted rating, keyed by track ID. The
// scanner applies these onto a freshly built model so ratings survive
// rescans (§3.2).
func (s *Store) ListRatings(ctx context.Context) (map[uint64]int8, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT track_id, rating FROM ratings`)
	if err != nil {
		return nil, fmt.Errorf("store: list_ratings: %w", err)
	}
	defer rows.Close()

	out := make(map[uint64]int8)
	for rows.Next() {
		var trackID uint64
		var rating int8
		if err := rows.Scan(&trackID, &rating); err != nil {
			return nil, fmt.Errorf("store: list_ratings: %w", err)
		}
		out[trackID] = rating
	}
	return out, rows.Err()
}
