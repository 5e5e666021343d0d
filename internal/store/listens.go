package store

import (
	"context"
	"fmt"
	"time"
)

// InsertListenStarted records a new playback start and returns its row id.
// Started-only rows are valid on their own and can be completed or swept
// later (§4.2).
func (s *Store) InsertListenStarted(ctx context.Context, startedAt time.Time, queueID uint64, trackID uint64, title, artist, album string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO listens (started_at, queue_id, track_id, track_title, artist_name, album_title)
		VALUES (?, ?, ?, ?, ?, ?)
	`, unixMicro(startedAt), queueID, trackID, title, artist, album)
	if err != nil {
		return 0, fmt.Errorf("store: insert_listen_started: %w", err)
	}
	return res.LastInsertId()
}

// UpdateListenCompleted marks a listen row completed and writes queueID
// and trackID into the row's queue_id and track_id columns.
func (s *Store) UpdateListenCompleted(ctx context.Context, id int64, queueID uint64, trackID uint64, completedAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE listens SET completed_at = ?, queue_id = ?, track_id = ? WHERE id = ?
	`, unixMicro(completedAt), queueID, trackID, id)
	if err != nil {
		return fmt.Errorf("store: update_listen_completed: %w", err)
	}
	return nil
}

// SweepStaleListens completes every started-but-never-finished listen
// older than cutoff, stamping completed_at = started_at. This is a
// supplementary operation (not named directly by §4.2's operation list)
// that reclaims listens orphaned by an unclean daemon shutdown — without
// it, a crash mid-playback would leave that row open forever.
func (s *Store) SweepStaleListens(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE listens SET completed_at = started_at
		WHERE completed_at IS NULL AND started_at < ?
	`, unixMicro(cutoff))
	if err != nil {
		return 0, fmt.Errorf("store: sweep_stale_listens: %w", err)
	}
	return res.RowsAffected()
}

// ListenRow is one row of the listens table, as returned by RecentListens.
type ListenRow struct {
	ID          int64
	StartedAt   time.Time
	CompletedAt *time.Time
	QueueID     uint64
	TrackID     uint64
	TrackTitle  string
	ArtistName  string
	AlbumTitle  string
}

// RecentListens returns the most recent listens, newest first, bounded to
// limit rows.
func (s *Store) RecentListens(ctx context.Context, limit int) ([]ListenRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, completed_at, queue_id, track_id, track_title, artist_name, album_title
		FROM listens ORDER BY started_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("store: recent_listens: %w", err)
	}
	defer rows.Close()

	var out []ListenRow
	for rows.Next() {
		var row ListenRow
		var startedAt int64
		var completedAt *int64
		if err := rows.Scan(&row.ID, &startedAt, &completedAt, &row.QueueID, &row.TrackID,
			&row.TrackTitle, &row.ArtistName, &row.AlbumTitle); err != nil {
			return nil, fmt.Errorf("store: recent_listens: %w", err)
		}
		row.StartedAt = fromUnixMicro(startedAt)
		if completedAt != nil {
			t := fromUnixMicro(*completedAt)
			row.CompletedAt = &t
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
