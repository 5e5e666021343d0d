package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrNotFound is returned by the artifact getters when no row exists for
// the requested key. Callers treat it as "not yet analyzed", not a fault.
var ErrNotFound = errors.New("store: not found")

// GetAlbumLoudness returns the stored integrated loudness for albumID.
func (s *Store) GetAlbumLoudness(ctx context.Context, albumID uint64) (float64, error) {
	var lufs float64
	err := s.db.QueryRowContext(ctx, `SELECT lufs FROM album_loudness WHERE album_id = ?`, albumID).Scan(&lufs)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("store: get album_loudness: %w", err)
	}
	return lufs, nil
}

// PutAlbumLoudness stores the integrated loudness for albumID.
func (s *Store) PutAlbumLoudness(ctx context.Context, albumID uint64, lufs float64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO album_loudness (album_id, lufs) VALUES (?, ?)
		ON CONFLICT(album_id) DO UPDATE SET lufs = excluded.lufs
	`, albumID, lufs)
	if err != nil {
		return fmt.Errorf("store: put album_loudness: %w", err)
	}
	return nil
}

// GetTrackLoudness returns the stored integrated loudness for trackID.
func (s *Store) GetTrackLoudness(ctx context.Context, trackID uint64) (float64, error) {
	var lufs float64
	err := s.db.QueryRowContext(ctx, `SELECT lufs FROM track_loudness WHERE track_id = ?`, trackID).Scan(&lufs)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("store: get track_loudness: %w", err)
	}
	return lufs, nil
}

// PutTrackLoudness stores the integrated loudness for trackID.
func (s *Store) PutTrackLoudness(ctx context.Context, trackID uint64, lufs float64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO track_loudness (track_id, lufs) VALUES (?, ?)
		ON CONFLICT(track_id) DO UPDATE SET lufs = excluded.lufs
	`, trackID, lufs)
	if err != nil {
		return fmt.Errorf("store: put track_loudness: %w", err)
	}
	return nil
}

// GetWaveform returns the downsampled amplitude envelope for trackID.
func (s *Store) GetWaveform(ctx context.Context, trackID uint64) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM waveforms WHERE track_id = ?`, trackID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get waveform: %w", err)
	}
	return data, nil
}

// PutWaveform stores the downsampled amplitude envelope for trackID.
func (s *Store) PutWaveform(ctx context.Context, trackID uint64, data []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO waveforms (track_id, data) VALUES (?, ?)
		ON CONFLICT(track_id) DO UPDATE SET data = excluded.data
	`, trackID, data)
	if err != nil {
		return fmt.Errorf("store: put waveform: %w", err)
	}
	return nil
}

// GetThumbnail returns the cached cover thumbnail for albumID.
func (s *Store) GetThumbnail(ctx context.Context, albumID uint64) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM thumbnails WHERE album_id = ?`, albumID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get thumbnail: %w", err)
	}
	return data, nil
}

// PutThumbnail stores a cached cover thumbnail for albumID.
func (s *Store) PutThumbnail(ctx context.Context, albumID uint64, data []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO thumbnails (album_id, data) VALUES (?, ?)
		ON CONFLICT(album_id) DO UPDATE SET data = excluded.data
	`, albumID, data)
	if err != nil {
		return fmt.Errorf("store: put thumbnail: %w", err)
	}
	return nil
}

// HasAlbumLoudness reports whether albumID already has a loudness row, for
// the analyzer's idempotent "present -> skip" check (§4.3 phase 5+).
func (s *Store) HasAlbumLoudness(ctx context.Context, albumID uint64) (bool, error) {
	return exists(ctx, s.db, `SELECT 1 FROM album_loudness WHERE album_id = ?`, albumID)
}

// HasTrackLoudness mirrors HasAlbumLoudness for tracks.
func (s *Store) HasTrackLoudness(ctx context.Context, trackID uint64) (bool, error) {
	return exists(ctx, s.db, `SELECT 1 FROM track_loudness WHERE track_id = ?`, trackID)
}

// HasWaveform mirrors HasAlbumLoudness for waveforms.
func (s *Store) HasWaveform(ctx context.Context, trackID uint64) (bool, error) {
	return exists(ctx, s.db, `SELECT 1 FROM waveforms WHERE track_id = ?`, trackID)
}

// HasThumbnail mirrors HasAlbumLoudness for thumbnails.
func (s *Store) HasThumbnail(ctx context.Context, albumID uint64) (bool, error) {
	return exists(ctx, s.db, `SELECT 1 FROM thumbnails WHERE album_id = ?`, albumID)
}

func exists(ctx context.Context, db *sql.DB, query string, arg uint64) (bool, error) {
	var one int
	err := db.QueryRowContext(ctx, query, arg).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("store: exists check: %w", err)
	}
	return true, nil
}
