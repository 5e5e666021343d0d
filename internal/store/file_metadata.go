package store

import (
	"context"
	"database/sql"
	"fmt"
)

// UpsertFileMetadata inserts or replaces the row for row.Filename.
func (s *Store) UpsertFileMetadata(ctx context.Context, row FileMetadataRow) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO file_metadata (
			filename, file_mtime, imported_at, sample_rate_hz, bits_per_sample,
			channel_count, duration_samples, album, album_artist, album_artists,
			album_artist_sort, album_artists_sort, artist, musicbrainz_album_artist_ids,
			musicbrainz_album_id, musicbrainz_track_id, disc_number, track_number,
			original_date, date, title
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT(filename) DO UPDATE SET
			file_mtime=excluded.file_mtime, imported_at=excluded.imported_at,
			sample_rate_hz=excluded.sample_rate_hz, bits_per_sample=excluded.bits_per_sample,
			channel_count=excluded.channel_count, duration_samples=excluded.duration_samples,
			album=excluded.album, album_artist=excluded.album_artist,
			album_artists=excluded.album_artists, album_artist_sort=excluded.album_artist_sort,
			album_artists_sort=excluded.album_artists_sort, artist=excluded.artist,
			musicbrainz_album_artist_ids=excluded.musicbrainz_album_artist_ids,
			musicbrainz_album_id=excluded.musicbrainz_album_id,
			musicbrainz_track_id=excluded.musicbrainz_track_id,
			disc_number=excluded.disc_number, track_number=excluded.track_number,
			original_date=excluded.original_date, date=excluded.date, title=excluded.title
	`,
		row.Filename, unixMicro(row.FileMTime), unixMicro(row.ImportedAt),
		row.SampleRateHz, row.BitsPerSample, row.ChannelCount, row.DurationSamples,
		row.Album, row.AlbumArtist, joinList(row.AlbumArtists),
		row.AlbumArtistSort, joinList(row.AlbumArtistsSort), row.Artist,
		joinList(row.MusicBrainzAlbumArtistIDs), row.MusicBrainzAlbumID, row.MusicBrainzTrackID,
		row.DiscNumber, row.TrackNumber, row.OriginalDate, row.Date, row.Title,
	)
	if err != nil {
		return fmt.Errorf("store: upsert file_metadata %s: %w", row.Filename, err)
	}
	return nil
}

// DeleteFileMetadata removes the row for filename. It is not an error if no
// such row exists.
func (s *Store) DeleteFileMetadata(ctx context.Context, filename string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM file_metadata WHERE filename = ?`, filename); err != nil {
		return fmt.Errorf("store: delete file_metadata %s: %w", filename, err)
	}
	return nil
}

// ListByFilename returns every file_metadata row in filename-ascending
// order (§4.2: "deterministic ordering makes tie-breaks reproducible").
func (s *Store) ListByFilename(ctx context.Context) ([]FileMetadataRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT filename, file_mtime, imported_at, sample_rate_hz, bits_per_sample,
			channel_count, duration_samples, album, album_artist, album_artists,
			album_artist_sort, album_artists_sort, artist, musicbrainz_album_artist_ids,
			musicbrainz_album_id, musicbrainz_track_id, disc_number, track_number,
			original_date, date, title
		FROM file_metadata ORDER BY filename ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("store: list_by_filename: %w", err)
	}
	defer rows.Close()

	var out []FileMetadataRow
	for rows.Next() {
		row, err := scanFileMetadataRow(rows)
		if err != nil {
			return nil, fmt.Errorf("store: list_by_filename: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func scanFileMetadataRow(rows *sql.Rows) (FileMetadataRow, error) {
	var row FileMetadataRow
	var fileMTime, importedAt int64
	var albumArtists, albumArtistsSort, mbAlbumArtistIDs string
	err := rows.Scan(
		&row.Filename, &fileMTime, &importedAt, &row.SampleRateHz, &row.BitsPerSample,
		&row.ChannelCount, &row.DurationSamples, &row.Album, &row.AlbumArtist, &albumArtists,
		&row.AlbumArtistSort, &albumArtistsSort, &row.Artist, &mbAlbumArtistIDs,
		&row.MusicBrainzAlbumID, &row.MusicBrainzTrackID, &row.DiscNumber, &row.TrackNumber,
		&row.OriginalDate, &row.Date, &row.Title,
	)
	if err != nil {
		return FileMetadataRow{}, err
	}
	row.FileMTime = fromUnixMicro(fileMTime)
	row.ImportedAt = fromUnixMicro(importedAt)
	row.AlbumArtists = splitList(albumArtists)
	row.AlbumArtistsSort = splitList(albumArtistsSort)
	row.MusicBrainzAlbumArtistIDs = splitList(mbAlbumArtistIDs)
	return row, nil
}

// ListIDMTimes returns the compact {filename, mtime} iterator reconciliation
// uses to classify files as unchanged/new/changed (§4.3 phase 2).
func (s *Store) ListIDMTimes(ctx context.Context) ([]IDMTime, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT filename, file_mtime FROM file_metadata`)
	if err != nil {
		return nil, fmt.Errorf("store: list_ids_mtimes: %w", err)
	}
	defer rows.Close()

	var out []IDMTime
	for rows.Next() {
		var filename string
		var mtime int64
		if err := rows.Scan(&filename, &mtime); err != nil {
			return nil, fmt.Errorf("store: list_ids_mtimes: %w", err)
		}
		out = append(out, IDMTime{Filename: filename, MTime: fromUnixMicro(mtime)})
	}
	return out, rows.Err()
}
