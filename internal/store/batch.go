package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Batch accumulates file_metadata upserts/deletes behind one transaction,
// matching §4.2's "long phases batch hundreds of rows per commit" and the
// scanner's single-writer-thread design (§4.3 phase 3).
type Batch struct {
	tx   *sql.Tx
	size int
}

// BeginBatch starts a transaction for batched writes.
func (s *Store) BeginBatch(ctx context.Context) (*Batch, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("store: begin batch: %w", err)
	}
	return &Batch{tx: tx}, nil
}

// Upsert stages a file_metadata upsert within the batch's transaction.
func (b *Batch) Upsert(ctx context.Context, row FileMetadataRow) error {
	_, err := b.tx.ExecContext(ctx, `
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
		return fmt.Errorf("store: batch upsert %s: %w", row.Filename, err)
	}
	b.size++
	return nil
}

// Delete stages a file_metadata delete within the batch's transaction.
func (b *Batch) Delete(ctx context.Context, filename string) error {
	if _, err := b.tx.ExecContext(ctx, `DELETE FROM file_metadata WHERE filename = ?`, filename); err != nil {
		return fmt.Errorf("store: batch delete %s: %w", filename, err)
	}
	b.size++
	return nil
}

// Size reports how many statements are staged in the batch.
func (b *Batch) Size() int { return b.size }

// Commit commits the batch's transaction.
func (b *Batch) Commit() error {
	if err := b.tx.Commit(); err != nil {
		return fmt.Errorf("store: commit batch: %w", err)
	}
	return nil
}

// Rollback aborts the batch's transaction.
func (b *Batch) Rollback() error {
	return b.tx.Rollback()
}
