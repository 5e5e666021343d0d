package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "musium.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRow(filename string) FileMetadataRow {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return FileMetadataRow{
		Filename:                  filename,
		FileMTime:                 now,
		ImportedAt:                now,
		SampleRateHz:              44100,
		BitsPerSample:             16,
		ChannelCount:              2,
		DurationSamples:           123456,
		Album:                     "Origin of Symmetry",
		AlbumArtist:               "Muse",
		AlbumArtists:              []string{"Muse"},
		Artist:                    "Muse",
		MusicBrainzAlbumArtistIDs: []string{"22222222-2222-2222-2222-222222222222"},
		MusicBrainzAlbumID:        "11111111-1111-1111-1111-111111111111",
		MusicBrainzTrackID:        "33333333-3333-3333-3333-333333333333",
		DiscNumber:                1,
		TrackNumber:               3,
		Date:                      "2001-07-16",
		Title:                     "Screenager",
	}
}

func TestUpsertAndListByFilenameRoundTrips(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.UpsertFileMetadata(ctx, sampleRow("b.flac")); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := s.UpsertFileMetadata(ctx, sampleRow("a.flac")); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	rows, err := s.ListByFilename(ctx)
	if err != nil {
		t.Fatalf("ListByFilename: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	if rows[0].Filename != "a.flac" || rows[1].Filename != "b.flac" {
		t.Errorf("rows out of order: %q, %q", rows[0].Filename, rows[1].Filename)
	}
	if len(rows[0].AlbumArtists) != 1 || rows[0].AlbumArtists[0] != "Muse" {
		t.Errorf("AlbumArtists round-trip = %v", rows[0].AlbumArtists)
	}
}

func TestDeleteFileMetadataRemovesRow(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.UpsertFileMetadata(ctx, sampleRow("a.flac")); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := s.DeleteFileMetadata(ctx, "a.flac"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	rows, err := s.ListByFilename(ctx)
	if err != nil {
		t.Fatalf("ListByFilename: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("len(rows) = %d, want 0", len(rows))
	}
}

func TestArtifactGettersReturnNotFoundBeforePut(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.GetAlbumLoudness(ctx, 42); err != ErrNotFound {
		t.Errorf("GetAlbumLoudness err = %v, want ErrNotFound", err)
	}
	if err := s.PutAlbumLoudness(ctx, 42, -9.5); err != nil {
		t.Fatalf("PutAlbumLoudness: %v", err)
	}
	got, err := s.GetAlbumLoudness(ctx, 42)
	if err != nil {
		t.Fatalf("GetAlbumLoudness: %v", err)
	}
	if got != -9.5 {
		t.Errorf("GetAlbumLoudness = %v, want -9.5", got)
	}
}

func TestListenLifecycle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	started := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	id, err := s.InsertListenStarted(ctx, started, 7, 99, "Screenager", "Muse", "Origin of Symmetry")
	if err != nil {
		t.Fatalf("InsertListenStarted: %v", err)
	}
	if err := s.UpdateListenCompleted(ctx, id, 7, 99, started.Add(3*time.Minute)); err != nil {
		t.Fatalf("UpdateListenCompleted: %v", err)
	}

	recent, err := s.RecentListens(ctx, 10)
	if err != nil {
		t.Fatalf("RecentListens: %v", err)
	}
	if len(recent) != 1 || recent[0].CompletedAt == nil {
		t.Fatalf("recent = %+v, want one completed listen", recent)
	}
}

func TestSweepStaleListensCompletesOrphans(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	started := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	if _, err := s.InsertListenStarted(ctx, started, 1, 1, "Title", "Artist", "Album"); err != nil {
		t.Fatalf("InsertListenStarted: %v", err)
	}

	n, err := s.SweepStaleListens(ctx, started.Add(time.Hour))
	if err != nil {
		t.Fatalf("SweepStaleListens: %v", err)
	}
	if n != 1 {
		t.Fatalf("swept = %d, want 1", n)
	}
}

func TestBatchCommitsMultipleUpserts(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	batch, err := s.BeginBatch(ctx)
	if err != nil {
		t.Fatalf("BeginBatch: %v", err)
	}
	for _, name := range []string{"a.flac", "b.flac", "c.flac"} {
		if err := batch.Upsert(ctx, sampleRow(name)); err != nil {
			t.Fatalf("batch.Upsert: %v", err)
		}
	}
	if err := batch.Commit(); err != nil {
		t.Fatalf("batch.Commit: %v", err)
	}

	rows, err := s.ListByFilename(ctx)
	if err != nil {
		t.Fatalf("ListByFilename: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("len(rows) = %d, want 3", len(rows))
	}
}

func TestOpenRejectsMismatchedSchemaVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "musium.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := s.db.Exec(`UPDATE schema_meta SET version = version + 1`); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	s.Close()

	_, err = Open(path)
	if _, ok := err.(*ErrSchemaVersionMismatch); !ok {
		t.Fatalf("got %v, want *ErrSchemaVersionMismatch", err)
	}
}
