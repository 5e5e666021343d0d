package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// schemaVersion is bumped whenever the table layout changes. Open refuses
// to serve a database stamped with a different version (§4.2).
const schemaVersion = 1

const schemaDDL = `
CREATE TABLE IF NOT EXISTS schema_meta (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS file_metadata (
	filename TEXT PRIMARY KEY,
	file_mtime INTEGER NOT NULL,
	imported_at INTEGER NOT NULL,
	sample_rate_hz INTEGER NOT NULL,
	bits_per_sample INTEGER NOT NULL,
	channel_count INTEGER NOT NULL,
	duration_samples INTEGER NOT NULL,
	album TEXT NOT NULL,
	album_artist TEXT NOT NULL,
	album_artists TEXT NOT NULL,
	album_artist_sort TEXT NOT NULL,
	album_artists_sort TEXT NOT NULL,
	artist TEXT NOT NULL,
	musicbrainz_album_artist_ids TEXT NOT NULL,
	musicbrainz_album_id TEXT NOT NULL,
	musicbrainz_track_id TEXT NOT NULL,
	disc_number INTEGER NOT NULL,
	track_number INTEGER NOT NULL,
	original_date TEXT NOT NULL,
	date TEXT NOT NULL,
	title TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS album_loudness (
	album_id INTEGER PRIMARY KEY,
	lufs REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS track_loudness (
	track_id INTEGER PRIMARY KEY,
	lufs REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS waveforms (
	track_id INTEGER PRIMARY KEY,
	data BLOB NOT NULL
);

CREATE TABLE IF NOT EXISTS thumbnails (
	album_id INTEGER PRIMARY KEY,
	data BLOB NOT NULL
);

CREATE TABLE IF NOT EXISTS ratings (
	track_id INTEGER PRIMARY KEY,
	rating INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS listens (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	started_at INTEGER NOT NULL,
	completed_at INTEGER,
	queue_id INTEGER NOT NULL,
	track_id INTEGER NOT NULL,
	track_title TEXT NOT NULL,
	artist_name TEXT NOT NULL,
	album_title TEXT NOT NULL
);
`

// listSep joins repeatable tag values (album_artists, etc.) into a single
// TEXT column. MusicBrainz IDs and tag text never legitimately contain this
// byte, so a plain join/split is safe and avoids a second normalized table.
const listSep = "\x1f"

// Store is a handle on the single-file embedded database described by
// §4.2. All its methods are safe for concurrent use; the underlying
// *sql.DB serializes access itself (Open limits it to one connection).
type Store struct {
	db *sql.DB
}

// ErrSchemaVersionMismatch is returned by Open when an existing database
// was stamped with a different schema version than this binary expects.
type ErrSchemaVersionMismatch struct {
	Found, Want int
}

func (e *ErrSchemaVersionMismatch) Error() string {
	return fmt.Sprintf("database schema version %d does not match expected version %d (migration required)", e.Found, e.Want)
}

// Open opens (creating if absent) the database at path and verifies its
// schema version.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1) // one writer, per §4.2 — the engine itself is single-threaded on writes

	if _, err := db.Exec(schemaDDL); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create schema: %w", err)
	}

	var count int
	if err := db.QueryRow(`SELECT count(*) FROM schema_meta`).Scan(&count); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: read schema_meta: %w", err)
	}
	if count == 0 {
		if _, err := db.Exec(`INSERT INTO schema_meta (version) VALUES (?)`, schemaVersion); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: stamp schema version: %w", err)
		}
	} else {
		var found int
		if err := db.QueryRow(`SELECT version FROM schema_meta LIMIT 1`).Scan(&found); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: read schema version: %w", err)
		}
		if found != schemaVersion {
			db.Close()
			return nil, &ErrSchemaVersionMismatch{Found: found, Want: schemaVersion}
		}
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func joinList(vs []string) string   { return strings.Join(vs, listSep) }
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, listSep)
}

func unixMicro(t time.Time) int64 { return t.UnixMicro() }
func fromUnixMicro(v int64) time.Time {
	if v == 0 {
		return time.Time{}
	}
	return time.UnixMicro(v).UTC()
}
