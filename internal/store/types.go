// Package store implements the derived-artifact persistent store (component
// B): a single-file embedded relational database holding one row per
// indexed audio file plus the analysis artifacts (loudness, waveforms,
// thumbnails, listens) derived from it.
package store

import "time"

// FileMetadataRow is one row of the file_metadata table: the verbatim tag
// bag and stream descriptor of a single FLAC file, keyed by filename.
type FileMetadataRow struct {
	Filename   string
	FileMTime  time.Time
	ImportedAt time.Time

	SampleRateHz    uint32
	BitsPerSample   uint8
	ChannelCount    uint8
	DurationSamples uint64

	Album                     string
	AlbumArtist               string
	AlbumArtists              []string
	AlbumArtistSort           string
	AlbumArtistsSort          []string
	Artist                    string
	MusicBrainzAlbumArtistIDs []string
	MusicBrainzAlbumID        string
	MusicBrainzTrackID        string
	DiscNumber                int
	TrackNumber               int
	OriginalDate              string
	Date                      string
	Title                     string
}

// IDMTime is the compact row shape used by reconciliation (§4.3 phase 2).
type IDMTime struct {
	Filename string
	MTime    time.Time
}
