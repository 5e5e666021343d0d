package library

import "time"

// Rating is a track's listener rating.
type Rating int8

const (
	RatingBanned  Rating = -1
	RatingNeutral Rating = 0
	RatingLiked   Rating = 1
	RatingLoved   Rating = 2
)

// StringRef is an (offset, length) slice into an Interner's buffer. Zero
// value refers to the empty string.
type StringRef struct {
	Offset uint32
	Length uint32
}

// Artist is one artist entity (§3.2).
type Artist struct {
	ID       ArtistID
	Name     StringRef
	SortName StringRef
}

// Album is one album entity (§3.2). ArtistIDs preserves tag order for
// multi-artist albums.
type Album struct {
	ID                  AlbumID
	Title               StringRef
	ArtistIDs           []ArtistID
	CreditedArtistName  StringRef
	OriginalReleaseDate string
	FirstSeenDate       time.Time
	LoudnessLUFS        *float64
	DiscoverRank        int
}

// Track is one track entity (§3.2).
type Track struct {
	ID                TrackID
	AlbumID           AlbumID
	DiscNumber        int
	TrackNumberOnDisc int
	Title             StringRef
	ArtistName        StringRef
	DurationSamples   uint64
	SampleRateHz      uint32
	BitsPerSample     uint8
	ChannelCount      uint8
	Filename          string
	FileMTime         time.Time
	LoudnessLUFS      *float64
	Rating            Rating
}

// Listen is one playback event (§3.2 / component I). It carries a
// denormalized snapshot of display fields so the log stays meaningful
// after later library edits or rescans.
type Listen struct {
	ID          int64
	StartedAt   time.Time
	CompletedAt *time.Time
	QueueID     uint64
	TrackID     TrackID

	TrackTitle  string
	ArtistName  string
	AlbumTitle  string
}

// Inconsistency records an album- or artist-level tag disagreement found
// during model build (invariants 1 and 2, §3.3). It is logged, not fatal.
type Inconsistency struct {
	Field          string
	WinningFile    string
	ConflictFile   string
	WinningValue   string
	ConflictValue  string
}
