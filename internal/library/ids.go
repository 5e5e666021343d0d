package library

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/google/uuid"
)

// ArtistID, AlbumID and TrackID are the 64-bit internal identifiers used
// throughout the in-memory model for compact indexing (§3.1). They are
// deterministic functions of the externally assigned 128-bit foreign ID
// (a MusicBrainz-style UUID).
type ArtistID uint64
type AlbumID uint64
type TrackID uint64

// DeriveInternalID takes the high 64 bits of SHA-256(foreignID) as the
// internal ID. Deterministic across runs: the same foreign ID always
// yields the same internal ID, and collisions are vanishingly unlikely
// for any library this daemon will ever index.
func DeriveInternalID(foreignID uuid.UUID) uint64 {
	sum := sha256.Sum256(foreignID[:])
	return binary.BigEndian.Uint64(sum[:8])
}

// DeriveAlbumID derives an album's internal ID from its MusicBrainz album
// id, clearing the low byte that track IDs reserve for disc/track position
// encoding (§3.1).
func DeriveAlbumID(foreignAlbumID uuid.UUID) AlbumID {
	return AlbumID(DeriveInternalID(foreignAlbumID) &^ 0xFF)
}

// DeriveArtistID derives an artist's internal ID from its MusicBrainz
// artist id. Artist IDs have no reserved low byte.
func DeriveArtistID(foreignArtistID uuid.UUID) ArtistID {
	return ArtistID(DeriveInternalID(foreignArtistID))
}

// DeriveTrackID forms a track ID by replacing the album ID's low byte with
// disc_number<<4 | track_position_within_disc, so "tracks of an album" are
// a contiguous range in any ordered track collection and the album ID is
// recoverable from any of its track IDs. discNumber and trackPosition are
// each masked to 4 bits: real libraries rarely exceed 16 discs or 16
// tracks per disc, and the source format itself allocates no more room
// than this (see DESIGN.md's Open Question note on collisions).
func DeriveTrackID(albumID AlbumID, discNumber, trackPosition int) TrackID {
	lowByte := byte(discNumber&0xF)<<4 | byte(trackPosition&0xF)
	return TrackID(uint64(albumID)&^0xFF | uint64(lowByte))
}

// AlbumIDOfTrack recovers the owning album ID from a track ID by clearing
// the low byte (§3.1, invariant 3).
func AlbumIDOfTrack(id TrackID) AlbumID {
	return AlbumID(uint64(id) &^ 0xFF)
}
