package httpapi

import (
	"sort"

	"github.com/musium/musium/internal/library"
)

// artistJSON, albumJSON and trackJSON give every entity a fixed field
// order across responses (§4.8).
type artistJSON struct {
	ID       uint64 `json:"id"`
	Name     string `json:"name"`
	SortName string `json:"sort_name"`
}

type albumJSON struct {
	ID                  uint64   `json:"id"`
	Title               string   `json:"title"`
	ArtistIDs           []uint64 `json:"artist_ids"`
	CreditedArtistName  string   `json:"credited_artist_name"`
	OriginalReleaseDate string   `json:"original_release_date,omitempty"`
	FirstSeenDate       string   `json:"first_seen_date"`
	LoudnessLUFS        *float64 `json:"loudness_lufs,omitempty"`
}

type trackJSON struct {
	ID                uint64  `json:"id"`
	AlbumID           uint64  `json:"album_id"`
	DiscNumber        int     `json:"disc_number"`
	TrackNumberOnDisc int     `json:"track_number"`
	Title             string  `json:"title"`
	ArtistName        string  `json:"artist_name"`
	DurationSamples   uint64  `json:"duration_samples"`
	SampleRateHz      uint32  `json:"sample_rate_hz"`
	BitsPerSample     uint8   `json:"bits_per_sample"`
	ChannelCount      uint8   `json:"channel_count"`
	Rating            int8    `json:"rating"`
}

func toArtistJSON(lib *library.Library, a library.Artist) artistJSON {
	return artistJSON{
		ID:       uint64(a.ID),
		Name:     lib.Interner.Resolve(a.Name),
		SortName: lib.Interner.Resolve(a.SortName),
	}
}

func toAlbumJSON(lib *library.Library, a library.Album) albumJSON {
	artistIDs := make([]uint64, len(a.ArtistIDs))
	for i, id := range a.ArtistIDs {
		artistIDs[i] = uint64(id)
	}
	return albumJSON{
		ID:                  uint64(a.ID),
		Title:               lib.Interner.Resolve(a.Title),
		ArtistIDs:           artistIDs,
		CreditedArtistName:  lib.Interner.Resolve(a.CreditedArtistName),
		OriginalReleaseDate: a.OriginalReleaseDate,
		FirstSeenDate:       a.FirstSeenDate.Format("2006-01-02"),
		LoudnessLUFS:        a.LoudnessLUFS,
	}
}

func toTrackJSON(lib *library.Library, t library.Track) trackJSON {
	return trackJSON{
		ID:                uint64(t.ID),
		AlbumID:           uint64(t.AlbumID),
		DiscNumber:        t.DiscNumber,
		TrackNumberOnDisc: t.TrackNumberOnDisc,
		Title:             lib.Interner.Resolve(t.Title),
		ArtistName:        lib.Interner.Resolve(t.ArtistName),
		DurationSamples:   t.DurationSamples,
		SampleRateHz:      t.SampleRateHz,
		BitsPerSample:     t.BitsPerSample,
		ChannelCount:      t.ChannelCount,
		Rating:            int8(t.Rating),
	}
}

func sortAlbumsChronologically(albums []library.Album) {
	sort.Slice(albums, func(i, j int) bool { return albums[i].FirstSeenDate.Before(albums[j].FirstSeenDate) })
}
