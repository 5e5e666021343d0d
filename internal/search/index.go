package search

import (
	"sort"
	"strings"

	"github.com/musium/musium/internal/library"
)

const (
	maxArtistResults = 10
	maxAlbumResults  = 25
	maxTrackResults  = 25
)

// Index is an immutable snapshot of posting lists over one library model,
// rebuilt alongside the model on every rescan (§4.6).
type Index struct {
	artistPostings map[string][]library.ArtistID
	albumPostings  map[string][]library.AlbumID
	trackPostings  map[string][]library.TrackID

	artistTokens map[library.ArtistID]map[string]bool
	albumTokens  map[library.AlbumID]map[string]bool
	trackTokens  map[library.TrackID]map[string]bool

	albumArtists map[library.AlbumID][]library.ArtistID
	trackAlbum   map[library.TrackID]library.AlbumID
}

// Results is a search response, already truncated per §4.6.
type Results struct {
	Artists []library.ArtistID
	Albums  []library.AlbumID
	Tracks  []library.TrackID
}

// Build indexes every artist, album and track in lib.
func Build(lib *library.Library) *Index {
	idx := &Index{
		artistPostings: make(map[string][]library.ArtistID),
		albumPostings:  make(map[string][]library.AlbumID),
		trackPostings:  make(map[string][]library.TrackID),
		artistTokens:   make(map[library.ArtistID]map[string]bool),
		albumTokens:    make(map[library.AlbumID]map[string]bool),
		trackTokens:    make(map[library.TrackID]map[string]bool),
		albumArtists:   make(map[library.AlbumID][]library.ArtistID),
		trackAlbum:     make(map[library.TrackID]library.AlbumID),
	}

	for _, artist := range lib.Artists {
		name := lib.Interner.Resolve(artist.Name)
		tokens := TokenSet(name)
		idx.artistTokens[artist.ID] = tokens
		for t := range tokens {
			idx.artistPostings[t] = append(idx.artistPostings[t], artist.ID)
		}
	}

	for _, album := range lib.Albums {
		title := lib.Interner.Resolve(album.Title)
		tokens := TokenSet(title)
		idx.albumTokens[album.ID] = tokens
		idx.albumArtists[album.ID] = album.ArtistIDs
		for t := range tokens {
			idx.albumPostings[t] = append(idx.albumPostings[t], album.ID)
		}
	}

	for _, track := range lib.Tracks {
		title := lib.Interner.Resolve(track.Title)
		tokens := TokenSet(title)
		idx.trackTokens[track.ID] = tokens
		idx.trackAlbum[track.ID] = track.AlbumID
		for t := range tokens {
			idx.trackPostings[t] = append(idx.trackPostings[t], track.ID)
		}
	}

	return idx
}

// Search tokenizes query identically to indexing, intersects per-token
// prefix matches across entity kinds, applies the track dedup rule, and
// truncates results per §4.6.
func (idx *Index) Search(query string) Results {
	queryTokens := Tokenize(query)
	if len(queryTokens) == 0 {
		return Results{}
	}

	artistIDs := matchPrefixAll(idx.artistPostings, queryTokens)
	albumIDs := matchPrefixAll(idx.albumPostings, queryTokens)
	trackIDs := matchPrefixAll(idx.trackPostings, queryTokens)

	filteredTracks := make(map[library.TrackID]bool, len(trackIDs))
	for trackID := range trackIDs {
		if !idx.trackIsCoveredByCoarserEntity(trackID) {
			filteredTracks[trackID] = true
		}
	}

	return Results{
		Artists: truncateSortedArtists(artistIDs, maxArtistResults),
		Albums:  truncateSortedAlbums(albumIDs, maxAlbumResults),
		Tracks:  truncateSortedTracks(filteredTracks, maxTrackResults),
	}
}

// trackIsCoveredByCoarserEntity implements §4.6's dedup rule: a track is
// excluded only when every one of its own tokens already appears among
// its album's or album-artists' tokens — i.e. the match would be
// redundant with the coarser entity already in the results.
func (idx *Index) trackIsCoveredByCoarserEntity(trackID library.TrackID) bool {
	trackTokens := idx.trackTokens[trackID]
	albumID := idx.trackAlbum[trackID]
	albumTokens := idx.albumTokens[albumID]

	for token := range trackTokens {
		if albumTokens[token] {
			continue
		}
		coveredByArtist := false
		for _, artistID := range idx.albumArtists[albumID] {
			if idx.artistTokens[artistID][token] {
				coveredByArtist = true
				break
			}
		}
		if !coveredByArtist {
			return false
		}
	}
	return true
}

func matchPrefixAll[T comparable](postings map[string][]T, queryTokens []string) map[T]bool {
	acc := matchPrefix(postings, queryTokens[0])
	for _, qt := range queryTokens[1:] {
		next := matchPrefix(postings, qt)
		for id := range acc {
			if !next[id] {
				delete(acc, id)
			}
		}
	}
	return acc
}

func matchPrefix[T comparable](postings map[string][]T, prefix string) map[T]bool {
	out := make(map[T]bool)
	for token, ids := range postings {
		if strings.HasPrefix(token, prefix) {
			for _, id := range ids {
				out[id] = true
			}
		}
	}
	return out
}

func truncateSortedArtists(ids map[library.ArtistID]bool, limit int) []library.ArtistID {
	out := make([]library.ArtistID, 0, len(ids))
	for id := range ids {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func truncateSortedAlbums(ids map[library.AlbumID]bool, limit int) []library.AlbumID {
	out := make([]library.AlbumID, 0, len(ids))
	for id := range ids {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func truncateSortedTracks(ids map[library.TrackID]bool, limit int) []library.TrackID {
	out := make([]library.TrackID, 0, len(ids))
	for id := range ids {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
