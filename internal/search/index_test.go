package search

import (
	"testing"

	"github.com/musium/musium/internal/library"
)

func buildTestLibrary() *library.Library {
	in := library.NewInterner(1024)
	queenID := library.ArtistID(1)
	album := library.Album{
		ID:        library.AlbumID(0x100),
		Title:     in.Intern("A Night at the Opera"),
		ArtistIDs: []library.ArtistID{queenID},
	}
	tracks := []library.Track{
		{ID: library.TrackID(0x101), AlbumID: album.ID, Title: in.Intern("Bohemian Rhapsody")},
		{ID: library.TrackID(0x102), AlbumID: album.ID, Title: in.Intern("Queen")}, // fully covered by artist name
	}
	return &library.Library{
		Interner: in,
		Artists:  []library.Artist{{ID: queenID, Name: in.Intern("Queen")}},
		Albums:   []library.Album{album},
		Tracks:   tracks,
	}
}

func TestSearchMatchesPrefixAcrossKinds(t *testing.T) {
	idx := Build(buildTestLibrary())
	results := idx.Search("que")
	if len(results.Artists) != 1 {
		t.Errorf("Artists = %v, want 1 match", results.Artists)
	}
}

func TestSearchDedupExcludesTrackFullyCoveredByArtist(t *testing.T) {
	idx := Build(buildTestLibrary())
	results := idx.Search("queen")
	for _, id := range results.Tracks {
		if id == library.TrackID(0x102) {
			t.Error("expected the track titled exactly \"Queen\" to be excluded as covered by the artist match")
		}
	}
}

func TestSearchIncludesTrackNotFullyCoveredByAlbumOrArtist(t *testing.T) {
	idx := Build(buildTestLibrary())
	results := idx.Search("bohemian")
	found := false
	for _, id := range results.Tracks {
		if id == library.TrackID(0x101) {
			found = true
		}
	}
	if !found {
		t.Error("expected Bohemian Rhapsody to be included: \"bohemian\" is not a token of its album or artist")
	}
}

func TestTokenizeNormalizesAndCasefolds(t *testing.T) {
	got := Tokenize("Café Müller!")
	want := []string{"cafe", "muller"}
	if len(got) != len(want) {
		t.Fatalf("Tokenize = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Tokenize[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
