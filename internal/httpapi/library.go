package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/musium/musium/internal/library"
)

func (h *handler) currentLibrary(w http.ResponseWriter) *library.Library {
	lib := h.model.Current()
	if lib == nil {
		writeError(w, http.StatusServiceUnavailable, "library not yet scanned")
		return nil
	}
	return lib
}

func parseAlbumID(r *http.Request) (library.AlbumID, error) {
	v, err := strconv.ParseUint(chi.URLParam(r, "album_id"), 10, 64)
	return library.AlbumID(v), err
}

func parseArtistID(r *http.Request) (library.ArtistID, error) {
	v, err := strconv.ParseUint(chi.URLParam(r, "artist_id"), 10, 64)
	return library.ArtistID(v), err
}

func parseTrackID(r *http.Request) (library.TrackID, error) {
	v, err := strconv.ParseUint(chi.URLParam(r, "track_id"), 10, 64)
	return library.TrackID(v), err
}

// listAlbums handles GET /api/albums.
func (h *handler) listAlbums(w http.ResponseWriter, r *http.Request) {
	lib := h.currentLibrary(w)
	if lib == nil {
		return
	}
	out := make([]albumJSON, len(lib.Albums))
	for i, a := range lib.Albums {
		out[i] = toAlbumJSON(lib, a)
	}
	writeJSON(w, http.StatusOK, out)
}

// getAlbum handles GET /api/album/:album_id.
func (h *handler) getAlbum(w http.ResponseWriter, r *http.Request) {
	lib := h.currentLibrary(w)
	if lib == nil {
		return
	}
	albumID, err := parseAlbumID(r)
	if err != nil {
		badRequest(w, "malformed album_id")
		return
	}
	album, ok := lib.AlbumByID(albumID)
	if !ok {
		notFound(w, "no such album")
		return
	}
	tracks := lib.TracksOfAlbum(albumID)
	trackOut := make([]trackJSON, len(tracks))
	for i, t := range tracks {
		trackOut[i] = toTrackJSON(lib, t)
	}
	writeJSON(w, http.StatusOK, struct {
		albumJSON
		Tracks []trackJSON `json:"tracks"`
	}{toAlbumJSON(lib, *album), trackOut})
}

// getArtist handles GET /api/artist/:artist_id.
func (h *handler) getArtist(w http.ResponseWriter, r *http.Request) {
	lib := h.currentLibrary(w)
	if lib == nil {
		return
	}
	artistID, err := parseArtistID(r)
	if err != nil {
		badRequest(w, "malformed artist_id")
		return
	}
	artist, ok := lib.ArtistByID(artistID)
	if !ok {
		notFound(w, "no such artist")
		return
	}
	albums := lib.AlbumsByArtist(artistID)
	sortAlbumsChronologically(albums)
	albumOut := make([]albumJSON, len(albums))
	for i, a := range albums {
		albumOut[i] = toAlbumJSON(lib, a)
	}
	writeJSON(w, http.StatusOK, struct {
		artistJSON
		Albums []albumJSON `json:"albums"`
	}{toArtistJSON(lib, *artist), albumOut})
}

// search handles GET /api/search?q=...
func (h *handler) search(w http.ResponseWriter, r *http.Request) {
	lib := h.currentLibrary(w)
	if lib == nil {
		return
	}
	results := h.index.Search(r.URL.Query().Get("q"))

	artists := make([]artistJSON, 0, len(results.Artists))
	for _, id := range results.Artists {
		if a, ok := lib.ArtistByID(id); ok {
			artists = append(artists, toArtistJSON(lib, *a))
		}
	}
	albums := make([]albumJSON, 0, len(results.Albums))
	for _, id := range results.Albums {
		if a, ok := lib.AlbumByID(id); ok {
			albums = append(albums, toAlbumJSON(lib, *a))
		}
	}
	tracks := make([]trackJSON, 0, len(results.Tracks))
	for _, id := range results.Tracks {
		if t, ok := lib.TrackByID(id); ok {
			tracks = append(tracks, toTrackJSON(lib, *t))
		}
	}

	writeJSON(w, http.StatusOK, struct {
		Artists []artistJSON `json:"artists"`
		Albums  []albumJSON  `json:"albums"`
		Tracks  []trackJSON  `json:"tracks"`
	}{artists, albums, tracks})
}

// stats handles GET /api/stats.
func (h *handler) stats(w http.ResponseWriter, r *http.Request) {
	lib := h.currentLibrary(w)
	if lib == nil {
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Tracks  int `json:"tracks"`
		Albums  int `json:"albums"`
		Artists int `json:"artists"`
	}{len(lib.Tracks), len(lib.Albums), len(lib.Artists)})
}
