package httpapi

import (
	"errors"
	"net/http"

	"github.com/musium/musium/internal/flac"
	"github.com/musium/musium/internal/store"
)

// getCover handles GET /api/cover/:album_id: the full-resolution picture
// read live from the first track's FLAC file (§4.1, §6). An unknown
// album, an unreadable file or a missing cover answers a JSON 404; once
// the image bytes are being written, a write error is not reported.
func (h *handler) getCover(w http.ResponseWriter, r *http.Request) {
	lib := h.currentLibrary(w)
	if lib == nil {
		return
	}
	albumID, err := parseAlbumID(r)
	if err != nil {
		badRequest(w, "malformed album_id")
		return
	}
	tracks := lib.TracksOfAlbum(albumID)
	if len(tracks) == 0 {
		notFound(w, "no such album")
		return
	}
	cover, err := flac.ReadCoverPicture(tracks[0].Filename)
	if err != nil || cover == nil {
		notFound(w, "no cover art")
		return
	}
	w.Header().Set("Content-Type", cover.MIME)
	_, _ = w.Write(cover.ImageData)
}

// getThumb handles GET /api/thumb/:album_id.
func (h *handler) getThumb(w http.ResponseWriter, r *http.Request) {
	albumID, err := parseAlbumID(r)
	if err != nil {
		badRequest(w, "malformed album_id")
		return
	}
	data, err := h.store.GetThumbnail(r.Context(), uint64(albumID))
	if errors.Is(err, store.ErrNotFound) {
		notFound(w, "no thumbnail")
		return
	}
	if err != nil {
		internalError(w, err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	_, _ = w.Write(data)
}

// getWaveform handles GET /api/waveform/:track_id.
func (h *handler) getWaveform(w http.ResponseWriter, r *http.Request) {
	trackID, err := parseTrackID(r)
	if err != nil {
		badRequest(w, "malformed track_id")
		return
	}
	data, err := h.store.GetWaveform(r.Context(), uint64(trackID))
	if errors.Is(err, store.ErrNotFound) {
		notFound(w, "no waveform")
		return
	}
	if err != nil {
		internalError(w, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = w.Write(data)
}

// getTrackFile handles GET /api/track/:track_id.flac.
func (h *handler) getTrackFile(w http.ResponseWriter, r *http.Request) {
	lib := h.currentLibrary(w)
	if lib == nil {
		return
	}
	trackID, err := parseTrackID(r)
	if err != nil {
		badRequest(w, "malformed track_id")
		return
	}
	track, ok := lib.TrackByID(trackID)
	if !ok {
		notFound(w, "no such track")
		return
	}
	http.ServeFile(w, r, track.Filename)
}
