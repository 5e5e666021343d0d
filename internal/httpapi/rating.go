package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/musium/musium/internal/library"
)

// setRating handles PUT /api/track/:track_id/rating/:n. Ratings are user
// state persisted independently of the rebuilt-from-files model (§6), so
// the write both persists to the store and republishes a copy of the
// current model with the one track's Rating updated — the model stays a
// single immutable snapshot per publication (§3.4), it is simply
// republished more often than on a rescan.
func (h *handler) setRating(w http.ResponseWriter, r *http.Request) {
	trackID, err := parseTrackID(r)
	if err != nil {
		badRequest(w, "malformed track_id")
		return
	}
	n, err := strconv.ParseInt(chi.URLParam(r, "n"), 10, 8)
	if err != nil || n < -1 || n > 2 {
		badRequest(w, "rating must be in [-1, 2]")
		return
	}
	rating := library.Rating(n)

	lib := h.model.Current()
	if lib == nil {
		notFound(w, "no such track")
		return
	}
	if _, ok := lib.TrackByID(trackID); !ok {
		notFound(w, "no such track")
		return
	}

	if err := h.store.SetTrackRating(r.Context(), uint64(trackID), int8(rating)); err != nil {
		internalError(w, err.Error())
		return
	}

	republished := *lib
	republished.Tracks = append([]library.Track(nil), lib.Tracks...)
	if track, ok := republished.TrackByID(trackID); ok {
		track.Rating = rating
	}
	h.model.Publish(&republished)

	writeJSON(w, http.StatusOK, struct {
		TrackID uint64 `json:"track_id"`
		Rating  int8   `json:"rating"`
	}{uint64(trackID), int8(rating)})
}
