package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/musium/musium/internal/player/queue"
)

type queuedTrackJSON struct {
	QueueID         uint64  `json:"queue_id"`
	TrackID         uint64  `json:"track_id"`
	EnqueuedAt      int64   `json:"enqueued_at"`
	PositionSeconds float64 `json:"position_seconds,omitempty"`
}

type queueResponse struct {
	Tracks    []queuedTrackJSON `json:"tracks"`
	Buffering bool              `json:"buffering"`
}

func (h *handler) toQueueResponse(items []queue.QueuedTrack, buffering bool) queueResponse {
	out := make([]queuedTrackJSON, len(items))
	for i, it := range items {
		out[i] = queuedTrackJSON{
			QueueID:    it.QueueID,
			TrackID:    uint64(it.TrackID),
			EnqueuedAt: it.EnqueuedAt.Unix(),
		}
	}
	if len(out) > 0 {
		out[0].PositionSeconds = h.player.HeadPositionSeconds()
	}
	return queueResponse{Tracks: out, Buffering: buffering}
}

// getQueue handles GET /api/queue.
func (h *handler) getQueue(w http.ResponseWriter, r *http.Request) {
	items, buffering := h.player.QueueSnapshot()
	writeJSON(w, http.StatusOK, h.toQueueResponse(items, buffering))
}

// enqueue handles PUT /api/queue/:track_id.
func (h *handler) enqueue(w http.ResponseWriter, r *http.Request) {
	trackID, err := parseTrackID(r)
	if err != nil {
		badRequest(w, "malformed track_id")
		return
	}
	lib := h.model.Current()
	if lib != nil {
		if _, ok := lib.TrackByID(trackID); !ok {
			notFound(w, "no such track")
			return
		}
	}
	queueID := h.player.Enqueue(trackID)
	writeJSON(w, http.StatusOK, struct {
		QueueID string `json:"queue_id"`
	}{strconv.FormatUint(queueID, 10)})
}

// dequeue handles DELETE /api/queue/:queue_id.
func (h *handler) dequeue(w http.ResponseWriter, r *http.Request) {
	queueID, err := strconv.ParseUint(chi.URLParam(r, "queue_id"), 10, 64)
	if err != nil {
		badRequest(w, "malformed queue_id")
		return
	}
	if !h.player.Remove(queueID) {
		notFound(w, "no such queue entry")
		return
	}
	items, buffering := h.player.QueueSnapshot()
	writeJSON(w, http.StatusOK, h.toQueueResponse(items, buffering))
}

// shuffleQueue handles POST /api/queue/shuffle.
func (h *handler) shuffleQueue(w http.ResponseWriter, r *http.Request) {
	h.player.Shuffle()
	items, buffering := h.player.QueueSnapshot()
	writeJSON(w, http.StatusOK, h.toQueueResponse(items, buffering))
}

// clearQueue handles POST /api/queue/clear.
func (h *handler) clearQueue(w http.ResponseWriter, r *http.Request) {
	h.player.ClearAfterCurrent()
	items, buffering := h.player.QueueSnapshot()
	writeJSON(w, http.StatusOK, h.toQueueResponse(items, buffering))
}
