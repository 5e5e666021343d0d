package httpapi

import "net/http"

type volumeResponse struct {
	VolumeDB        float64 `json:"volume_db"`
	HighPassCutoffHz float64 `json:"high_pass_cutoff_hz"`
}

// getVolume handles GET /api/volume.
func (h *handler) getVolume(w http.ResponseWriter, r *http.Request) {
	volumeDB, cutoffHz := h.player.Volume()
	writeJSON(w, http.StatusOK, volumeResponse{VolumeDB: volumeDB, HighPassCutoffHz: cutoffHz})
}

// volumeUp handles POST /api/volume/up.
func (h *handler) volumeUp(w http.ResponseWriter, r *http.Request) {
	volumeDB := h.player.VolumeUp()
	_, cutoffHz := h.player.Volume()
	writeJSON(w, http.StatusOK, volumeResponse{VolumeDB: volumeDB, HighPassCutoffHz: cutoffHz})
}

// volumeDown handles POST /api/volume/down.
func (h *handler) volumeDown(w http.ResponseWriter, r *http.Request) {
	volumeDB := h.player.VolumeDown()
	_, cutoffHz := h.player.Volume()
	writeJSON(w, http.StatusOK, volumeResponse{VolumeDB: volumeDB, HighPassCutoffHz: cutoffHz})
}

// filterUp handles POST /api/filter/up.
func (h *handler) filterUp(w http.ResponseWriter, r *http.Request) {
	cutoffHz := h.player.FilterUp()
	volumeDB, _ := h.player.Volume()
	writeJSON(w, http.StatusOK, volumeResponse{VolumeDB: volumeDB, HighPassCutoffHz: cutoffHz})
}

// filterDown handles POST /api/filter/down.
func (h *handler) filterDown(w http.ResponseWriter, r *http.Request) {
	cutoffHz := h.player.FilterDown()
	volumeDB, _ := h.player.Volume()
	writeJSON(w, http.StatusOK, volumeResponse{VolumeDB: volumeDB, HighPassCutoffHz: cutoffHz})
}
