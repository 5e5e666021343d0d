package httpapi

import (
	"context"
	"net/http"
)

// scanStatus handles GET /api/scan/status.
func (h *handler) scanStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.scanner.Status())
}

// scanStart handles POST /api/scan/start. Idempotent: a scan already in
// flight is left running and its status is returned as-is (§6). The scan
// runs detached from the request context — it must outlive this response.
func (h *handler) scanStart(w http.ResponseWriter, r *http.Request) {
	status := h.scanner.Start(context.Background())
	writeJSON(w, http.StatusOK, status)
}
