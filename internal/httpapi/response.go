package httpapi

import (
	"encoding/json"
	"net/http"
)

// writeJSON encodes v as the response body. Field order comes from each
// JSON struct's declaration order (§4.8: "deterministic").
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorResponse is the body shape for every non-2xx JSON response (§7).
type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func notFound(w http.ResponseWriter, msg string)     { writeError(w, http.StatusNotFound, msg) }
func badRequest(w http.ResponseWriter, msg string)    { writeError(w, http.StatusBadRequest, msg) }
func internalError(w http.ResponseWriter, msg string) { writeError(w, http.StatusInternalServerError, msg) }
