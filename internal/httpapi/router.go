// Package httpapi exposes the daemon's library, playback and scan-control
// surface over HTTP (§4.8, route table in §6). It is thin: handlers
// translate requests into calls on the wired services and shape the JSON
// response, with no business logic of their own.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/musium/musium/internal/interfaces"
	"github.com/musium/musium/internal/services"
	"github.com/musium/musium/internal/store"
)

// NewRouter builds the full route table against c.
func NewRouter(c *services.Container) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	h := &handler{
		model:   c.Model,
		index:   c.Index,
		scanner: c.Scanner,
		player:  c.Player,
		store:   c.Store,
	}

	r.Get("/api/albums", h.listAlbums)
	r.Get("/api/album/{album_id}", h.getAlbum)
	r.Get("/api/artist/{artist_id}", h.getArtist)
	r.Get("/api/cover/{album_id}", h.getCover)
	r.Get("/api/thumb/{album_id}", h.getThumb)
	r.Get("/api/waveform/{track_id}", h.getWaveform)
	r.Get("/api/track/{track_id}.flac", h.getTrackFile)
	r.Get("/api/search", h.search)
	r.Get("/api/stats", h.stats)

	r.Get("/api/queue", h.getQueue)
	r.Put("/api/queue/{track_id}", h.enqueue)
	r.Delete("/api/queue/{queue_id}", h.dequeue)
	r.Post("/api/queue/shuffle", h.shuffleQueue)
	r.Post("/api/queue/clear", h.clearQueue)

	r.Get("/api/volume", h.getVolume)
	r.Post("/api/volume/up", h.volumeUp)
	r.Post("/api/volume/down", h.volumeDown)
	r.Post("/api/filter/up", h.filterUp)
	r.Post("/api/filter/down", h.filterDown)

	r.Put("/api/track/{track_id}/rating/{n}", h.setRating)

	r.Get("/api/scan/status", h.scanStatus)
	r.Post("/api/scan/start", h.scanStart)

	return r
}

// handler depends on the narrow interfaces each route needs rather than
// the whole service container, so it can be exercised against fakes.
type handler struct {
	model   interfaces.LibraryModel
	index   interfaces.SearchService
	scanner interfaces.ScannerService
	player  interfaces.PlaybackService
	store   *store.Store
}
