package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/musium/musium/internal/library"
	"github.com/musium/musium/internal/player/queue"
	"github.com/musium/musium/internal/scanner"
	"github.com/musium/musium/internal/search"
	"github.com/musium/musium/internal/store"
)

const (
	albumFoo  = "11111111-1111-1111-1111-111111111111"
	artistFoo = "22222222-2222-2222-2222-222222222222"
	trackFoo  = "33333333-3333-3333-3333-333333333333"
)

func buildTestLibrary(t *testing.T) *library.Library {
	t.Helper()
	row := store.FileMetadataRow{
		Filename:                  "a.flac",
		ImportedAt:                time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Album:                     "Origin of Symmetry",
		AlbumArtist:               "Muse",
		Artist:                    "Muse",
		MusicBrainzAlbumArtistIDs: []string{artistFoo},
		MusicBrainzAlbumID:        albumFoo,
		MusicBrainzTrackID:        trackFoo,
		DiscNumber:                1,
		TrackNumber:               1,
		Date:                      "2001-07-16",
		Title:                     "New Born",
	}
	lib, skipped, err := library.Build([]store.FileMetadataRow{row})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(skipped) != 0 {
		t.Fatalf("unexpected skipped rows: %v", skipped)
	}
	return lib
}

// fakeScanner and fakePlayer satisfy interfaces.ScannerService /
// interfaces.PlaybackService without the real subsystems' I/O.
type fakeScanner struct {
	status scanner.Status
}

func (f *fakeScanner) Start(ctx context.Context) scanner.Status { return f.status }
func (f *fakeScanner) Status() scanner.Status                   { return f.status }

type fakePlayer struct {
	queue             *queue.Queue
	volumeDB, cutoffHz float64
}

func (f *fakePlayer) Enqueue(trackID library.TrackID) uint64 { return f.queue.Enqueue(trackID, time.Now()) }
func (f *fakePlayer) Remove(queueID uint64) bool             { return f.queue.Remove(queueID) }
func (f *fakePlayer) Shuffle()                               {}
func (f *fakePlayer) ClearAfterCurrent()                     {}
func (f *fakePlayer) QueueSnapshot() ([]queue.QueuedTrack, bool) {
	return f.queue.Snapshot(), false
}
func (f *fakePlayer) HeadPositionSeconds() float64 { return 0 }
func (f *fakePlayer) Volume() (float64, float64) { return f.volumeDB, f.cutoffHz }
func (f *fakePlayer) VolumeUp() float64          { f.volumeDB++; return f.volumeDB }
func (f *fakePlayer) VolumeDown() float64        { f.volumeDB--; return f.volumeDB }
func (f *fakePlayer) FilterUp() float64          { f.cutoffHz += 5; return f.cutoffHz }
func (f *fakePlayer) FilterDown() float64        { f.cutoffHz -= 5; return f.cutoffHz }

func newTestHandler(t *testing.T, lib *library.Library) (*handler, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	model := library.NewHolder()
	index := search.NewHolder()
	if lib != nil {
		model.Publish(lib)
		index.Publish(search.Build(lib))
	}

	return &handler{
		model:   model,
		index:   index,
		scanner: &fakeScanner{status: scanner.Status{Stage: scanner.StageDone}},
		player:  &fakePlayer{queue: queue.New()},
		store:   st,
	}, st
}

func newTestRouter(h *handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/api/albums", h.listAlbums)
	r.Get("/api/album/{album_id}", h.getAlbum)
	r.Get("/api/artist/{artist_id}", h.getArtist)
	r.Get("/api/search", h.search)
	r.Get("/api/stats", h.stats)
	r.Get("/api/queue", h.getQueue)
	r.Put("/api/queue/{track_id}", h.enqueue)
	r.Get("/api/volume", h.getVolume)
	r.Post("/api/volume/up", h.volumeUp)
	r.Put("/api/track/{track_id}/rating/{n}", h.setRating)
	r.Get("/api/scan/status", h.scanStatus)
	return r
}

func doRequest(t *testing.T, handler http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestListAlbumsReturnsEveryAlbum(t *testing.T) {
	h, _ := newTestHandler(t, buildTestLibrary(t))
	r := newTestRouter(h)

	rec := doRequest(t, r, http.MethodGet, "/api/albums")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var albums []albumJSON
	if err := json.Unmarshal(rec.Body.Bytes(), &albums); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(albums) != 1 {
		t.Fatalf("len(albums) = %d, want 1", len(albums))
	}
	if albums[0].Title != "Origin of Symmetry" {
		t.Errorf("Title = %q, want %q", albums[0].Title, "Origin of Symmetry")
	}
}

func TestGetAlbumUnknownIDReturns404(t *testing.T) {
	h, _ := newTestHandler(t, buildTestLibrary(t))
	r := newTestRouter(h)

	rec := doRequest(t, r, http.MethodGet, "/api/album/999999999")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Error == "" {
		t.Error("expected a non-empty error message")
	}
}

func TestListAlbumsBeforeFirstScanReturns503(t *testing.T) {
	h, _ := newTestHandler(t, nil)
	r := newTestRouter(h)

	rec := doRequest(t, r, http.MethodGet, "/api/albums")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestSearchFindsTrackByTitlePrefix(t *testing.T) {
	h, _ := newTestHandler(t, buildTestLibrary(t))
	r := newTestRouter(h)

	rec := doRequest(t, r, http.MethodGet, "/api/search?q=new")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var results struct {
		Tracks []trackJSON `json:"tracks"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &results); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(results.Tracks) != 1 {
		t.Fatalf("len(tracks) = %d, want 1", len(results.Tracks))
	}
}

func TestStatsCountsEveryEntity(t *testing.T) {
	h, _ := newTestHandler(t, buildTestLibrary(t))
	r := newTestRouter(h)

	rec := doRequest(t, r, http.MethodGet, "/api/stats")
	var stats struct{ Tracks, Albums, Artists int }
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if stats.Tracks != 1 || stats.Albums != 1 || stats.Artists != 1 {
		t.Errorf("stats = %+v, want all 1", stats)
	}
}

func TestEnqueueUnknownTrackReturns404(t *testing.T) {
	h, _ := newTestHandler(t, buildTestLibrary(t))
	r := newTestRouter(h)

	rec := doRequest(t, r, http.MethodPut, "/api/queue/999999999")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestEnqueueKnownTrackAppearsInQueue(t *testing.T) {
	lib := buildTestLibrary(t)
	h, _ := newTestHandler(t, lib)
	r := newTestRouter(h)

	trackID := lib.Tracks[0].ID
	path := "/api/queue/" + strconv.FormatUint(uint64(trackID), 10)
	rec := doRequest(t, r, http.MethodPut, path)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	rec = doRequest(t, r, http.MethodGet, "/api/queue")
	var body struct {
		Tracks []queuedTrackJSON `json:"tracks"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(body.Tracks) != 1 || body.Tracks[0].TrackID != uint64(trackID) {
		t.Errorf("queue = %+v, want one entry for track %d", body.Tracks, trackID)
	}
}

func TestVolumeUpStepsByOneDB(t *testing.T) {
	h, _ := newTestHandler(t, buildTestLibrary(t))
	r := newTestRouter(h)

	before := doRequest(t, r, http.MethodGet, "/api/volume")
	var beforeBody volumeResponse
	json.Unmarshal(before.Body.Bytes(), &beforeBody)

	doRequest(t, r, http.MethodPost, "/api/volume/up")

	after := doRequest(t, r, http.MethodGet, "/api/volume")
	var afterBody volumeResponse
	json.Unmarshal(after.Body.Bytes(), &afterBody)

	if afterBody.VolumeDB != beforeBody.VolumeDB+1 {
		t.Errorf("VolumeDB = %v, want %v", afterBody.VolumeDB, beforeBody.VolumeDB+1)
	}
}

func TestSetRatingPersistsAndRepublishesModel(t *testing.T) {
	lib := buildTestLibrary(t)
	h, st := newTestHandler(t, lib)
	r := newTestRouter(h)

	trackID := lib.Tracks[0].ID
	path := "/api/track/" + strconv.FormatUint(uint64(trackID), 10) + "/rating/2"
	rec := doRequest(t, r, http.MethodPut, path)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	republished := h.model.Current()
	track, ok := republished.TrackByID(trackID)
	if !ok {
		t.Fatalf("track %d missing after republish", trackID)
	}
	if track.Rating != library.RatingLoved {
		t.Errorf("Rating = %v, want %v", track.Rating, library.RatingLoved)
	}

	stored, err := st.GetTrackRating(context.Background(), uint64(trackID))
	if err != nil {
		t.Fatalf("GetTrackRating: %v", err)
	}
	if stored != 2 {
		t.Errorf("persisted rating = %d, want 2", stored)
	}
}

func TestSetRatingOutOfRangeReturns400(t *testing.T) {
	lib := buildTestLibrary(t)
	h, _ := newTestHandler(t, lib)
	r := newTestRouter(h)

	path := "/api/track/" + strconv.FormatUint(uint64(lib.Tracks[0].ID), 10) + "/rating/7"
	rec := doRequest(t, r, http.MethodPut, path)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestScanStatusReflectsScannerService(t *testing.T) {
	h, _ := newTestHandler(t, buildTestLibrary(t))
	r := newTestRouter(h)

	rec := doRequest(t, r, http.MethodGet, "/api/scan/status")
	var status scanner.Status
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if status.Stage != scanner.StageDone {
		t.Errorf("Stage = %q, want %q", status.Stage, scanner.StageDone)
	}
}
