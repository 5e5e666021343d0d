// Package interfaces declares the narrow contracts the HTTP API and CLI
// depend on, so they can be exercised against fakes in tests without
// pulling in the scanner, store, or player's concrete types.
package interfaces

import (
	"context"

	"github.com/musium/musium/internal/library"
	"github.com/musium/musium/internal/player/queue"
	"github.com/musium/musium/internal/scanner"
	"github.com/musium/musium/internal/search"
)

// LibraryModel provides read and republish access to the currently
// published library model (§3.4). Publish is used both by the scanner
// after a rescan and by the HTTP API after a rating change, which
// republishes a copy of the model with one track's rating updated rather
// than mutating the shared, concurrently-read snapshot in place.
type LibraryModel interface {
	Current() *library.Library
	Publish(*library.Library)
}

// SearchService answers free-text queries against the current model
// (§4.6).
type SearchService interface {
	Search(query string) search.Results
}

// ScannerService drives and reports on scan cycles (§4.3).
type ScannerService interface {
	Start(ctx context.Context) scanner.Status
	Status() scanner.Status
}

// PlaybackService is the HTTP API's view of the player (§4.7, §6).
type PlaybackService interface {
	Enqueue(trackID library.TrackID) uint64
	Remove(queueID uint64) bool
	Shuffle()
	ClearAfterCurrent()
	QueueSnapshot() ([]queue.QueuedTrack, bool)
	HeadPositionSeconds() float64
	Volume() (volumeDB, cutoffHz float64)
	VolumeUp() float64
	VolumeDown() float64
	FilterUp() float64
	FilterDown() float64
}
