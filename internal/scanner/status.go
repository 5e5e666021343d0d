package scanner

import "sync"

// Stage names the scan's current phase (§4.3); the HTTP API and web client
// surface these verbatim.
type Stage string

const (
	StageDiscovering          Stage = "discovering"
	StagePreprocessingMeta    Stage = "preprocessing_metadata"
	StageExtractingMeta       Stage = "extracting_metadata"
	StageIndexingMeta         Stage = "indexing_metadata"
	StagePreprocessingLoud    Stage = "preprocessing_loudness"
	StageAnalyzingLoudness    Stage = "analyzing_loudness"
	StagePreprocessingThumbs  Stage = "preprocessing_thumbnails"
	StageGeneratingThumbs     Stage = "generating_thumbnails"
	StageLoadingThumbs        Stage = "loading_thumbnails"
	StageDone                 Stage = "done"
)

// Status is the shared record every worker updates as it makes progress
// (§4.3). Readers see monotonically advancing counters within a stage.
type Status struct {
	mu sync.Mutex

	Stage Stage `json:"stage"`

	FilesDiscovered int `json:"files_discovered"`

	FilesToProcessMetadata int `json:"files_to_process_metadata"`
	FilesProcessedMetadata int `json:"files_processed_metadata"`

	TracksToProcessLoudness int `json:"tracks_to_process_loudness"`
	TracksProcessedLoudness int `json:"tracks_processed_loudness"`
	AlbumsToProcessLoudness int `json:"albums_to_process_loudness"`
	AlbumsProcessedLoudness int `json:"albums_processed_loudness"`

	FilesToProcessThumbnails int `json:"files_to_process_thumbnails"`
	FilesProcessedThumbnails int `json:"files_processed_thumbnails"`

	Error string `json:"error,omitempty"`
}

// Snapshot returns a copy of the status safe to serialize without holding
// the lock the scanner is concurrently writing under.
func (s *Status) Snapshot() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		Stage:                    s.Stage,
		FilesDiscovered:          s.FilesDiscovered,
		FilesToProcessMetadata:   s.FilesToProcessMetadata,
		FilesProcessedMetadata:   s.FilesProcessedMetadata,
		TracksToProcessLoudness:  s.TracksToProcessLoudness,
		TracksProcessedLoudness:  s.TracksProcessedLoudness,
		AlbumsToProcessLoudness:  s.AlbumsToProcessLoudness,
		AlbumsProcessedLoudness:  s.AlbumsProcessedLoudness,
		FilesToProcessThumbnails: s.FilesToProcessThumbnails,
		FilesProcessedThumbnails: s.FilesProcessedThumbnails,
		Error:                    s.Error,
	}
}

func (s *Status) setStage(stage Stage) {
	s.mu.Lock()
	s.Stage = stage
	s.mu.Unlock()
}

func (s *Status) setError(err error) {
	s.mu.Lock()
	s.Error = err.Error()
	s.mu.Unlock()
}

func (s *Status) setDiscovered(n int) {
	s.mu.Lock()
	s.FilesDiscovered = n
	s.mu.Unlock()
}

func (s *Status) setMetadataTarget(n int) {
	s.mu.Lock()
	s.FilesToProcessMetadata = n
	s.mu.Unlock()
}

func (s *Status) incMetadataProcessed() {
	s.mu.Lock()
	s.FilesProcessedMetadata++
	s.mu.Unlock()
}

func (s *Status) setLoudnessTargets(tracks, albums int) {
	s.mu.Lock()
	s.TracksToProcessLoudness = tracks
	s.AlbumsToProcessLoudness = albums
	s.mu.Unlock()
}

func (s *Status) incTrackLoudnessProcessed() {
	s.mu.Lock()
	s.TracksProcessedLoudness++
	s.mu.Unlock()
}

func (s *Status) incAlbumLoudnessProcessed() {
	s.mu.Lock()
	s.AlbumsProcessedLoudness++
	s.mu.Unlock()
}

func (s *Status) setThumbnailTarget(n int) {
	s.mu.Lock()
	s.FilesToProcessThumbnails = n
	s.mu.Unlock()
}

func (s *Status) incThumbnailProcessed() {
	s.mu.Lock()
	s.FilesProcessedThumbnails++
	s.mu.Unlock()
}
