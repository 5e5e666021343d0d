// Package scanner implements component C: the filesystem walk, metadata
// extraction, model build, and analyzer phases that keep the library
// current with what is on disk.
package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/musium/musium/internal/analysis"
	"github.com/musium/musium/internal/flac"
	"github.com/musium/musium/internal/library"
	"github.com/musium/musium/internal/shared"
	"github.com/musium/musium/internal/store"
	"github.com/musium/musium/internal/thumbnail"
)

// writerChannelFactor sizes the row channel relative to the worker count
// (§4.3 phase 3: "bounded capacity equal to 2 × N").
const writerChannelFactor = 2

// Scanner owns one full scan cycle: discovery, reconciliation, extraction,
// model build, and the loudness/waveform/thumbnail analyzer passes.
type Scanner struct {
	libraryPath string
	store       *store.Store
	workers     int
	logger      shared.Logger
	onModel     func(*library.Library)

	mu      sync.Mutex
	status  *Status
	running bool
}

// New creates a scanner. workers <= 0 defaults to runtime.NumCPU() (§4.3:
// "N = physical_cores"). onModel is called with every freshly built model.
func New(libraryPath string, st *store.Store, workers int, logger shared.Logger, onModel func(*library.Library)) *Scanner {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Scanner{
		libraryPath: libraryPath,
		store:       st,
		workers:     workers,
		logger:      logger,
		onModel:     onModel,
		status:      &Status{Stage: StageDone},
	}
}

// Status returns the current (or last completed) scan's status.
func (sc *Scanner) Status() Status {
	sc.mu.Lock()
	st := sc.status
	sc.mu.Unlock()
	return st.Snapshot()
}

// Start launches a scan in the background if one is not already running
// (§6 `/api/scan/start` is idempotent) and returns the status snapshot.
func (sc *Scanner) Start(ctx context.Context) Status {
	sc.mu.Lock()
	if sc.running {
		st := sc.status
		sc.mu.Unlock()
		return st.Snapshot()
	}
	sc.running = true
	sc.status = &Status{Stage: StageDiscovering}
	status := sc.status
	sc.mu.Unlock()

	go func() {
		defer func() {
			sc.mu.Lock()
			sc.running = false
			sc.mu.Unlock()
		}()
		if err := sc.run(ctx, status); err != nil {
			sc.logger.Error("scan: %v", err)
			status.setError(err)
		}
	}()

	return status.Snapshot()
}

func (sc *Scanner) run(ctx context.Context, status *Status) error {
	filenames, err := sc.discover(status)
	if err != nil {
		return fmt.Errorf("discover: %w", err)
	}

	status.setStage(StagePreprocessingMeta)
	toExtract, toDelete, err := sc.reconcile(ctx, filenames, status)
	if err != nil {
		return fmt.Errorf("reconcile: %w", err)
	}

	status.setStage(StageExtractingMeta)
	if err := sc.extract(ctx, toExtract, toDelete, status); err != nil {
		return fmt.Errorf("extract: %w", err)
	}

	status.setStage(StageIndexingMeta)
	lib, err := sc.buildModel(ctx)
	if err != nil {
		return fmt.Errorf("build model: %w", err)
	}
	if sc.onModel != nil {
		sc.onModel(lib)
	}

	status.setStage(StagePreprocessingLoud)
	if err := sc.analyzeLoudness(ctx, lib, status); err != nil {
		return fmt.Errorf("analyze loudness: %w", err)
	}

	status.setStage(StagePreprocessingThumbs)
	if err := sc.generateThumbnails(ctx, lib, status); err != nil {
		return fmt.Errorf("generate thumbnails: %w", err)
	}

	status.setStage(StageDone)
	return nil
}

// discover walks libraryPath for .flac files (§4.3 phase 1).
func (sc *Scanner) discover(status *Status) ([]string, error) {
	var filenames []string
	err := filepath.WalkDir(sc.libraryPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(strings.ToLower(d.Name()), ".flac") {
			filenames = append(filenames, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(filenames)
	status.setDiscovered(len(filenames))
	return filenames, nil
}

// reconcile classifies discovered files against what the store already
// knows (§4.3 phase 2): unchanged files are skipped entirely, new/changed
// files need extraction, and rows with no file on disk are deleted.
func (sc *Scanner) reconcile(ctx context.Context, filenames []string, status *Status) (toExtract []string, toDelete []string, err error) {
	known, err := sc.store.ListIDMTimes(ctx)
	if err != nil {
		return nil, nil, err
	}
	knownMTime := make(map[string]time.Time, len(known))
	for _, k := range known {
		knownMTime[k.Filename] = k.MTime
	}

	onDisk := make(map[string]bool, len(filenames))
	for _, f := range filenames {
		onDisk[f] = true
		info, statErr := statMTime(f)
		if statErr != nil {
			sc.logger.Warning("scan: stat %s: %v", f, statErr)
			continue
		}
		existing, known := knownMTime[f]
		if !known || existing.UnixMicro() != info.UnixMicro() {
			toExtract = append(toExtract, f)
		}
	}
	for filename := range knownMTime {
		if !onDisk[filename] {
			toDelete = append(toDelete, filename)
		}
	}

	sort.Strings(toExtract)
	sort.Strings(toDelete)
	status.setMetadataTarget(len(toExtract))
	return toExtract, toDelete, nil
}

// extract runs an N-worker pool over toExtract, each reading a file's tags
// via component A and sending the resulting row to a single writer
// goroutine (§4.3 phase 3). Per-file parse failures are logged and
// excluded from the model; they do not abort the scan.
func (sc *Scanner) extract(ctx context.Context, toExtract, toDelete []string, status *Status) error {
	rows := make(chan store.FileMetadataRow, sc.workers*writerChannelFactor)
	writerErr := make(chan error, 1)

	go sc.writeRows(ctx, rows, toDelete, writerErr, status)

	sem := semaphore.NewWeighted(int64(sc.workers))
	var wg sync.WaitGroup
	for _, filename := range toExtract {
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func(filename string) {
			defer wg.Done()
			defer sem.Release(1)
			row, ok := sc.extractOne(filename)
			if !ok {
				return
			}
			select {
			case rows <- row:
			case <-ctx.Done():
			}
		}(filename)
	}
	wg.Wait()
	close(rows)

	return <-writerErr
}

func (sc *Scanner) extractOne(filename string) (store.FileMetadataRow, bool) {
	desc, err := flac.ReadFile(filename)
	if err != nil {
		sc.logger.Warning("scan: %s: %v", filename, err)
		return store.FileMetadataRow{}, false
	}
	mtime, err := statMTime(filename)
	if err != nil {
		sc.logger.Warning("scan: stat %s: %v", filename, err)
		return store.FileMetadataRow{}, false
	}

	t := desc.Tags
	return store.FileMetadataRow{
		Filename:                  filename,
		FileMTime:                 mtime,
		ImportedAt:                time.Now(),
		SampleRateHz:              desc.StreamInfo.SampleRateHz,
		BitsPerSample:             desc.StreamInfo.BitsPerSample,
		ChannelCount:              desc.StreamInfo.ChannelCount,
		DurationSamples:           desc.StreamInfo.TotalSamples,
		Album:                     t.Album,
		AlbumArtist:               t.AlbumArtist,
		AlbumArtists:              t.AlbumArtists,
		AlbumArtistSort:           t.AlbumArtistSort,
		AlbumArtistsSort:          t.AlbumArtistsSort,
		Artist:                    t.Artist,
		MusicBrainzAlbumArtistIDs: t.MusicBrainzAlbumArtistIDs,
		MusicBrainzAlbumID:        t.MusicBrainzAlbumID,
		MusicBrainzTrackID:        t.MusicBrainzTrackID,
		DiscNumber:                t.DiscNumber,
		TrackNumber:               t.TrackNumber,
		OriginalDate:              t.EffectiveOriginalDate(),
		Date:                      t.Date,
		Title:                     t.Title,
	}, true
}

// writeRows is the single DB writer thread (§4.3 phase 3, §5): it commits
// in batches, retrying a failed batch once before failing the scan (§7).
func (sc *Scanner) writeRows(ctx context.Context, rows <-chan store.FileMetadataRow, toDelete []string, writerErr chan<- error, status *Status) {
	const batchSize = 200

	commitBatch := func(pending []store.FileMetadataRow, deletes []string) error {
		var lastErr error
		for attempt := 0; attempt < 2; attempt++ {
			batch, err := sc.store.BeginBatch(ctx)
			if err != nil {
				lastErr = err
				continue
			}
			ok := true
			for _, row := range pending {
				if err := batch.Upsert(ctx, row); err != nil {
					lastErr = err
					ok = false
					break
				}
			}
			if ok {
				for _, filename := range deletes {
					if err := batch.Delete(ctx, filename); err != nil {
						lastErr = err
						ok = false
						break
					}
				}
			}
			if !ok {
				batch.Rollback()
				continue
			}
			if err := batch.Commit(); err != nil {
				lastErr = err
				continue
			}
			return nil
		}
		return fmt.Errorf("store: batch commit failed after retry: %w", lastErr)
	}

	var pending []store.FileMetadataRow
	for row := range rows {
		pending = append(pending, row)
		status.incMetadataProcessed()
		if len(pending) >= batchSize {
			if err := commitBatch(pending, nil); err != nil {
				writerErr <- err
				return
			}
			pending = pending[:0]
		}
	}
	if err := commitBatch(pending, toDelete); err != nil {
		writerErr <- err
		return
	}
	writerErr <- nil
}

// buildModel reads every row back in filename order and reduces it into
// the in-memory library (§4.3 phase 4, §4.4).
func (sc *Scanner) buildModel(ctx context.Context) (*library.Library, error) {
	rows, err := sc.store.ListByFilename(ctx)
	if err != nil {
		return nil, err
	}
	lib, skipped, err := library.Build(rows)
	if err != nil {
		return nil, err
	}
	for _, s := range skipped {
		sc.logger.Warning("scan: skipped %s: %s", s.Filename, s.Reason)
	}

	ratings, err := sc.store.ListRatings(ctx)
	if err != nil {
		return nil, err
	}
	for trackID, rating := range ratings {
		if track, ok := lib.TrackByID(library.TrackID(trackID)); ok {
			track.Rating = library.Rating(rating)
		}
	}
	return lib, nil
}

// analyzeLoudness measures integrated loudness for every track/album
// lacking a row in the store (§4.5). Tracks are measured over the same
// N-size pool; albums are then combined one after another. Idempotent:
// present rows are skipped.
func (sc *Scanner) analyzeLoudness(ctx context.Context, lib *library.Library, status *Status) error {
	status.setStage(StageAnalyzingLoudness)

	var pendingTracks []library.Track
	for _, track := range lib.Tracks {
		has, err := sc.store.HasTrackLoudness(ctx, uint64(track.ID))
		if err != nil {
			return err
		}
		if !has {
			pendingTracks = append(pendingTracks, track)
		}
	}
	var pendingAlbums []library.Album
	for _, album := range lib.Albums {
		has, err := sc.store.HasAlbumLoudness(ctx, uint64(album.ID))
		if err != nil {
			return err
		}
		if !has {
			pendingAlbums = append(pendingAlbums, album)
		}
	}
	status.setLoudnessTargets(len(pendingTracks), len(pendingAlbums))

	sem := semaphore.NewWeighted(int64(sc.workers))
	var wg sync.WaitGroup
	for _, track := range pendingTracks {
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func(track library.Track) {
			defer wg.Done()
			defer sem.Release(1)
			sc.measureTrackLoudness(ctx, track, status)
		}(track)
	}
	wg.Wait()

	for _, album := range pendingAlbums {
		if err := sc.combineAlbumLoudness(ctx, lib, album); err != nil {
			sc.logger.Warning("scan: album loudness %d: %v", album.ID, err)
		}
		status.incAlbumLoudnessProcessed()
	}
	return nil
}

func (sc *Scanner) measureTrackLoudness(ctx context.Context, track library.Track, status *Status) {
	defer status.incTrackLoudnessProcessed()

	dec, err := flac.OpenDecoder(track.Filename)
	if err != nil {
		sc.logger.Warning("scan: loudness %s: %v", track.Filename, err)
		return
	}
	defer dec.Close()

	blocks, err := analysis.MeasureTrack(dec)
	if err != nil {
		sc.logger.Warning("scan: loudness %s: %v", track.Filename, err)
		return
	}
	lufs := analysis.IntegratedLoudness(blocks)
	if err := sc.store.PutTrackLoudness(ctx, uint64(track.ID), lufs); err != nil {
		sc.logger.Warning("scan: store loudness %s: %v", track.Filename, err)
	}

	waveform, err := sc.recomputeWaveform(track.Filename)
	if err != nil {
		sc.logger.Warning("scan: waveform %s: %v", track.Filename, err)
		return
	}
	if err := sc.store.PutWaveform(ctx, uint64(track.ID), waveform); err != nil {
		sc.logger.Warning("scan: store waveform %s: %v", track.Filename, err)
	}
}

func (sc *Scanner) recomputeWaveform(filename string) ([]byte, error) {
	dec, err := flac.OpenDecoder(filename)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return analysis.ComputeWaveform(dec)
}

// combineAlbumLoudness re-decodes every track of album and pools their
// gating blocks, preserving BS.1770 semantics (§4.5: "combine per-track
// gating windows, not per-track LUFS").
func (sc *Scanner) combineAlbumLoudness(ctx context.Context, lib *library.Library, album library.Album) error {
	tracks := lib.TracksOfAlbum(album.ID)
	perTrack := make([][]analysis.Block, 0, len(tracks))
	for _, track := range tracks {
		dec, err := flac.OpenDecoder(track.Filename)
		if err != nil {
			sc.logger.Warning("scan: album loudness %s: %v", track.Filename, err)
			continue
		}
		blocks, err := analysis.MeasureTrack(dec)
		dec.Close()
		if err != nil {
			sc.logger.Warning("scan: album loudness %s: %v", track.Filename, err)
			continue
		}
		perTrack = append(perTrack, blocks)
	}
	lufs := analysis.CombineAlbumLoudness(perTrack)
	return sc.store.PutAlbumLoudness(ctx, uint64(album.ID), lufs)
}

// generateThumbnails generates the bounded-size cover thumbnail for every
// album lacking one (§4.5, component E's thumbnail collaborator).
func (sc *Scanner) generateThumbnails(ctx context.Context, lib *library.Library, status *Status) error {
	status.setStage(StageGeneratingThumbs)

	var pending []library.Album
	for _, album := range lib.Albums {
		has, err := sc.store.HasThumbnail(ctx, uint64(album.ID))
		if err != nil {
			return err
		}
		if !has {
			pending = append(pending, album)
		}
	}
	status.setThumbnailTarget(len(pending))

	sem := semaphore.NewWeighted(int64(sc.workers))
	var wg sync.WaitGroup
	for _, album := range pending {
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func(album library.Album) {
			defer wg.Done()
			defer sem.Release(1)
			defer status.incThumbnailProcessed()
			sc.generateOneThumbnail(ctx, lib, album)
		}(album)
	}
	wg.Wait()

	status.setStage(StageLoadingThumbs)
	return nil
}

func (sc *Scanner) generateOneThumbnail(ctx context.Context, lib *library.Library, album library.Album) {
	tracks := lib.TracksOfAlbum(album.ID)
	if len(tracks) == 0 {
		return
	}
	cover, err := flac.ReadCoverPicture(tracks[0].Filename)
	if err != nil || cover == nil {
		return
	}
	thumb, err := thumbnail.Generate(cover.ImageData)
	if err != nil {
		sc.logger.Warning("scan: thumbnail %d: %v", album.ID, err)
		return
	}
	if err := sc.store.PutThumbnail(ctx, uint64(album.ID), thumb); err != nil {
		sc.logger.Warning("scan: store thumbnail %d: %v", album.ID, err)
	}
}
