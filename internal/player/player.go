package player

import (
	"context"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/musium/musium/internal/flac"
	"github.com/musium/musium/internal/library"
	"github.com/musium/musium/internal/player/queue"
	"github.com/musium/musium/internal/shared"
	"github.com/musium/musium/internal/store"
)

// ringCapacitySeconds is the decoder's target buffer depth: deliberately
// large so disks may spin down between bursts (§4.7).
const ringCapacitySeconds = 10 * 60

// lowWaterSpinUpBudgetSeconds is subtracted from the low-water mark so the
// decoder wakes early enough to cover an empirical disk spin-up delay.
const lowWaterSpinUpBudgetSeconds = 30

const (
	minVolumeDB   = -60.0
	maxVolumeDB   = 0.0
	minCutoffHz   = 0.0
	maxCutoffHz   = 300.0
	volumeStepDB  = 1.0
	cutoffStepHz  = 5.0
)

// Player runs the decoder and output threads described in §4.7: a FIFO
// queue feeds a bounded PCM ring, the output thread applies gain and
// high-pass filtering and writes to the kernel audio sink, and track
// boundaries generate listens rows.
type Player struct {
	store  *store.Store
	queue  *queue.Queue
	logger shared.Logger
	life   *Lifecycle
	model  *library.Holder

	ringMu   sync.RWMutex
	ring     *Ring
	sink     *Sink
	highpass *HighPass

	idleTimeoutSeconds int

	mu                sync.Mutex
	volumeDB          float64
	cutoffHz          float64
	deviceSampleRate  int
	deviceChannels    int
	currentQueueID    uint64
	currentTrackID    library.TrackID
	currentListenID   int64
	decoderIdle       bool
	idleTimer         *time.Timer
	positionFrames    int64
}

// New creates a player reading its library model from holder, per §3.4's
// single-pointer-publication guarantee (the same holder the scanner
// publishes to and the search index/HTTP API read from).
func New(st *store.Store, q *queue.Queue, logger shared.Logger, life *Lifecycle, model *library.Holder, volumeDB, cutoffHz float64, idleTimeoutSeconds int) *Player {
	return &Player{
		store:              st,
		queue:              q,
		logger:             logger,
		life:               life,
		model:              model,
		ring:               NewRing(0), // sized in Start, once we know the sample rate
		sink:               NewSink(),
		highpass:           NewHighPass(),
		idleTimeoutSeconds: idleTimeoutSeconds,
		volumeDB:           volumeDB,
		cutoffHz:           cutoffHz,
	}
}

func (p *Player) currentModel() *library.Library {
	return p.model.Current()
}

func (p *Player) currentRing() *Ring {
	p.ringMu.RLock()
	defer p.ringMu.RUnlock()
	return p.ring
}

func (p *Player) setRing(r *Ring) {
	p.ringMu.Lock()
	p.ring = r
	p.ringMu.Unlock()
}

// Start launches the decoder and output threads. It returns once both
// goroutines have been spawned; they run until ctx is cancelled.
func (p *Player) Start(ctx context.Context) {
	go p.decodeLoop(ctx)
	go p.outputLoop(ctx)
}

// Enqueue appends trackID to the queue and returns its queue_id.
func (p *Player) Enqueue(trackID library.TrackID) uint64 {
	return p.queue.Enqueue(trackID, time.Now())
}

// Remove deletes queueID from the queue.
func (p *Player) Remove(queueID uint64) bool {
	return p.queue.Remove(queueID)
}

// Shuffle randomizes the queue tail, leaving the playing head intact.
func (p *Player) Shuffle() {
	p.queue.Shuffle(rand.New(rand.NewSource(time.Now().UnixNano())))
}

// ClearAfterCurrent drops every queued entry after the playing head.
func (p *Player) ClearAfterCurrent() {
	p.queue.ClearAfterCurrent()
}

// QueueSnapshot returns the queue contents and whether the sink is
// currently buffering (§6 `/api/queue`).
func (p *Player) QueueSnapshot() ([]queue.QueuedTrack, bool) {
	return p.queue.Snapshot(), p.sink.Buffering()
}

// HeadPositionSeconds reports how far into the currently playing (head)
// track output has advanced, reset to zero at each track boundary (§6
// `/api/queue`'s `position_seconds`).
func (p *Player) HeadPositionSeconds() float64 {
	p.mu.Lock()
	frames := p.positionFrames
	rate := p.deviceSampleRate
	p.mu.Unlock()
	if rate == 0 {
		return 0
	}
	return float64(frames) / float64(rate)
}

// Volume returns the current volume and cutoff settings (§6 `/api/volume`).
func (p *Player) Volume() (volumeDB, cutoffHz float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volumeDB, p.cutoffHz
}

// VolumeUp/VolumeDown adjust volume in 1 dB steps, clamped (§4.7).
func (p *Player) VolumeUp() float64   { return p.adjustVolume(volumeStepDB) }
func (p *Player) VolumeDown() float64 { return p.adjustVolume(-volumeStepDB) }

func (p *Player) adjustVolume(deltaDB float64) float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volumeDB = clamp(p.volumeDB+deltaDB, minVolumeDB, maxVolumeDB)
	return p.volumeDB
}

// FilterUp/FilterDown adjust the high-pass cutoff in 5 Hz steps, clamped.
func (p *Player) FilterUp() float64   { return p.adjustCutoff(cutoffStepHz) }
func (p *Player) FilterDown() float64 { return p.adjustCutoff(-cutoffStepHz) }

func (p *Player) adjustCutoff(deltaHz float64) float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cutoffHz = clamp(p.cutoffHz+deltaHz, minCutoffHz, maxCutoffHz)
	return p.cutoffHz
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// decodeLoop is the decoder thread: it keeps the ring filled from
// whatever the queue's head (and its successors) name, reopening the
// sink when the source sample rate changes.
func (p *Player) decodeLoop(ctx context.Context) {
	var dec *flac.Decoder
	var decodingQueueID uint64
	var decodingTrackID library.TrackID
	var lastDecodedQueueID uint64

	closeCurrent := func() {
		if dec != nil {
			dec.Close()
			dec = nil
		}
	}
	defer closeCurrent()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		lowWater := p.lowWaterMarkSamples()
		if dec == nil && p.currentRing().SampleCount() >= lowWater {
			p.setDecoderIdle(true)
			time.Sleep(200 * time.Millisecond)
			continue
		}

		if dec == nil {
			next, ok := p.nextToDecode(lastDecodedQueueID)
			if !ok {
				p.setDecoderIdle(true)
				time.Sleep(200 * time.Millisecond)
				continue
			}
			lib := p.currentModel()
			if lib == nil {
				p.setDecoderIdle(true)
				time.Sleep(200 * time.Millisecond)
				continue
			}
			track, ok := lib.TrackByID(next.TrackID)
			if !ok {
				p.logger.Warning("player: queue references unknown track %d", next.TrackID)
				lastDecodedQueueID = next.QueueID
				p.queue.Remove(next.QueueID)
				continue
			}
			opened, err := flac.OpenDecoder(track.Filename)
			if err != nil {
				p.logger.Warning("player: decode %s: %v", track.Filename, err)
				lastDecodedQueueID = next.QueueID
				p.queue.Remove(next.QueueID)
				continue
			}
			info := opened.StreamInfo()
			if p.needsReopen(int(info.SampleRateHz), int(info.ChannelCount)) {
				if err := p.reopenSink(int(info.SampleRateHz), int(info.ChannelCount)); err != nil {
					p.logger.Error("player: reopen sink: %v", err)
				}
			}
			dec = opened
			decodingQueueID = next.QueueID
			decodingTrackID = next.TrackID
			p.setDecoderIdle(false)
		}

		block, err := dec.NextBlock()
		if err == io.EOF {
			closeCurrent()
			lastDecodedQueueID = decodingQueueID
			continue
		}
		if err != nil {
			p.logger.Warning("player: decode error on queue entry %d: %v", decodingQueueID, err)
			closeCurrent()
			lastDecodedQueueID = decodingQueueID
			continue
		}
		p.currentRing().Push(Chunk{QueueID: decodingQueueID, TrackID: uint64(decodingTrackID), Samples: block})
	}
}

// nextToDecode returns the earliest queued entry after lastDecodedQueueID,
// allowing the decoder to run ahead of the output thread.
func (p *Player) nextToDecode(lastDecodedQueueID uint64) (queue.QueuedTrack, bool) {
	for _, item := range p.queue.Snapshot() {
		if item.QueueID > lastDecodedQueueID {
			return item, true
		}
	}
	return queue.QueuedTrack{}, false
}

func (p *Player) lowWaterMarkSamples() int {
	p.mu.Lock()
	rate := p.deviceSampleRate
	channels := p.deviceChannels
	p.mu.Unlock()
	if rate == 0 {
		rate = 44100
	}
	if channels == 0 {
		channels = 2
	}
	target := rate * channels * ringCapacitySeconds
	spinUpBudget := rate * channels * lowWaterSpinUpBudgetSeconds
	return target - spinUpBudget
}

func (p *Player) setDecoderIdle(idle bool) {
	p.mu.Lock()
	p.decoderIdle = idle
	p.mu.Unlock()
}

func (p *Player) isDecoderIdle() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.decoderIdle
}

func (p *Player) needsReopen(sampleRateHz, channels int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.deviceSampleRate != sampleRateHz || p.deviceChannels != channels
}

func (p *Player) reopenSink(sampleRateHz, channels int) error {
	p.mu.Lock()
	p.deviceSampleRate = sampleRateHz
	p.deviceChannels = channels
	cutoff := p.cutoffHz
	p.mu.Unlock()

	p.setRing(NewRing(sampleRateHz * channels * ringCapacitySeconds))
	p.highpass.Reconfigure(sampleRateHz, channels, cutoff)
	return shared.RetryWithBackoff(3, 100*time.Millisecond, func() error {
		return p.sink.Reopen(sampleRateHz, channels)
	})
}

// outputLoop is the output thread: it consumes ring chunks, applies gain
// and high-pass filtering, detects track boundaries, and writes to the
// sink.
func (p *Player) outputLoop(ctx context.Context) {
	var activeQueueID uint64

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		chunk, ok := p.currentRing().TryPop()
		if !ok {
			if activeQueueID != 0 && p.isDecoderIdle() {
				p.onPlaybackEnded(activeQueueID)
				activeQueueID = 0
			}
			time.Sleep(10 * time.Millisecond)
			continue
		}

		if chunk.QueueID != activeQueueID {
			p.onTrackBoundary(activeQueueID, chunk.QueueID, library.TrackID(chunk.TrackID))
			activeQueueID = chunk.QueueID
		}

		samples := append([]int32(nil), chunk.Samples...)
		p.applyDSP(samples, library.TrackID(chunk.TrackID))
		p.sink.WriteBlock(samples)
		p.advancePosition(len(samples))
	}
}

// advancePosition accounts for n interleaved samples just written to the
// sink, advancing the head track's elapsed-frame count.
func (p *Player) advancePosition(n int) {
	p.mu.Lock()
	channels := p.deviceChannels
	if channels == 0 {
		channels = 2
	}
	p.positionFrames += int64(n / channels)
	p.mu.Unlock()
}

func (p *Player) applyDSP(samples []int32, trackID library.TrackID) {
	lib := p.currentModel()
	gainDB := 0.0
	if lib != nil {
		if track, ok := lib.TrackByID(trackID); ok {
			if album, ok := lib.AlbumByID(track.AlbumID); ok && album.LoudnessLUFS != nil {
				p.mu.Lock()
				userVolume := p.volumeDB
				p.mu.Unlock()
				gainDB = GainDB(userVolume, *album.LoudnessLUFS)
			}
		}
	}
	ApplyGain(samples, gainDB)

	p.mu.Lock()
	cutoff := p.cutoffHz
	p.mu.Unlock()
	if len(p.highpass.state) > 0 && cutoff != p.highpass.cutoffHz {
		p.highpass.cutoffHz = cutoff
		if cutoff > 0 {
			p.highpass.b, p.highpass.a = butterworthHighPass(p.highpass.sampleRateHz, cutoff)
		}
	}
	p.highpass.Process(samples)
}

// onTrackBoundary finalizes the outgoing listen (if any), pops it off the
// queue, spawns the pre-playback script on the idle→playing transition,
// and inserts the incoming listen as started (§4.7).
func (p *Player) onTrackBoundary(prevQueueID, newQueueID uint64, newTrackID library.TrackID) {
	now := time.Now()
	ctx := context.Background()

	if prevQueueID != 0 {
		p.finalizeCurrentListen(now)
		p.queue.DequeueFront()
	} else {
		p.cancelIdleTimer()
		p.life.RunPrePlayback()
	}

	lib := p.currentModel()
	var title, artist, albumTitle string
	if lib != nil {
		if track, ok := lib.TrackByID(newTrackID); ok {
			title = lib.Interner.Resolve(track.Title)
			artist = lib.Interner.Resolve(track.ArtistName)
			if album, ok := lib.AlbumByID(track.AlbumID); ok {
				albumTitle = lib.Interner.Resolve(album.Title)
			}
		}
	}

	id, err := p.store.InsertListenStarted(ctx, now, newQueueID, uint64(newTrackID), title, artist, albumTitle)
	if err != nil {
		p.logger.Warning("player: insert_listen_started: %v", err)
	}
	p.mu.Lock()
	p.currentListenID = id
	p.currentQueueID = newQueueID
	p.currentTrackID = newTrackID
	p.positionFrames = 0
	p.mu.Unlock()
}

// onPlaybackEnded is called when the ring and decoder both run dry with
// nothing left queued: the queue drained naturally.
func (p *Player) onPlaybackEnded(lastQueueID uint64) {
	p.finalizeCurrentListen(time.Now())
	p.queue.DequeueFront()
	p.scheduleIdleTimer()
}

func (p *Player) finalizeCurrentListen(at time.Time) {
	p.mu.Lock()
	listenID := p.currentListenID
	queueID := p.currentQueueID
	trackID := p.currentTrackID
	p.currentListenID = 0
	p.mu.Unlock()
	if listenID == 0 {
		return
	}
	if err := p.store.UpdateListenCompleted(context.Background(), listenID, queueID, uint64(trackID), at); err != nil {
		p.logger.Warning("player: update_listen_completed: %v", err)
	}
}

func (p *Player) scheduleIdleTimer() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.idleTimer != nil {
		p.idleTimer.Stop()
	}
	p.idleTimer = time.AfterFunc(time.Duration(p.idleTimeoutSeconds)*time.Second, p.life.RunPostIdle)
}

func (p *Player) cancelIdleTimer() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.idleTimer != nil {
		p.idleTimer.Stop()
		p.idleTimer = nil
	}
}
