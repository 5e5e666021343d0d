// Package player implements the playback queue's decoder and output
// threads (component G): a bounded PCM ring between them, volume/filter
// DSP, the kernel audio sink, track-boundary listen events, and the
// pre-playback/post-idle lifecycle scripts.
package player

import "sync"

// Chunk is one decoded block handed from the decoder thread to the output
// thread, tagged with the queue/track identity it belongs to so the
// output thread can detect track boundaries as it consumes chunks.
type Chunk struct {
	QueueID uint64
	TrackID uint64
	Samples []int32 // interleaved, frame-major channel-minor
}

// Ring is the bounded, single-producer/single-consumer PCM buffer between
// the decoder and output threads (§4.7, §5). It is chunk-granular rather
// than a flat byte ring: the output thread needs chunk boundaries intact
// to detect track transitions.
type Ring struct {
	mu              sync.Mutex
	notFull         *sync.Cond
	notEmpty        *sync.Cond
	chunks          []Chunk
	sampleCount     int
	capacitySamples int
	closed          bool
}

// NewRing creates a ring sized to hold capacitySamples interleaved
// samples — in practice ~10 minutes of decoded audio (§4.7).
func NewRing(capacitySamples int) *Ring {
	r := &Ring{capacitySamples: capacitySamples}
	r.notFull = sync.NewCond(&r.mu)
	r.notEmpty = sync.NewCond(&r.mu)
	return r
}

// Push blocks until there is room for chunk, then appends it. Returns
// immediately if the ring has been closed.
func (r *Ring) Push(c Chunk) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for r.sampleCount+len(c.Samples) > r.capacitySamples && !r.closed {
		r.notFull.Wait()
	}
	if r.closed {
		return
	}
	r.chunks = append(r.chunks, c)
	r.sampleCount += len(c.Samples)
	r.notEmpty.Broadcast()
}

// Pop removes and returns the oldest chunk, blocking until one is
// available or the ring is closed.
func (r *Ring) Pop() (Chunk, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for len(r.chunks) == 0 && !r.closed {
		r.notEmpty.Wait()
	}
	if len(r.chunks) == 0 {
		return Chunk{}, false
	}
	c := r.chunks[0]
	r.chunks = r.chunks[1:]
	r.sampleCount -= len(c.Samples)
	r.notFull.Broadcast()
	return c, true
}

// TryPop removes and returns the oldest chunk without blocking. The
// output thread uses this so it never blocks indefinitely waiting for
// data (§4.7) — an empty ring means "emit silence, flag buffering".
func (r *Ring) TryPop() (Chunk, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.chunks) == 0 {
		return Chunk{}, false
	}
	c := r.chunks[0]
	r.chunks = r.chunks[1:]
	r.sampleCount -= len(c.Samples)
	r.notFull.Broadcast()
	return c, true
}

// SampleCount reports the current fill level in interleaved samples.
func (r *Ring) SampleCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sampleCount
}

// Close unblocks any pending Push/Pop calls permanently.
func (r *Ring) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	r.notFull.Broadcast()
	r.notEmpty.Broadcast()
}
