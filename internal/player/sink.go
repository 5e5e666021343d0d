package player

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
)

// Sink is the kernel audio sink handle (§4.7, §6). It wraps beep's
// speaker backend (which in turn drives the platform's oto output on
// Linux/Windows) behind the narrow Write/Reopen contract the output
// thread needs.
type Sink struct {
	mu         sync.Mutex
	streamer   *pcmStreamer
	sampleRate int
	channels   int
}

// NewSink creates an unopened sink; call Reopen before writing.
func NewSink() *Sink {
	return &Sink{}
}

// Reopen closes any existing device handle and opens a new one at the
// given format. Called at startup and whenever the decoder signals a
// source sample-rate change (§4.7: "no sample-rate conversion is
// performed in-process" — the device is reopened instead).
func (s *Sink) Reopen(sampleRateHz, channels int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	speaker.Close()
	bufferSize := sampleRateHz / 20 // ~50ms period
	if err := speaker.Init(beep.SampleRate(sampleRateHz), bufferSize); err != nil {
		return fmt.Errorf("player: reopen audio sink at %d Hz: %w", sampleRateHz, err)
	}
	s.streamer = newPCMStreamer(channels)
	s.sampleRate = sampleRateHz
	s.channels = channels
	speaker.Play(s.streamer)
	return nil
}

// WriteBlock hands one DSP-processed, interleaved int32 block to the
// sink. It never blocks: excess is queued, and the streamer itself never
// blocks the mixer callback (§4.7: "never blocks indefinitely").
func (s *Sink) WriteBlock(samples []int32) {
	s.mu.Lock()
	st := s.streamer
	s.mu.Unlock()
	if st == nil {
		return
	}
	st.push(samples)
}

// Buffering reports whether the sink underran and is currently emitting
// silence (surfaced as `buffering` in the `/queue` response).
func (s *Sink) Buffering() bool {
	s.mu.Lock()
	st := s.streamer
	s.mu.Unlock()
	if st == nil {
		return false
	}
	return st.buffering.Load()
}

// Close releases the underlying device.
func (s *Sink) Close() {
	speaker.Close()
}

// pcmStreamer adapts pushed int32 PCM blocks into beep's
// float64-per-channel Streamer contract.
type pcmStreamer struct {
	channels  int
	mu        sync.Mutex
	pending   [][2]float64
	buffering atomic.Bool
}

func newPCMStreamer(channels int) *pcmStreamer {
	return &pcmStreamer{channels: channels}
}

func (p *pcmStreamer) push(samples []int32) {
	n := len(samples) / p.channels
	frames := make([][2]float64, n)
	for i := 0; i < n; i++ {
		l := float64(samples[i*p.channels]) / math.MaxInt32
		r := l
		if p.channels > 1 {
			r = float64(samples[i*p.channels+1]) / math.MaxInt32
		}
		frames[i] = [2]float64{l, r}
	}
	p.mu.Lock()
	p.pending = append(p.pending, frames...)
	p.mu.Unlock()
}

// Stream implements beep.Streamer. It never blocks: an empty queue means
// underrun, so it emits silence and raises the buffering flag.
func (p *pcmStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.pending) == 0 {
		p.buffering.Store(true)
		for i := range samples {
			samples[i] = [2]float64{0, 0}
		}
		return len(samples), true
	}
	p.buffering.Store(false)
	n = copy(samples, p.pending)
	p.pending = p.pending[n:]
	for i := n; i < len(samples); i++ {
		samples[i] = [2]float64{0, 0}
	}
	return len(samples), true
}

func (p *pcmStreamer) Err() error { return nil }
