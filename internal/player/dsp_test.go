package player

import (
	"math"
	"testing"
)

func TestGainDBBoostsQuieterAlbumsToReference(t *testing.T) {
	// album measured 6 LU quieter than reference: gain should add 6 dB
	// on top of unity user volume.
	got := GainDB(0, referenceLUFS-6)
	if got < 5.9 || got > 6.1 {
		t.Fatalf("GainDB = %v, want ~6", got)
	}
}

func TestGainDBAttenuatesLouderAlbums(t *testing.T) {
	got := GainDB(0, referenceLUFS+6)
	if got > -5.9 || got < -6.1 {
		t.Fatalf("GainDB = %v, want ~-6", got)
	}
}

func TestApplyGainIsNoOpAtZeroDB(t *testing.T) {
	samples := []int32{100, -200, 300}
	ApplyGain(samples, 0)
	if samples[0] != 100 || samples[1] != -200 || samples[2] != 300 {
		t.Fatalf("ApplyGain(0dB) mutated samples: %v", samples)
	}
}

func TestApplyGainClampsToInt32Range(t *testing.T) {
	samples := []int32{1 << 30}
	ApplyGain(samples, 24) // +24dB is roughly x16
	if samples[0] != math.MaxInt32 {
		t.Fatalf("ApplyGain did not clamp: got %d", samples[0])
	}
}

func TestHighPassBypassedAtZeroCutoffLeavesSamplesUnchanged(t *testing.T) {
	h := NewHighPass()
	h.Reconfigure(44100, 2, 0)
	samples := []int32{1000, -1000, 2000, -2000}
	want := append([]int32(nil), samples...)
	h.Process(samples)
	for i := range samples {
		if samples[i] != want[i] {
			t.Fatalf("bypassed filter mutated sample %d: got %d want %d", i, samples[i], want[i])
		}
	}
}

func TestHighPassAttenuatesDCOffset(t *testing.T) {
	h := NewHighPass()
	h.Reconfigure(44100, 1, 100)

	const n = 4410 // 100ms of settling
	samples := make([]int32, n)
	for i := range samples {
		samples[i] = 10000 // constant DC input
	}
	h.Process(samples)

	tail := samples[n-100:]
	var sum int64
	for _, s := range tail {
		if s < 0 {
			sum -= int64(s)
		} else {
			sum += int64(s)
		}
	}
	avg := sum / int64(len(tail))
	if avg > 500 {
		t.Fatalf("high-pass left DC offset averaging %d, want near 0", avg)
	}
}

func TestHighPassReconfigureResetsState(t *testing.T) {
	h := NewHighPass()
	h.Reconfigure(44100, 1, 100)
	h.Process([]int32{10000, 10000, 10000, 10000})

	h.Reconfigure(48000, 1, 100)
	if h.state[0] != (biquadState{}) {
		t.Fatal("Reconfigure did not reset filter state")
	}
}
