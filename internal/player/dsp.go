package player

import "math"

// referenceLUFS is the loudness target volume gain normalizes every album
// towards (§4.7 step 1, worked example in §8 scenario 5).
const referenceLUFS = -23.0

// GainDB computes the applied gain in dB: user volume minus the
// difference between the album's measured loudness and the reference
// loudness, so quieter masters are boosted and louder ones attenuated.
func GainDB(userVolumeDB, albumLUFS float64) float64 {
	return userVolumeDB - (albumLUFS - referenceLUFS)
}

// ApplyGain scales samples in place by the linear equivalent of gainDB.
func ApplyGain(samples []int32, gainDB float64) {
	if gainDB == 0 {
		return
	}
	linear := math.Pow(10, gainDB/20)
	for i, s := range samples {
		v := float64(s) * linear
		if v > math.MaxInt32 {
			v = math.MaxInt32
		} else if v < math.MinInt32 {
			v = math.MinInt32
		}
		samples[i] = int32(v)
	}
}

// HighPass is a second-order (−12 dB/octave) Butterworth high-pass filter,
// −3 dB at its cutoff frequency, applied independently per channel. State
// persists across blocks and is reset only on device re-open (§4.7 step
// 2). A cutoff of 0 Hz bypasses the filter entirely.
type HighPass struct {
	sampleRateHz int
	cutoffHz     float64
	b            [3]float64
	a            [2]float64
	state        []biquadState
}

type biquadState struct {
	x1, x2, y1, y2 float64
}

// NewHighPass creates a bypassed filter; call Reconfigure to set the
// operating point before use.
func NewHighPass() *HighPass {
	return &HighPass{}
}

// Reconfigure recomputes filter coefficients for a new sample rate,
// channel count, or cutoff, and resets all filter state (§4.7: "reset on
// device re-open").
func (h *HighPass) Reconfigure(sampleRateHz int, channels int, cutoffHz float64) {
	h.sampleRateHz = sampleRateHz
	h.cutoffHz = cutoffHz
	h.state = make([]biquadState, channels)
	if cutoffHz <= 0 {
		return
	}
	h.b, h.a = butterworthHighPass(sampleRateHz, cutoffHz)
}

// Process filters interleaved samples in place.
func (h *HighPass) Process(samples []int32) {
	if h.cutoffHz <= 0 || len(h.state) == 0 {
		return
	}
	nChannels := len(h.state)
	for i := 0; i+nChannels <= len(samples); i += nChannels {
		for ch := 0; ch < nChannels; ch++ {
			st := &h.state[ch]
			x := float64(samples[i+ch])
			y := h.b[0]*x + h.b[1]*st.x1 + h.b[2]*st.x2 - h.a[0]*st.y1 - h.a[1]*st.y2
			st.x2, st.x1 = st.x1, x
			st.y2, st.y1 = st.y1, y
			samples[i+ch] = clampInt32(y)
		}
	}
}

func clampInt32(v float64) int32 {
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	if v < math.MinInt32 {
		return math.MinInt32
	}
	return int32(v)
}

// butterworthHighPass derives a standard bilinear-transformed second-order
// Butterworth high-pass biquad (Q = 1/sqrt(2), the maximally-flat
// response that gives the documented −12 dB/octave rolloff and −3 dB at
// cutoff).
func butterworthHighPass(sampleRateHz int, cutoffHz float64) (b [3]float64, a [2]float64) {
	const q = 0.7071067811865476
	w0 := 2 * math.Pi * cutoffHz / float64(sampleRateHz)
	cosW0, sinW0 := math.Cos(w0), math.Sin(w0)
	alpha := sinW0 / (2 * q)

	a0 := 1 + alpha
	b[0] = (1 + cosW0) / 2 / a0
	b[1] = -(1 + cosW0) / a0
	b[2] = (1 + cosW0) / 2 / a0
	a[0] = (-2 * cosW0) / a0
	a[1] = (1 - alpha) / a0
	return b, a
}
