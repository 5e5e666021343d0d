// Package analysis implements the loudness and waveform analyzer
// (component E): BS.1770 integrated-loudness gating and the fixed-bucket
// waveform envelope the HTTP API serves as a constant-size asset.
package analysis

import (
	"io"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/musium/musium/internal/flac"
)

// Block is one 400ms BS.1770 gating block's channel-weighted mean square,
// pre-absolute-gate. Album loudness is computed by pooling every track's
// Blocks and gating them together, per §4.5 ("combine per-track gating
// windows, not per-track LUFS").
type Block struct {
	MeanSquare float64
}

// Meter accumulates K-weighted mean square over 100ms sub-blocks and folds
// them into 400ms/75%-overlap gating blocks as samples are fed in.
type Meter struct {
	sampleRate uint32
	weights    []float64
	states     []biquadPair

	hopSize       int
	subBlockN     int
	subBlockSumSq float64
	subBlocks     []float64
}

type biquadPair struct {
	pre, rlb biquadState
}

// biquadState holds the delay elements of a direct-form-I biquad: the two
// previous inputs and the two previous outputs.
type biquadState struct {
	x1, x2, y1, y2 float64
}

// NewMeter creates a loudness meter for a stream with the given sample
// rate and channel count.
func NewMeter(sampleRate uint32, channels int) *Meter {
	return &Meter{
		sampleRate: sampleRate,
		weights:    channelWeights(channels),
		states:     make([]biquadPair, channels),
		hopSize:    int(sampleRate) / 10,
	}
}

// channelWeights returns the ITU-R BS.1770 channel weighting. Six channels
// are assumed L/R/C front, LFE (excluded), Ls/Rs surround — the common 5.1
// layout; every other channel count weights all channels 1.0. Home FLAC
// libraries are overwhelmingly mono or stereo, so this is rarely exercised.
func channelWeights(channels int) []float64 {
	switch channels {
	case 1:
		return []float64{1.0}
	case 6:
		return []float64{1.0, 1.0, 1.0, 0, 1.41, 1.41}
	default:
		w := make([]float64, channels)
		for i := range w {
			w[i] = 1.0
		}
		return w
	}
}

// Feed processes one interleaved (frame-major, channel-minor) block of
// samples at the given source bit depth.
func (m *Meter) Feed(samples []int32, bitsPerSample uint8) {
	nChannels := len(m.weights)
	if nChannels == 0 {
		return
	}
	fullScale := float64(int64(1) << (bitsPerSample - 1))
	preB, preA := preFilterCoeffs(m.sampleRate)
	rlbB, rlbA := rlbFilterCoeffs(m.sampleRate)

	for i := 0; i+nChannels <= len(samples); i += nChannels {
		for ch := 0; ch < nChannels; ch++ {
			if m.weights[ch] == 0 {
				continue
			}
			x := float64(samples[i+ch]) / fullScale
			st := &m.states[ch]

			pre := preB[0]*x + preB[1]*st.pre.x1 + preB[2]*st.pre.x2 - preA[0]*st.pre.y1 - preA[1]*st.pre.y2
			st.pre.x2, st.pre.x1 = st.pre.x1, x
			st.pre.y2, st.pre.y1 = st.pre.y1, pre

			rlb := rlbB[0]*pre + rlbB[1]*st.rlb.x1 + rlbB[2]*st.rlb.x2 - rlbA[0]*st.rlb.y1 - rlbA[1]*st.rlb.y2
			st.rlb.x2, st.rlb.x1 = st.rlb.x1, pre
			st.rlb.y2, st.rlb.y1 = st.rlb.y1, rlb

			m.subBlockSumSq += m.weights[ch] * rlb * rlb
		}
		m.subBlockN++
		if m.hopSize > 0 && m.subBlockN >= m.hopSize {
			m.subBlocks = append(m.subBlocks, m.subBlockSumSq/float64(m.subBlockN))
			m.subBlockSumSq = 0
			m.subBlockN = 0
		}
	}
}

// Finish folds the accumulated 100ms sub-blocks into 400ms/75%-overlap
// gating blocks.
func (m *Meter) Finish() []Block {
	const window = 4
	if len(m.subBlocks) < window {
		return nil
	}
	blocks := make([]Block, 0, len(m.subBlocks)-window+1)
	for i := 0; i+window <= len(m.subBlocks); i++ {
		sum := 0.0
		for j := 0; j < window; j++ {
			sum += m.subBlocks[i+j]
		}
		blocks = append(blocks, Block{MeanSquare: sum / window})
	}
	return blocks
}

// MeasureTrack decodes dec to completion and returns its gating blocks.
func MeasureTrack(dec *flac.Decoder) ([]Block, error) {
	info := dec.StreamInfo()
	meter := NewMeter(info.SampleRateHz, int(info.ChannelCount))
	for {
		samples, err := dec.NextBlock()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		meter.Feed(samples, info.BitsPerSample)
	}
	return meter.Finish(), nil
}

// IntegratedLoudness applies the BS.1770 absolute and relative gates to
// blocks and returns the integrated loudness in LUFS.
func IntegratedLoudness(blocks []Block) float64 {
	if len(blocks) == 0 {
		return math.Inf(-1)
	}
	absPass := make([]float64, 0, len(blocks))
	for _, b := range blocks {
		if blockLoudness(b.MeanSquare) >= -70.0 {
			absPass = append(absPass, b.MeanSquare)
		}
	}
	if len(absPass) == 0 {
		return -70.0
	}
	relThreshold := blockLoudness(stat.Mean(absPass, nil)) - 10.0

	relPass := make([]float64, 0, len(absPass))
	for _, ms := range absPass {
		if blockLoudness(ms) >= relThreshold {
			relPass = append(relPass, ms)
		}
	}
	if len(relPass) == 0 {
		return blockLoudness(stat.Mean(absPass, nil))
	}
	return blockLoudness(stat.Mean(relPass, nil))
}

// CombineAlbumLoudness pools every track's gating blocks and gates them
// together — this preserves BS.1770 semantics, unlike averaging per-track
// LUFS values (§4.5).
func CombineAlbumLoudness(perTrack [][]Block) float64 {
	var all []Block
	for _, blocks := range perTrack {
		all = append(all, blocks...)
	}
	return IntegratedLoudness(all)
}

func blockLoudness(meanSquare float64) float64 {
	if meanSquare <= 0 {
		return math.Inf(-1)
	}
	return -0.691 + 10*math.Log10(meanSquare)
}

// preFilterCoeffs and rlbFilterCoeffs implement the two cascaded biquads
// of the BS.1770 K-weighting curve (a high-shelf pre-filter and an
// RLB-weighting high-pass), derived from the analog prototypes via the
// bilinear transform for the given sample rate. Constants are the
// standard BS.1770/EBU R128 filter design values.
func preFilterCoeffs(sampleRate uint32) (b [3]float64, a [2]float64) {
	const (
		f0 = 1681.9744509555319
		g  = 3.99984385397
		q  = 0.7071752369554193
	)
	k := math.Tan(math.Pi * f0 / float64(sampleRate))
	vh := math.Pow(10.0, g/20.0)
	vb := math.Pow(vh, 0.4996667741545416)
	a0 := 1.0 + k/q + k*k

	b[0] = (vh + vb*k/q + k*k) / a0
	b[1] = 2.0 * (k*k - vh) / a0
	b[2] = (vh - vb*k/q + k*k) / a0
	a[0] = 2.0 * (k*k - 1.0) / a0
	a[1] = (1.0 - k/q + k*k) / a0
	return b, a
}

func rlbFilterCoeffs(sampleRate uint32) (b [3]float64, a [2]float64) {
	const (
		f0 = 38.13547087602
		q  = 0.5003270373238
	)
	k := math.Tan(math.Pi * f0 / float64(sampleRate))
	a0 := 1.0 + k/q + k*k

	b[0] = 1.0
	b[1] = -2.0
	b[2] = 1.0
	a[0] = 2.0 * (k*k - 1.0) / a0
	a[1] = (1.0 - k/q + k*k) / a0
	return b, a
}
