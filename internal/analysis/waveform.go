package analysis

import (
	"io"

	"github.com/musium/musium/internal/flac"
)

// WaveformBuckets is the fixed number of peak-magnitude buckets per track,
// so /api/waveform/:track_id always returns a constant-size asset (§4.5).
const WaveformBuckets = 600

// ComputeWaveform decodes dec to completion and returns a WaveformBuckets-
// byte envelope: each byte is the peak absolute sample magnitude (across
// channels, normalized to the source bit depth) within that time bucket,
// scaled to [0, 255].
func ComputeWaveform(dec *flac.Decoder) ([]byte, error) {
	info := dec.StreamInfo()
	out := make([]byte, WaveformBuckets)
	if info.TotalSamples == 0 || info.ChannelCount == 0 {
		return out, nil
	}

	samplesPerBucket := info.TotalSamples / WaveformBuckets
	if samplesPerBucket == 0 {
		samplesPerBucket = 1
	}
	fullScale := float64(int64(1) << (info.BitsPerSample - 1))
	nChannels := int(info.ChannelCount)

	bucket := 0
	var frameCount uint64
	var peak int32

	flush := func() {
		if bucket < len(out) {
			norm := float64(peak) / fullScale
			if norm > 1 {
				norm = 1
			}
			out[bucket] = byte(norm * 255)
		}
		bucket++
		peak = 0
	}

decode:
	for {
		samples, err := dec.NextBlock()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		for i := 0; i+nChannels <= len(samples); i += nChannels {
			for ch := 0; ch < nChannels; ch++ {
				v := samples[i+ch]
				if v < 0 {
					v = -v
				}
				if v > peak {
					peak = v
				}
			}
			frameCount++
			if frameCount%samplesPerBucket == 0 {
				flush()
				if bucket >= len(out) {
					break decode
				}
			}
		}
	}
	if bucket < len(out) {
		flush()
	}
	return out, nil
}
