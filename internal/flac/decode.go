package flac

import (
	"io"

	mewkizflac "github.com/mewkiz/flac"
)

// Decoder streams decoded PCM from a FLAC file one frame at a time. It
// backs both the loudness/waveform analyzer (which consumes the whole file
// once) and the player's decoder thread (which streams into the PCM ring).
type Decoder struct {
	stream *mewkizflac.Stream
	info   StreamInfo
}

// OpenDecoder opens path for streaming decode.
func OpenDecoder(path string) (*Decoder, error) {
	stream, err := mewkizflac.ParseFile(path)
	if err != nil {
		return nil, &ErrNotFlac{Path: path}
	}
	return &Decoder{
		stream: stream,
		info: StreamInfo{
			SampleRateHz:  stream.Info.SampleRate,
			BitsPerSample: uint8(stream.Info.BitsPerSample),
			ChannelCount:  uint8(stream.Info.NChannels),
			TotalSamples:  stream.Info.NSamplesTotal,
		},
	}, nil
}

// StreamInfo returns the stream descriptor discovered at open time.
func (d *Decoder) StreamInfo() StreamInfo {
	return d.info
}

// NextBlock decodes the next frame and returns its samples interleaved
// (frame-major, channel-minor: L0 R0 L1 R1 ...) as 32-bit signed values,
// regardless of the source bit depth. Returns io.EOF once the stream is
// exhausted.
func (d *Decoder) NextBlock() ([]int32, error) {
	frame, err := d.stream.ParseNext()
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, &ErrIO{Err: err}
	}

	nChannels := len(frame.Subframes)
	if nChannels == 0 {
		return nil, nil
	}
	nSamples := len(frame.Subframes[0].Samples)
	out := make([]int32, 0, nSamples*nChannels)
	for i := 0; i < nSamples; i++ {
		for ch := 0; ch < nChannels; ch++ {
			out = append(out, frame.Subframes[ch].Samples[i])
		}
	}
	return out, nil
}

// Close releases the underlying file handle.
func (d *Decoder) Close() error {
	return d.stream.Close()
}
