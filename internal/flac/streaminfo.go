package flac

import "encoding/binary"

// StreamInfo mirrors the fields of a FLAC STREAMINFO block that the
// library model and player need. It never decodes audio frames.
type StreamInfo struct {
	SampleRateHz  uint32
	BitsPerSample uint8
	ChannelCount  uint8
	TotalSamples  uint64
}

// parseStreamInfo decodes the 34-byte STREAMINFO payload. Layout (bit
// offsets from the start of the block): 16+16 min/max block size, 24+24
// min/max frame size, then a packed 64-bit field of sample rate (20),
// channels-1 (3), bits-per-sample-1 (5), total samples (36), followed by a
// 128-bit MD5 signature that musium has no use for.
func parseStreamInfo(data []byte) (StreamInfo, bool) {
	if len(data) < 18 {
		return StreamInfo{}, false
	}
	packed := binary.BigEndian.Uint64(data[10:18])
	sampleRate := uint32(packed >> 44 & 0xFFFFF)
	channels := uint8(packed>>41&0x7) + 1
	bitsPerSample := uint8(packed>>36&0x1F) + 1
	totalSamples := packed & 0xFFFFFFFFF
	if sampleRate == 0 {
		return StreamInfo{}, false
	}
	return StreamInfo{
		SampleRateHz:  sampleRate,
		BitsPerSample: bitsPerSample,
		ChannelCount:  channels,
		TotalSamples:  totalSamples,
	}, true
}
