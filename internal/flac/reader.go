// Package flac implements component A: a binary container reader for FLAC
// files. It parses the STREAMINFO and VORBIS_COMMENT metadata blocks into a
// structured Descriptor; it never decodes audio frames (that is the job of
// decode.go, used only by the analyzer and the player's decoder thread).
package flac

import (
	"os"

	goflac "github.com/go-flac/go-flac"
	"github.com/go-flac/flacvorbis"
)

// Descriptor is the result of reading one file's container metadata: a
// stream descriptor plus its raw, validated tag bag.
type Descriptor struct {
	StreamInfo StreamInfo
	Tags       TagBag
}

// ReadFile parses the STREAMINFO and VORBIS_COMMENT blocks of path.
func ReadFile(path string) (*Descriptor, error) {
	f, err := goflac.ParseFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &ErrIO{Path: path, Err: err}
		}
		return nil, &ErrNotFlac{Path: path}
	}

	var (
		streamInfo StreamInfo
		haveInfo   bool
		comments   []string
	)
	for _, meta := range f.Meta {
		switch meta.Type {
		case goflac.StreamInfo:
			streamInfo, haveInfo = parseStreamInfo(meta.Data)
		case goflac.VorbisComment:
			block, err := flacvorbis.ParseFromMetaDataBlock(*meta)
			if err != nil {
				return nil, &ErrIO{Path: path, Err: err}
			}
			comments = block.Comments
		}
	}
	if !haveInfo {
		return nil, &ErrNotFlac{Path: path}
	}

	bag, err := buildTagBag(path, comments)
	if err != nil {
		return nil, err
	}

	return &Descriptor{StreamInfo: streamInfo, Tags: bag}, nil
}
