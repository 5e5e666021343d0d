package flac

import (
	goflac "github.com/go-flac/go-flac"
	"github.com/go-flac/flacpicture"
)

// CoverPicture is the front-cover picture block embedded in a FLAC file, if
// any. It feeds both /api/cover (full resolution) and the thumbnail
// generator (internal/thumbnail), which downsizes ImageData.
type CoverPicture struct {
	MIME      string
	ImageData []byte
}

// ReadCoverPicture extracts the first front-cover PICTURE block, falling
// back to the first picture block of any type if no front cover is tagged.
func ReadCoverPicture(path string) (*CoverPicture, error) {
	f, err := goflac.ParseFile(path)
	if err != nil {
		return nil, &ErrNotFlac{Path: path}
	}

	var fallback *flacpicture.MetadataBlockPicture
	for _, meta := range f.Meta {
		if meta.Type != goflac.Picture {
			continue
		}
		pic, err := flacpicture.ParseFromMetaDataBlock(*meta)
		if err != nil {
			continue
		}
		if pic.PictureType == flacpicture.PictureTypeFrontCover {
			return &CoverPicture{MIME: pic.MIME, ImageData: pic.ImageData}, nil
		}
		if fallback == nil {
			fallback = pic
		}
	}
	if fallback != nil {
		return &CoverPicture{MIME: fallback.MIME, ImageData: fallback.ImageData}, nil
	}
	return nil, nil
}
