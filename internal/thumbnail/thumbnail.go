// Package thumbnail downsizes a FLAC file's embedded cover picture into the
// bounded-size JPEG thumbnail served at /api/thumb/:album_id.
package thumbnail

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"image/jpeg"

	"golang.org/x/image/draw"
)

// MaxDimension is the longest edge of a generated thumbnail, in pixels.
const MaxDimension = 300

// JPEGQuality is the encoding quality used for generated thumbnails.
const JPEGQuality = 85

// Generate decodes imageData (the full-resolution cover) and returns a
// JPEG-encoded thumbnail no larger than MaxDimension on its longest edge,
// preserving aspect ratio.
func Generate(imageData []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("thumbnail: decode cover: %w", err)
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("thumbnail: cover has zero dimension")
	}

	dstW, dstH := w, h
	if w >= h && w > MaxDimension {
		dstW = MaxDimension
		dstH = h * MaxDimension / w
	} else if h > w && h > MaxDimension {
		dstH = MaxDimension
		dstW = w * MaxDimension / h
	}
	if dstW < 1 {
		dstW = 1
	}
	if dstH < 1 {
		dstH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("thumbnail: encode: %w", err)
	}
	return buf.Bytes(), nil
}
