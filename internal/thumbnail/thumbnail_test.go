package thumbnail

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"
)

func encodeTestJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode source jpeg: %v", err)
	}
	return buf.Bytes()
}

func TestGenerateShrinksLongestEdgeToMaxDimension(t *testing.T) {
	src := encodeTestJPEG(t, 1200, 600)
	out, err := Generate(src)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	img, _, err := image.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode thumbnail: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != MaxDimension {
		t.Fatalf("width = %d, want %d", b.Dx(), MaxDimension)
	}
	if b.Dy() != MaxDimension/2 {
		t.Fatalf("height = %d, want %d", b.Dy(), MaxDimension/2)
	}
}

func TestGenerateLeavesSmallImagesAtNativeSize(t *testing.T) {
	src := encodeTestJPEG(t, 100, 80)
	out, err := Generate(src)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	img, _, err := image.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode thumbnail: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 100 || b.Dy() != 80 {
		t.Fatalf("size = %dx%d, want 100x80", b.Dx(), b.Dy())
	}
}

func TestGenerateRejectsUndecodableData(t *testing.T) {
	_, err := Generate([]byte("not an image"))
	if err == nil {
		t.Fatal("expected error decoding garbage data")
	}
}
