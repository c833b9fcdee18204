package media

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x += 10 {
		for y := 0; y < h; y += 10 {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode test png: %v", err)
	}
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode test jpeg: %v", err)
	}
	return buf.Bytes()
}

func decodeBounds(t *testing.T, data []byte) (int, int, string) {
	t.Helper()
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	b := img.Bounds()
	return b.Dx(), b.Dy(), format
}

func TestCompressRejectsOversize(t *testing.T) {
	data := make([]byte, MaxUploadSize+1)
	_, _, err := Compress(data, "big.png")
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("err = %v, want ErrTooLarge", err)
	}
}

func TestCompressPassthroughNonImage(t *testing.T) {
	data := []byte("just some text")
	out, ext, err := Compress(data, "notes.txt")
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if !bytes.Equal(out, data) {
		t.Error("non-image content must pass through unchanged")
	}
	if ext != ".txt" {
		t.Errorf("ext = %q, want .txt", ext)
	}
}

func TestCompressKeepsSmallImage(t *testing.T) {
	data := encodePNG(t, 200, 100)
	out, ext, err := Compress(data, "small.png")
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	w, h, format := decodeBounds(t, out)
	if w != 200 || h != 100 {
		t.Errorf("bounds = %dx%d, want 200x100", w, h)
	}
	if format != "png" || ext != ".png" {
		t.Errorf("format/ext = %s/%s, png must stay png", format, ext)
	}
}

func TestCompressResizesLargeImage(t *testing.T) {
	data := encodeJPEG(t, 3840, 1080)
	out, ext, err := Compress(data, "wide.jpg")
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	w, h, format := decodeBounds(t, out)
	if w > 1920 || h > 1920 {
		t.Errorf("bounds = %dx%d, want both within 1920", w, h)
	}
	if w != 1920 {
		t.Errorf("width = %d, want 1920 for the long edge", w)
	}
	if format != "jpeg" || ext != ".jpg" {
		t.Errorf("format/ext = %s/%s, want jpeg/.jpg", format, ext)
	}
}

func TestCompressConvertsGIFToJPEG(t *testing.T) {
	// A png payload with a .gif name exercises the re-encode path
	// without needing a gif encoder.
	data := encodePNG(t, 50, 50)
	out, ext, err := Compress(data, "anim.gif")
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	_, _, format := decodeBounds(t, out)
	if format != "jpeg" || ext != ".jpg" {
		t.Errorf("format/ext = %s/%s, want jpeg/.jpg", format, ext)
	}
}
