// Package media normalizes uploaded images: size limit, bounded
// dimensions, consistent output formats.
package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"

	_ "image/gif"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

const (
	// MaxUploadSize is the hard cap on a single uploaded file.
	MaxUploadSize = 10 << 20

	maxDimension = 1920
	jpegQuality  = 85
)

var ErrTooLarge = errors.New("file exceeds maximum upload size")

var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
}

// Compress normalizes an uploaded file. Images are decoded, scaled
// down to fit within maxDimension and re-encoded (png stays png,
// everything else becomes jpeg since Go cannot encode webp or gif
// animation). Non-image files pass through untouched. The returned
// extension is the one the stored file should use.
func Compress(data []byte, filename string) ([]byte, string, error) {
	if len(data) > MaxUploadSize {
		return nil, "", ErrTooLarge
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !imageExts[ext] {
		return data, ext, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}

	img = fit(img, maxDimension)

	var buf bytes.Buffer
	if ext == ".png" {
		if err := png.Encode(&buf, img); err != nil {
			return nil, "", fmt.Errorf("encode png: %w", err)
		}
		return buf.Bytes(), ".png", nil
	}

	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, "", fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), ".jpg", nil
}

// fit scales img down so both dimensions are at most max, preserving
// aspect ratio. Images already within bounds are returned as is.
func fit(img image.Image, max int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= max && h <= max {
		return img
	}

	scale := float64(max) / float64(w)
	if h > w {
		scale = float64(max) / float64(h)
	}
	nw := int(float64(w) * scale)
	nh := int(float64(h) * scale)
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
