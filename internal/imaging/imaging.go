// Package imaging decodes source media, scales it into a bounding box and
// encodes thumbnails.
package imaging

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif" // register decoder
	"image/jpeg"
	_ "image/png" // register decoder
	"io"

	_ "golang.org/x/image/bmp" // register decoder
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // register decoder
	_ "golang.org/x/image/webp" // register decoder
)

// DefaultJPEGQuality is used when a caller passes a non-positive quality.
const DefaultJPEGQuality = 85

// ErrEmptyImage is returned for images without pixels.
var ErrEmptyImage = errors.New("imaging: empty image")

// Decode reads any registered still-image format.
func Decode(r io.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	if img.Bounds().Empty() {
		return nil, format, ErrEmptyImage
	}
	return img, format, nil
}

// FitSize returns the size of a w×h image scaled so that its longer side is box.
// The shorter side never drops below one pixel.
func FitSize(w, h, box int) (int, int) {
	if w <= 0 || h <= 0 || box <= 0 {
		return 0, 0
	}
	if h > w {
		nw := int(float64(w) / float64(h) * float64(box))
		return atLeastOne(nw), box
	}
	nh := int(float64(h) / float64(w) * float64(box))
	return box, atLeastOne(nh)
}

func atLeastOne(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// Fit scales img into a box×box square preserving the aspect ratio.
func Fit(img image.Image, box int) (image.Image, error) {
	b := img.Bounds()
	w, h := FitSize(b.Dx(), b.Dy(), box)
	if w == 0 {
		return nil, ErrEmptyImage
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst, nil
}

// EncodeJPEG writes img as JPEG.
func EncodeJPEG(w io.Writer, img image.Image, quality int) error {
	if quality <= 0 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	if err := jpeg.Encode(w, img, &jpeg.Options{Quality: quality}); err != nil {
		return fmt.Errorf("encode jpeg: %w", err)
	}
	return nil
}
