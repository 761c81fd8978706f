// Package imaging normalizes uploaded item photos before storage.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"

	"golang.org/x/image/draw"
)

// MaxDimension is the maximum width or height for stored item photos.
const MaxDimension = 1024

// JPEGQuality is the compression quality for stored photos.
const JPEGQuality = 85

// ProcessResult is the normalized photo ready for storage.
type ProcessResult struct {
	Data []byte
	MIME string
}

// Process validates an uploaded photo, downscales it if larger than
// MaxDimension, and re-encodes it as JPEG. The input format is sniffed from
// the bytes, never taken from client headers; only JPEG and PNG are accepted.
func Process(r io.Reader) (*ProcessResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading image data: %w", err)
	}

	var img image.Image
	switch detected := http.DetectContentType(data); detected {
	case "image/jpeg":
		img, err = jpeg.Decode(bytes.NewReader(data))
	case "image/png":
		img, err = png.Decode(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("unsupported image format: %s (only JPEG and PNG accepted)", detected)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	img = fit(img, MaxDimension)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encoding JPEG: %w", err)
	}
	return &ProcessResult{Data: buf.Bytes(), MIME: "image/jpeg"}, nil
}

// fit scales the image down so neither dimension exceeds maxDim, keeping the
// aspect ratio. Images already within bounds come back untouched.
func fit(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxDim && h <= maxDim {
		return img
	}

	newW, newH := maxDim, h*maxDim/w
	if h > w {
		newW, newH = w*maxDim/h, maxDim
	}
	newW = max(newW, 1)
	newH = max(newH, 1)

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
