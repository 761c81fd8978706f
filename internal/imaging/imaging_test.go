package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func createTestJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x % 256), uint8(y % 256), 128, 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encoding test JPEG: %v", err)
	}
	return buf.Bytes()
}

func createTestPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding test PNG: %v", err)
	}
	return buf.Bytes()
}

func decodeResult(t *testing.T, res *ProcessResult) image.Image {
	t.Helper()
	img, err := jpeg.Decode(bytes.NewReader(res.Data))
	if err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	return img
}

func TestProcessSmallImageKeepsSize(t *testing.T) {
	data := createTestJPEG(t, 200, 100)

	res, err := Process(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.MIME != "image/jpeg" {
		t.Errorf("expected image/jpeg, got %q", res.MIME)
	}

	img := decodeResult(t, res)
	if img.Bounds().Dx() != 200 || img.Bounds().Dy() != 100 {
		t.Errorf("expected 200x100, got %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestProcessDownscalesWide(t *testing.T) {
	data := createTestJPEG(t, 2048, 1024)

	res, err := Process(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	img := decodeResult(t, res)
	if img.Bounds().Dx() != MaxDimension {
		t.Errorf("expected width %d, got %d", MaxDimension, img.Bounds().Dx())
	}
	if img.Bounds().Dy() != MaxDimension/2 {
		t.Errorf("expected height %d, got %d", MaxDimension/2, img.Bounds().Dy())
	}
}

func TestProcessDownscalesTall(t *testing.T) {
	data := createTestJPEG(t, 500, 3000)

	res, err := Process(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	img := decodeResult(t, res)
	if img.Bounds().Dy() != MaxDimension {
		t.Errorf("expected height %d, got %d", MaxDimension, img.Bounds().Dy())
	}
	if img.Bounds().Dx() >= 500 {
		t.Errorf("expected width scaled down, got %d", img.Bounds().Dx())
	}
}

func TestProcessConvertsPNG(t *testing.T) {
	data := createTestPNG(t, 64, 64)

	res, err := Process(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.MIME != "image/jpeg" {
		t.Errorf("expected PNG converted to JPEG, got %q", res.MIME)
	}
}

func TestProcessRejectsInvalidData(t *testing.T) {
	if _, err := Process(bytes.NewReader([]byte("this is not an image"))); err == nil {
		t.Error("expected an error for non-image data")
	}
}

func TestProcessRejectsGIF(t *testing.T) {
	// A minimal GIF header is enough to be sniffed as image/gif.
	gif := []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00;")
	if _, err := Process(bytes.NewReader(gif)); err == nil {
		t.Error("expected GIF to be rejected")
	}
}
