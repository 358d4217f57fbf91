package builder

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"
)

func checker(w, h int, alpha uint8) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBA{R: 200, G: 10, B: 10, A: alpha}
			if (x+y)%2 == 0 {
				c = color.NRGBA{R: 10, G: 10, B: 200, A: alpha}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	return buf.Bytes()
}

func TestImageFromBytes_PNGWithAlpha(t *testing.T) {
	img, err := ImageFromBytes(encodePNG(t, checker(4, 3, 128)), DecodeOptions{})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Width != 4 || img.Height != 3 {
		t.Fatalf("size = %dx%d", img.Width, img.Height)
	}
	if len(img.Data) != 4*3*3 {
		t.Fatalf("rgb data length = %d", len(img.Data))
	}
	if img.SMask == nil || len(img.SMask.Data) != 12 {
		t.Fatalf("expected soft mask for translucent image")
	}
	if img.Filter != "" {
		t.Fatalf("png should be re-encoded, filter = %q", img.Filter)
	}
}

func TestImageFromBytes_OpaquePNGHasNoMask(t *testing.T) {
	img, err := ImageFromBytes(encodePNG(t, checker(2, 2, 255)), DecodeOptions{})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.SMask != nil {
		t.Fatalf("opaque image should not carry a soft mask")
	}
}

func TestImageFromBytes_JPEGPassthrough(t *testing.T) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, checker(8, 8, 255), nil); err != nil {
		t.Fatalf("jpeg encode: %v", err)
	}
	img, err := ImageFromBytes(buf.Bytes(), DecodeOptions{})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Filter != "DCTDecode" {
		t.Fatalf("filter = %q, want DCTDecode", img.Filter)
	}
	if !bytes.Equal(img.Data, buf.Bytes()) {
		t.Fatalf("jpeg bytes should be embedded unchanged")
	}
	if img.ColorSpaceName() != "DeviceRGB" {
		t.Fatalf("color space = %q", img.ColorSpaceName())
	}
}

func TestImageFromBytes_BMPAndDownsample(t *testing.T) {
	var buf bytes.Buffer
	if err := bmp.Encode(&buf, checker(40, 20, 255)); err != nil {
		t.Fatalf("bmp encode: %v", err)
	}
	img, err := ImageFromBytes(buf.Bytes(), DecodeOptions{MaxDimension: 10})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Width != 10 || img.Height != 5 {
		t.Fatalf("downsampled size = %dx%d, want 10x5", img.Width, img.Height)
	}
}

func TestImageFromBytes_Garbage(t *testing.T) {
	if _, err := ImageFromBytes([]byte("not an image"), DecodeOptions{}); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestImageFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logo.png")
	if err := os.WriteFile(path, encodePNG(t, checker(3, 3, 255)), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	img, err := ImageFromFile(path, DecodeOptions{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if img.Width != 3 {
		t.Fatalf("width = %d", img.Width)
	}
	if _, err := ImageFromFile(filepath.Join(t.TempDir(), "missing.png"), DecodeOptions{}); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestFromImageGray(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 3, 2))
	g.SetGray(1, 1, color.Gray{Y: 77})
	img := FromImage(g)
	if img.ColorSpaceName() != "DeviceGray" || len(img.Data) != 6 || img.Data[4] != 77 {
		t.Fatalf("gray conversion = %+v", img)
	}
}
