package builder

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif" // Register decoders
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/wudi/pdfreport/ir/semantic"
)

// DecodeOptions controls how raster data is turned into an image XObject.
type DecodeOptions struct {
	// MaxDimension caps the larger pixel dimension; bigger images are
	// resampled. Zero disables resampling.
	MaxDimension int
}

// ImageFromFile loads an image from a file path and converts it to *semantic.Image.
func ImageFromFile(path string, opts DecodeOptions) (*semantic.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ImageFromReader(f, opts)
}

// ImageFromReader decodes PNG, JPEG, GIF, BMP, TIFF or WebP data.
func ImageFromReader(r io.Reader, opts DecodeOptions) (*semantic.Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return ImageFromBytes(data, opts)
}

// ImageFromBytes decodes data. Baseline JPEG data that needs no resampling is
// embedded as-is with the DCTDecode filter.
func ImageFromBytes(data []byte, opts DecodeOptions) (*semantic.Image, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("decode image: empty %s image", format)
	}
	if opts.MaxDimension > 0 && (b.Dx() > opts.MaxDimension || b.Dy() > opts.MaxDimension) {
		return FromImage(Downsample(img, opts.MaxDimension)), nil
	}
	if format == "jpeg" {
		switch img.(type) {
		case *image.YCbCr:
			return dctImage(data, b, "DeviceRGB"), nil
		case *image.Gray:
			return dctImage(data, b, "DeviceGray"), nil
		}
	}
	return FromImage(img), nil
}

func dctImage(data []byte, b image.Rectangle, cs string) *semantic.Image {
	return &semantic.Image{
		Width:            b.Dx(),
		Height:           b.Dy(),
		ColorSpace:       semantic.DeviceColorSpace{Name: cs},
		BitsPerComponent: 8,
		Data:             data,
		Filter:           "DCTDecode",
	}
}

// Downsample scales src so that neither dimension exceeds maxDim, keeping the
// aspect ratio.
func Downsample(src image.Image, maxDim int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxDim <= 0 || (w <= maxDim && h <= maxDim) {
		return src
	}
	var tw, th int
	if w >= h {
		tw = maxDim
		th = h * maxDim / w
	} else {
		th = maxDim
		tw = w * maxDim / h
	}
	if tw < 1 {
		tw = 1
	}
	if th < 1 {
		th = 1
	}
	dst := image.NewNRGBA(image.Rect(0, 0, tw, th))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Over, nil)
	return dst
}

// FromImage converts a standard Go image.Image to *semantic.Image.
// Grayscale sources stay DeviceGray; everything else becomes DeviceRGB with a
// soft mask when any pixel is not fully opaque.
func FromImage(src image.Image) *semantic.Image {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if g, ok := src.(*image.Gray); ok {
		pixels := make([]byte, 0, w*h)
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			off := g.PixOffset(bounds.Min.X, y)
			pixels = append(pixels, g.Pix[off:off+w]...)
		}
		return &semantic.Image{
			Width:            w,
			Height:           h,
			ColorSpace:       semantic.DeviceColorSpace{Name: "DeviceGray"},
			BitsPerComponent: 8,
			Data:             pixels,
		}
	}

	nrgba := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(nrgba, nrgba.Bounds(), src, bounds.Min, draw.Src)

	pixels := make([]byte, 0, w*h*3)
	alpha := make([]byte, 0, w*h)
	hasAlpha := false
	for i := 0; i < w*h; i++ {
		offset := i * 4
		pixels = append(pixels, nrgba.Pix[offset], nrgba.Pix[offset+1], nrgba.Pix[offset+2])
		a := nrgba.Pix[offset+3]
		alpha = append(alpha, a)
		if a < 255 {
			hasAlpha = true
		}
	}

	img := &semantic.Image{
		Width:            w,
		Height:           h,
		ColorSpace:       semantic.DeviceColorSpace{Name: "DeviceRGB"},
		BitsPerComponent: 8,
		Data:             pixels,
	}
	if hasAlpha {
		img.SMask = &semantic.Image{
			Width:            w,
			Height:           h,
			ColorSpace:       semantic.DeviceColorSpace{Name: "DeviceGray"},
			BitsPerComponent: 8,
			Data:             alpha,
		}
	}
	return img
}
