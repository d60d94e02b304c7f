package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
)

// ErrDecode is returned when the bytes are not a PNG or JPEG image.
var ErrDecode = errors.New("image could not be decoded")

// Channels is the number of bytes per pixel in RGBImage.Pix.
const Channels = 3

// RGBImage is a decoded pixel grid stored row-major as packed R,G,B bytes, origin top-left.
type RGBImage struct {
	Width  int
	Height int
	Pix    []uint8
}

// MaxPixels bounds width*height of an accepted image. Headers are checked before any pixel buffer is allocated.
const MaxPixels = 50_000_000

// Decode turns PNG or JPEG bytes into an RGB grid. Only those two formats are recognised, whatever other
// image codecs the binary links.
func Decode(data []byte) (*RGBImage, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty buffer", ErrDecode)
	}

	var (
		decode       func(io.Reader) (image.Image, error)
		decodeConfig func(io.Reader) (image.Config, error)
	)
	switch {
	case bytes.HasPrefix(data, pngMagic):
		decode, decodeConfig = png.Decode, png.DecodeConfig
	case bytes.HasPrefix(data, jpegMagic):
		decode, decodeConfig = jpeg.Decode, jpeg.DecodeConfig
	default:
		return nil, fmt.Errorf("%w: unsupported format", ErrDecode)
	}

	cfg, err := decodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: zero-sized image", ErrDecode)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrDecode, cfg.Width, cfg.Height, MaxPixels)
	}

	img, err := decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	rgb := FromImage(img)
	if rgb.Width == 0 || rgb.Height == 0 {
		return nil, fmt.Errorf("%w: zero-sized image", ErrDecode)
	}

	return rgb, nil
}

var (
	pngMagic  = []byte("\x89PNG\r\n\x1a\n")
	jpegMagic = []byte{0xff, 0xd8}
)

// FromImage converts any decoded image into straight 8-bit RGB, dropping alpha. Pose models expect RGB order
// regardless of how the source codec stored the pixels (YCbCr for JPEG, paletted or 16-bit for some PNGs).
func FromImage(img image.Image) *RGBImage {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	out := &RGBImage{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*Channels),
	}

	if src, ok := img.(*image.NRGBA); ok {
		for y := 0; y < height; y++ {
			row := src.Pix[y*src.Stride : y*src.Stride+width*4]
			for x := 0; x < width; x++ {
				copy(out.Pix[(y*width+x)*Channels:], row[x*4:x*4+Channels])
			}
		}
		return out
	}

	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			out.Pix[i] = c.R
			out.Pix[i+1] = c.G
			out.Pix[i+2] = c.B
			i += Channels
		}
	}

	return out
}

// ToImage wraps the grid back into an opaque image.Image.
func (m *RGBImage) ToImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, m.Width, m.Height))
	for p := 0; p < m.Width*m.Height; p++ {
		copy(img.Pix[p*4:], m.Pix[p*Channels:p*Channels+Channels])
		img.Pix[p*4+3] = 0xff
	}
	return img
}

func (m *RGBImage) EncodePNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, m.ToImage()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
