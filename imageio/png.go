package imageio

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/chewxy/math32"
	"github.com/mrjoshuak/go-cmgen/cubemap"
)

// encodePNG writes a 16-bit sRGB PNG. Values above 1 clip.
func encodePNG(w io.Writer, img *cubemap.Image) error {
	out := image.NewNRGBA64(image.Rect(0, 0, img.Width, img.Height))
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			c := img.At(x, y)
			out.SetNRGBA64(x, y, color.NRGBA64{
				R: srgbUint16(c.R),
				G: srgbUint16(c.G),
				B: srgbUint16(c.B),
				A: 65535,
			})
		}
	}
	if err := png.Encode(w, out); err != nil {
		return fmt.Errorf("imageio: png encode: %w", err)
	}
	return nil
}

// decodePNG reads a PNG and converts it from sRGB to linear. 16-bit images
// keep their extra precision through the transfer function.
func decodePNG(r io.Reader) (*cubemap.Image, error) {
	src, err := png.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("imageio: png decode: %w", err)
	}
	b := src.Bounds()
	img := cubemap.NewImage(b.Dx(), b.Dy())
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			r16, g16, b16, _ := src.At(b.Min.X+x, b.Min.Y+y).RGBA()
			img.Set(x, y, cubemap.RGB{
				R: srgbToLinear(float32(r16) / 65535),
				G: srgbToLinear(float32(g16) / 65535),
				B: srgbToLinear(float32(b16) / 65535),
			})
		}
	}
	return img, nil
}

func srgbByte(v float32) uint8 {
	s := linearToSRGB(v)
	if s <= 0 {
		return 0
	}
	if s >= 1 {
		return 255
	}
	return uint8(s*255 + 0.5)
}

func srgbUint16(v float32) uint16 {
	s := linearToSRGB(v)
	if s <= 0 {
		return 0
	}
	if s >= 1 {
		return 65535
	}
	return uint16(s*65535 + 0.5)
}

// linearToSRGB applies the piecewise sRGB OETF.
func linearToSRGB(v float32) float32 {
	if v <= 0.0031308 {
		return v * 12.92
	}
	return 1.055*math32.Pow(v, 1/2.4) - 0.055
}

// srgbToLinear applies the piecewise sRGB EOTF.
func srgbToLinear(v float32) float32 {
	if v <= 0.04045 {
		return v / 12.92
	}
	return math32.Pow((v+0.055)/1.055, 2.4)
}
