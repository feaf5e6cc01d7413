package imageio

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"github.com/mrjoshuak/go-cmgen/cubemap"
)

// rgbmRange is the HDR multiplier range of the RGBM encoding: the stored
// alpha scales the color by up to this factor.
const rgbmRange = 16.0

// encodeRGBM writes an RGBA PNG with the radiance packed as RGBM. The
// square root of the linear value is stored so a decoder reconstructs
// linear = (rgb * a * 16)^2, which spends the 8 bits where the eye needs
// them.
func encodeRGBM(w io.Writer, img *cubemap.Image) error {
	out := image.NewNRGBA(image.Rect(0, 0, img.Width, img.Height))
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			c := img.At(x, y)
			out.SetNRGBA(x, y, linearToRGBM(c))
		}
	}
	if err := png.Encode(w, out); err != nil {
		return fmt.Errorf("imageio: rgbm encode: %w", err)
	}
	return nil
}

func linearToRGBM(c cubemap.RGB) color.NRGBA {
	r := math.Sqrt(math.Max(0, float64(c.R)))
	g := math.Sqrt(math.Max(0, float64(c.G)))
	b := math.Sqrt(math.Max(0, float64(c.B)))

	m := math.Max(math.Max(r, g), math.Max(b, 1e-6)) / rgbmRange
	if m > 1 {
		m = 1
	}
	// Quantize the multiplier up so the mantissas stay in range.
	m = math.Ceil(m*255) / 255

	s := 1 / (m * rgbmRange)
	return color.NRGBA{
		R: rgbmByte(r * s),
		G: rgbmByte(g * s),
		B: rgbmByte(b * s),
		A: rgbmByte(m),
	}
}

func rgbmByte(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
