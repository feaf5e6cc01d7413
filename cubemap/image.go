// Package cubemap provides an in-memory cubemap representation for
// environment map processing.
//
// A Cubemap is a view over an Image laid out as a horizontal or vertical
// cross. The Image exclusively owns the pixel storage; Cubemap and face
// views borrow it and must not outlive it.
package cubemap

import (
	"errors"
	"fmt"
)

// Image errors
var (
	ErrInvalidDimensions = errors.New("cubemap: invalid image dimensions")
	ErrSizeMismatch      = errors.New("cubemap: image dimensions do not match")
)

// RGB is a linear RGB color triple.
type RGB struct {
	R, G, B float32
}

// Add returns the sum of two colors.
func (c RGB) Add(o RGB) RGB {
	return RGB{c.R + o.R, c.G + o.G, c.B + o.B}
}

// Scale returns the color scaled by s.
func (c RGB) Scale(s float32) RGB {
	return RGB{c.R * s, c.G * s, c.B * s}
}

// Image is an owning, contiguous buffer of linear RGB float32 pixels.
// Stride is the distance between rows in pixels, which allows subimage
// views to share the parent's storage.
type Image struct {
	Pix    []float32
	Width  int
	Height int
	Stride int
}

// NewImage allocates a w by h RGB image.
func NewImage(w, h int) *Image {
	if w <= 0 || h <= 0 {
		panic(fmt.Sprintf("cubemap: invalid image size %dx%d", w, h))
	}
	return &Image{
		Pix:    make([]float32, w*h*3),
		Width:  w,
		Height: h,
		Stride: w,
	}
}

// Channels returns the number of color channels per pixel.
// All images in this package are RGB.
func (im *Image) Channels() int { return 3 }

// PixOffset returns the index of the first component of pixel (x, y).
func (im *Image) PixOffset(x, y int) int {
	return (y*im.Stride + x) * 3
}

// At returns the pixel at (x, y). Coordinates must be in bounds.
func (im *Image) At(x, y int) RGB {
	i := im.PixOffset(x, y)
	return RGB{im.Pix[i], im.Pix[i+1], im.Pix[i+2]}
}

// Set writes the pixel at (x, y). Coordinates must be in bounds.
func (im *Image) Set(x, y int, c RGB) {
	i := im.PixOffset(x, y)
	im.Pix[i] = c.R
	im.Pix[i+1] = c.G
	im.Pix[i+2] = c.B
}

// SubImage returns a w by h view at (x, y) sharing this image's storage.
// Writes through the view are visible in the parent.
func (im *Image) SubImage(x, y, w, h int) *Image {
	if x < 0 || y < 0 || w <= 0 || h <= 0 || x+w > im.Width || y+h > im.Height {
		panic(fmt.Sprintf("cubemap: subimage %d,%d %dx%d out of bounds of %dx%d",
			x, y, w, h, im.Width, im.Height))
	}
	off := im.PixOffset(x, y)
	return &Image{
		Pix:    im.Pix[off:],
		Width:  w,
		Height: h,
		Stride: im.Stride,
	}
}

// CopyFrom copies src's pixels into this image. Dimensions must match.
func (im *Image) CopyFrom(src *Image) error {
	if src.Width != im.Width || src.Height != im.Height {
		return fmt.Errorf("%w: %dx%d vs %dx%d",
			ErrSizeMismatch, src.Width, src.Height, im.Width, im.Height)
	}
	for y := 0; y < im.Height; y++ {
		so := src.PixOffset(0, y)
		do := im.PixOffset(0, y)
		copy(im.Pix[do:do+im.Width*3], src.Pix[so:so+src.Width*3])
	}
	return nil
}

// Clamp clamps every component into [0, max]. Decoded HDR input can carry
// negative or unbounded samples that destabilize the integrators.
func (im *Image) Clamp(max float32) {
	for y := 0; y < im.Height; y++ {
		o := im.PixOffset(0, y)
		row := im.Pix[o : o+im.Width*3]
		for i, v := range row {
			if v != v || v < 0 { // NaN or negative
				row[i] = 0
			} else if v > max {
				row[i] = max
			}
		}
	}
}

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}
