package cubemap

import (
	"math"

	"github.com/chewxy/math32"

	"github.com/mrjoshuak/go-cmgen/internal/parallel"
)

// ProcessFunc is called once per destination scanline with the face, the
// row index and the face view to write into.
type ProcessFunc func(f Face, y int, img *Image)

// Process runs fn for every scanline of every face in parallel. Scanlines
// are independent; the seam ring is repaired afterwards by MakeSeamless, so
// fn may write every texel of its row.
func (cm *Cubemap) Process(fn ProcessFunc) {
	dim := cm.dim
	parallel.For(NumFaces*dim, func(i int) {
		f := Face(i / dim)
		fn(f, i%dim, cm.faces[f])
	})
}

// CopyCross copies an already packed cross image into the cubemap's backing
// store, texel for texel. dst must be a cubemap view over backing and the
// source must have identical dimensions; no resampling is performed.
func CopyCross(backing *Image, src *Image) error {
	return backing.CopyFrom(src)
}

// ProjectEquirect projects a 2:1 equirectangular panorama onto the cubemap.
// Every destination texel's direction is converted to longitude/latitude and
// the source is sampled bilinearly. The caller rejects images whose width is
// not exactly twice their height before getting here.
func (cm *Cubemap) ProjectEquirect(src *Image) {
	w := src.Width
	h := src.Height
	cm.Process(func(f Face, y int, img *Image) {
		for x := 0; x < cm.dim; x++ {
			d := cm.DirectionFor(f, float64(x), float64(y))
			// Longitude 0 looks down +Z; latitude +pi/2 is +Y, the top row.
			u := (math.Atan2(d.X, d.Z)/(2*math.Pi) + 0.5) * float64(w)
			v := (0.5 - math.Asin(clamp1(d.Y))/math.Pi) * float64(h)
			img.Set(x, y, bilinear(src, float32(u), float32(v)))
		}
	})
}

// bilinear samples src at continuous pixel coordinates, clamping at the
// borders. The half-texel shift puts texel centers on integer coordinates.
func bilinear(src *Image, u, v float32) RGB {
	u -= 0.5
	v -= 0.5
	x0 := math32.Floor(u)
	y0 := math32.Floor(v)
	tx := u - x0
	ty := v - y0

	ix0 := clampInt(int(x0), 0, src.Width-1)
	iy0 := clampInt(int(y0), 0, src.Height-1)
	ix1 := clampInt(ix0+1, 0, src.Width-1)
	iy1 := clampInt(iy0+1, 0, src.Height-1)

	c00 := src.At(ix0, iy0)
	c10 := src.At(ix1, iy0)
	c01 := src.At(ix0, iy1)
	c11 := src.At(ix1, iy1)

	top := RGB{
		c00.R + (c10.R-c00.R)*tx,
		c00.G + (c10.G-c00.G)*tx,
		c00.B + (c10.B-c00.B)*tx,
	}
	bot := RGB{
		c01.R + (c11.R-c01.R)*tx,
		c01.G + (c11.G-c01.G)*tx,
		c01.B + (c11.B-c01.B)*tx,
	}
	return RGB{
		top.R + (bot.R-top.R)*ty,
		top.G + (bot.G-top.G)*ty,
		top.B + (bot.B-top.B)*ty,
	}
}

func clamp1(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}

// faceColors tints each face of the debug UV grid differently.
var faceColors = [NumFaces]RGB{
	{1, 0, 0},       // +X red
	{0.5, 0, 0},     // -X dark red
	{0, 1, 0},       // +Y green
	{0, 0.5, 0},     // -Y dark green
	{0, 0, 1},       // +Z blue
	{0, 0, 0.5},     // -Z dark blue
}

// DrawUVGrid writes a deterministic debug pattern: a white grid with the
// given number of cells per face edge over a per-face tint.
func (cm *Cubemap) DrawUVGrid(gridDensity int) {
	if gridDensity < 1 {
		gridDensity = 1
	}
	cell := cm.dim / gridDensity
	if cell < 1 {
		cell = 1
	}
	cm.Process(func(f Face, y int, img *Image) {
		for x := 0; x < cm.dim; x++ {
			onGrid := x%cell == 0 || y%cell == 0 ||
				x == cm.dim-1 || y == cm.dim-1
			if onGrid {
				img.Set(x, y, RGB{1, 1, 1})
			} else {
				img.Set(x, y, faceColors[f])
			}
		}
	})
}
