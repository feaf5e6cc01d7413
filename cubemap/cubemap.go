package cubemap

import (
	"math"

	"github.com/chewxy/math32"
)

// Face identifies one of the six cube faces.
type Face int

// Face order matches the usual graphics API convention.
const (
	FacePX Face = iota // +X
	FaceNX             // -X
	FacePY             // +Y
	FaceNY             // -Y
	FacePZ             // +Z
	FaceNZ             // -Z
	NumFaces = 6
)

// String returns the short face identifier used in output filenames.
func (f Face) String() string {
	switch f {
	case FacePX:
		return "px"
	case FaceNX:
		return "nx"
	case FacePY:
		return "py"
	case FaceNY:
		return "ny"
	case FacePZ:
		return "pz"
	case FaceNZ:
		return "nz"
	default:
		return "unknown"
	}
}

// Direction is a 3D direction. It is not required to be normalized unless
// stated otherwise.
type Direction struct {
	X, Y, Z float64
}

// Cubemap is a non-owning view of six equally sized square faces over a
// backing cross Image. Its lifetime must not exceed the backing image's.
type Cubemap struct {
	dim   int
	scale float64 // 2/dim
	faces [NumFaces]*Image
}

// New allocates the backing cross image for a cubemap of the given face
// dimension and returns both. The layout is a vertical cross (3 faces wide,
// 4 tall) unless horizontal is set (4 wide, 3 tall). dim must be a power of
// two; callers validate this before allocation.
func New(dim int, horizontal bool) (*Image, *Cubemap) {
	var img *Image
	if horizontal {
		img = NewImage(4*dim, 3*dim)
	} else {
		img = NewImage(3*dim, 4*dim)
	}
	cm := FromCross(img, dim, horizontal)
	return img, cm
}

// FromCross builds a cubemap view over an existing cross image.
func FromCross(img *Image, dim int, horizontal bool) *Cubemap {
	cm := &Cubemap{dim: dim, scale: 2 / float64(dim)}
	// Face placement within the cross, in units of the face dimension:
	//
	//          py                     py
	//       nx pz px nz           nx pz px
	//          ny                     ny nz   (horizontal)
	cm.faces[FaceNX] = img.SubImage(0, dim, dim, dim)
	cm.faces[FacePZ] = img.SubImage(dim, dim, dim, dim)
	cm.faces[FacePX] = img.SubImage(2*dim, dim, dim, dim)
	cm.faces[FacePY] = img.SubImage(dim, 0, dim, dim)
	cm.faces[FaceNY] = img.SubImage(dim, 2*dim, dim, dim)
	if horizontal {
		cm.faces[FaceNZ] = img.SubImage(3*dim, dim, dim, dim)
	} else {
		cm.faces[FaceNZ] = img.SubImage(dim, 3*dim, dim, dim)
	}
	return cm
}

// Dim returns the face dimension in texels.
func (cm *Cubemap) Dim() int { return cm.dim }

// FaceImage returns the borrowed view for one face.
func (cm *Cubemap) FaceImage(f Face) *Image { return cm.faces[f] }

// DirectionFor returns the normalized direction through the center of
// texel (x, y) of the given face. Fractional coordinates address positions
// between texel centers; x=0,y=0 is the upper-left texel.
func (cm *Cubemap) DirectionFor(f Face, x, y float64) Direction {
	// Map texel centers to [-1,1] on the face plane. The vertical axis is
	// flipped so +t points up in world space while y grows downward in the
	// image.
	cx := (x+0.5)*cm.scale - 1
	cy := 1 - (y+0.5)*cm.scale
	return directionFor(f, cx, cy)
}

func directionFor(f Face, cx, cy float64) Direction {
	var d Direction
	switch f {
	case FacePX:
		d = Direction{1, cy, -cx}
	case FaceNX:
		d = Direction{-1, cy, cx}
	case FacePY:
		d = Direction{cx, 1, -cy}
	case FaceNY:
		d = Direction{cx, -1, cy}
	case FacePZ:
		d = Direction{cx, cy, 1}
	case FaceNZ:
		d = Direction{-cx, cy, -1}
	}
	l := math.Sqrt(cx*cx + cy*cy + 1)
	return Direction{d.X / l, d.Y / l, d.Z / l}
}

// Address maps a direction to its face and continuous texel coordinates.
// The returned u, v lie in [0, dim) with texel centers at integer+0.5; it is
// the inverse of DirectionFor up to seam duplication.
func (cm *Cubemap) Address(d Direction) (f Face, u, v float64) {
	ax, ay, az := math.Abs(d.X), math.Abs(d.Y), math.Abs(d.Z)
	var cx, cy float64
	switch {
	case ax >= ay && ax >= az:
		if d.X >= 0 {
			f, cx, cy = FacePX, -d.Z/ax, d.Y/ax
		} else {
			f, cx, cy = FaceNX, d.Z/ax, d.Y/ax
		}
	case ay >= ax && ay >= az:
		if d.Y >= 0 {
			f, cx, cy = FacePY, d.X/ay, -d.Z/ay
		} else {
			f, cx, cy = FaceNY, d.X/ay, d.Z/ay
		}
	default:
		if d.Z >= 0 {
			f, cx, cy = FacePZ, d.X/az, d.Y/az
		} else {
			f, cx, cy = FaceNZ, -d.X/az, d.Y/az
		}
	}
	u = (cx + 1) * 0.5 * float64(cm.dim)
	v = (1 - cy) * 0.5 * float64(cm.dim)
	return f, u, v
}

// TexelAt returns the texel nearest to the given direction.
func (cm *Cubemap) TexelAt(d Direction) RGB {
	f, u, v := cm.Address(d)
	x := clampInt(int(u), 0, cm.dim-1)
	y := clampInt(int(v), 0, cm.dim-1)
	return cm.faces[f].At(x, y)
}

// FilterAt bilinearly samples the cubemap in the given direction. Samples
// that straddle a face edge rely on the duplicated seam ring, so the cubemap
// must be seamless for results to be continuous across faces.
func (cm *Cubemap) FilterAt(d Direction) RGB {
	f, u, v := cm.Address(d)
	return cm.FilterAtFace(f, u, v)
}

// FilterAtFace bilinearly samples face f at continuous coordinates (u, v).
func (cm *Cubemap) FilterAtFace(f Face, u, v float64) RGB {
	img := cm.faces[f]
	// Shift so texel centers land on integers, then clamp to the face.
	fu := float32(u) - 0.5
	fv := float32(v) - 0.5
	x0 := math32.Floor(fu)
	y0 := math32.Floor(fv)
	tx := fu - x0
	ty := fv - y0

	ix0 := clampInt(int(x0), 0, cm.dim-1)
	iy0 := clampInt(int(y0), 0, cm.dim-1)
	ix1 := clampInt(ix0+1, 0, cm.dim-1)
	iy1 := clampInt(iy0+1, 0, cm.dim-1)

	c00 := img.At(ix0, iy0)
	c10 := img.At(ix1, iy0)
	c01 := img.At(ix0, iy1)
	c11 := img.At(ix1, iy1)

	w00 := (1 - tx) * (1 - ty)
	w10 := tx * (1 - ty)
	w01 := (1 - tx) * ty
	w11 := tx * ty
	return RGB{
		R: c00.R*w00 + c10.R*w10 + c01.R*w01 + c11.R*w11,
		G: c00.G*w00 + c10.G*w10 + c01.G*w01 + c11.G*w11,
		B: c00.B*w00 + c10.B*w10 + c01.B*w01 + c11.B*w11,
	}
}

// FilterAtLevels samples two adjacent mip levels bilinearly and blends
// between them. t is the fractional distance from l0 toward l1.
func FilterAtLevels(l0, l1 *Cubemap, t float64, d Direction) RGB {
	c0 := l0.FilterAt(d)
	if t <= 0 || l1 == nil {
		return c0
	}
	c1 := l1.FilterAt(d)
	ft := float32(t)
	return RGB{
		R: c0.R + (c1.R-c0.R)*ft,
		G: c0.G + (c1.G-c0.G)*ft,
		B: c0.B + (c1.B-c0.B)*ft,
	}
}

// SolidAngle returns the solid angle subtended by texel (x, y) of a face of
// the given dimension. Texels near cube corners subtend less solid angle
// than texels at face centers; integrators must weight by this, not by UV
// area.
func SolidAngle(dim, x, y int) float64 {
	iDim := 1 / float64(dim)
	s := (float64(x)+0.5)*2*iDim - 1
	t := (float64(y)+0.5)*2*iDim - 1
	x0 := s - iDim
	y0 := t - iDim
	x1 := s + iDim
	y1 := t + iDim
	return sphereQuadrantArea(x0, y0) -
		sphereQuadrantArea(x0, y1) -
		sphereQuadrantArea(x1, y0) +
		sphereQuadrantArea(x1, y1)
}

// sphereQuadrantArea integrates the area element of the sphere projected
// onto the cube face plane over [0,x] x [0,y].
func sphereQuadrantArea(x, y float64) float64 {
	return math.Atan2(x*y, math.Sqrt(x*x+y*y+1))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
