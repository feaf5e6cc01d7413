package cubemap

import (
	"math"
	"testing"
)

func TestCopyCross(t *testing.T) {
	const dim = 4
	src := NewImage(3*dim, 4*dim)
	for y := 0; y < src.Height; y++ {
		for x := 0; x < src.Width; x++ {
			src.Set(x, y, RGB{float32(x), float32(y), 0})
		}
	}
	backing, cm := New(dim, false)
	if err := CopyCross(backing, src); err != nil {
		t.Fatalf("CopyCross: %v", err)
	}
	// The pz face sits at (dim, dim) in the vertical cross.
	if got := cm.FaceImage(FacePZ).At(0, 0); got != (RGB{float32(dim), float32(dim), 0}) {
		t.Errorf("pz origin = %+v", got)
	}

	wrong := NewImage(dim, dim)
	if err := CopyCross(backing, wrong); err == nil {
		t.Error("CopyCross with wrong dimensions should fail")
	}
}

func TestProjectEquirectUniform(t *testing.T) {
	const dim = 8
	src := NewImage(64, 32)
	for y := 0; y < src.Height; y++ {
		for x := 0; x < src.Width; x++ {
			src.Set(x, y, RGB{0.5, 0.25, 0.75})
		}
	}
	_, cm := New(dim, false)
	cm.ProjectEquirect(src)
	for f := Face(0); f < NumFaces; f++ {
		c := cm.FaceImage(f).At(dim/2, dim/2)
		if math.Abs(float64(c.R)-0.5) > 1e-6 {
			t.Fatalf("face %v center = %+v, want uniform 0.5", f, c)
		}
	}
}

func TestProjectEquirectPoles(t *testing.T) {
	const dim = 8
	src := NewImage(32, 16)
	// Top source row white, bottom black: +Y must be bright, -Y dark.
	for y := 0; y < src.Height; y++ {
		v := float32(src.Height-1-y) / float32(src.Height-1)
		for x := 0; x < src.Width; x++ {
			src.Set(x, y, RGB{v, v, v})
		}
	}
	_, cm := New(dim, false)
	cm.ProjectEquirect(src)

	center := (float64(dim) - 1) / 2
	top := cm.FilterAtFace(FacePY, center+0.5, center+0.5)
	bottom := cm.FilterAtFace(FaceNY, center+0.5, center+0.5)
	if top.R <= bottom.R {
		t.Errorf("pole brightness inverted: +Y %g, -Y %g", top.R, bottom.R)
	}
	if top.R < 0.9 || bottom.R > 0.1 {
		t.Errorf("poles not reaching extremes: +Y %g, -Y %g", top.R, bottom.R)
	}
}

func TestDrawUVGridDeterministic(t *testing.T) {
	const dim = 16
	a, cma := New(dim, false)
	b, cmb := New(dim, false)
	cma.DrawUVGrid(4)
	cmb.DrawUVGrid(4)
	for i := range a.Pix {
		if a.Pix[i] != b.Pix[i] {
			t.Fatal("UV grid is not deterministic")
		}
	}
	// Grid lines are white.
	if got := cma.FaceImage(FacePZ).At(0, 0); got != (RGB{1, 1, 1}) {
		t.Errorf("grid origin = %+v, want white", got)
	}
	// Cell interiors carry the face tint.
	if got := cma.FaceImage(FacePZ).At(2, 2); got != faceColors[FacePZ] {
		t.Errorf("pz cell interior = %+v, want %+v", got, faceColors[FacePZ])
	}
}

func TestMirrorIsInvolution(t *testing.T) {
	const dim = 8
	_, src := New(dim, false)
	fillByDirection(src)

	_, once := New(dim, false)
	Mirror(once, src)
	_, twice := New(dim, false)
	Mirror(twice, once)

	for f := Face(0); f < NumFaces; f++ {
		a := src.FaceImage(f)
		b := twice.FaceImage(f)
		for y := 0; y < dim; y++ {
			for x := 0; x < dim; x++ {
				if a.At(x, y) != b.At(x, y) {
					t.Fatalf("face %v texel (%d,%d) changed after double mirror", f, x, y)
				}
			}
		}
	}
}

func TestMirrorSwapsXFaces(t *testing.T) {
	const dim = 4
	_, src := New(dim, false)
	for f := Face(0); f < NumFaces; f++ {
		fill(src.FaceImage(f), RGB{float32(f + 1), 0, 0})
	}
	_, dst := New(dim, false)
	Mirror(dst, src)

	if got := dst.FaceImage(FacePX).At(1, 1).R; got != float32(FaceNX+1) {
		t.Errorf("mirrored +X face reads %g, want -X source", got)
	}
	if got := dst.FaceImage(FaceNX).At(1, 1).R; got != float32(FacePX+1) {
		t.Errorf("mirrored -X face reads %g, want +X source", got)
	}
	if got := dst.FaceImage(FacePZ).At(1, 1).R; got != float32(FacePZ+1) {
		t.Errorf("mirrored +Z face reads %g, want +Z source", got)
	}
}

func TestProcessCoversEveryScanline(t *testing.T) {
	const dim = 4
	_, cm := New(dim, false)
	cm.Process(func(f Face, y int, img *Image) {
		for x := 0; x < dim; x++ {
			img.Set(x, y, RGB{1, 1, 1})
		}
	})
	for f := Face(0); f < NumFaces; f++ {
		img := cm.FaceImage(f)
		for y := 0; y < dim; y++ {
			for x := 0; x < dim; x++ {
				if img.At(x, y) != (RGB{1, 1, 1}) {
					t.Fatalf("face %v texel (%d,%d) not visited", f, x, y)
				}
			}
		}
	}
}
