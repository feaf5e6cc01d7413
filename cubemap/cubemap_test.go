package cubemap

import (
	"math"
	"testing"
)

func TestDirectionAddressRoundTrip(t *testing.T) {
	const dim = 16
	_, cm := New(dim, false)
	for f := Face(0); f < NumFaces; f++ {
		for y := 0; y < dim; y++ {
			for x := 0; x < dim; x++ {
				d := cm.DirectionFor(f, float64(x), float64(y))
				nf, u, v := cm.Address(d)
				if nf != f {
					t.Fatalf("face %v texel (%d,%d): address returned face %v", f, x, y, nf)
				}
				if math.Abs(u-(float64(x)+0.5)) > 1e-9 || math.Abs(v-(float64(y)+0.5)) > 1e-9 {
					t.Fatalf("face %v texel (%d,%d): round trip gave (%g,%g)", f, x, y, u, v)
				}
			}
		}
	}
}

func TestDirectionForFaceCenters(t *testing.T) {
	const dim = 8
	_, cm := New(dim, false)
	center := (float64(dim) - 1) / 2

	want := map[Face]Direction{
		FacePX: {1, 0, 0},
		FaceNX: {-1, 0, 0},
		FacePY: {0, 1, 0},
		FaceNY: {0, -1, 0},
		FacePZ: {0, 0, 1},
		FaceNZ: {0, 0, -1},
	}
	for f, w := range want {
		d := cm.DirectionFor(f, center, center)
		if math.Abs(d.X-w.X) > 1e-12 || math.Abs(d.Y-w.Y) > 1e-12 || math.Abs(d.Z-w.Z) > 1e-12 {
			t.Errorf("face %v center direction = %+v, want %+v", f, d, w)
		}
	}
}

func TestDirectionForIsNormalized(t *testing.T) {
	const dim = 4
	_, cm := New(dim, false)
	for f := Face(0); f < NumFaces; f++ {
		d := cm.DirectionFor(f, 0, float64(dim-1))
		l := math.Sqrt(d.X*d.X + d.Y*d.Y + d.Z*d.Z)
		if math.Abs(l-1) > 1e-12 {
			t.Errorf("face %v corner direction has length %g", f, l)
		}
	}
}

func TestSolidAngleSumsToSphere(t *testing.T) {
	const dim = 16
	var sum float64
	for y := 0; y < dim; y++ {
		for x := 0; x < dim; x++ {
			sum += SolidAngle(dim, x, y)
		}
	}
	sum *= NumFaces
	if math.Abs(sum-4*math.Pi) > 1e-9 {
		t.Errorf("total solid angle = %g, want %g", sum, 4*math.Pi)
	}
}

func TestSolidAngleCornerSmallerThanCenter(t *testing.T) {
	const dim = 16
	corner := SolidAngle(dim, 0, 0)
	center := SolidAngle(dim, dim/2, dim/2)
	if corner >= center {
		t.Errorf("corner solid angle %g should be smaller than center %g", corner, center)
	}
}

func TestSubImageSharesStorage(t *testing.T) {
	img := NewImage(8, 8)
	view := img.SubImage(2, 2, 4, 4)
	view.Set(0, 0, RGB{1, 2, 3})
	if got := img.At(2, 2); got != (RGB{1, 2, 3}) {
		t.Errorf("parent pixel = %+v after write through view", got)
	}
	img.Set(3, 3, RGB{4, 5, 6})
	if got := view.At(1, 1); got != (RGB{4, 5, 6}) {
		t.Errorf("view pixel = %+v after write through parent", got)
	}
}

func TestCopyFromSizeMismatch(t *testing.T) {
	a := NewImage(4, 4)
	b := NewImage(8, 8)
	if err := a.CopyFrom(b); err == nil {
		t.Error("CopyFrom with mismatched sizes should fail")
	}
}

func TestClamp(t *testing.T) {
	img := NewImage(2, 1)
	img.Set(0, 0, RGB{float32(math.NaN()), -1, 2})
	img.Set(1, 0, RGB{0.5, 100, 0})
	img.Clamp(10)
	if got := img.At(0, 0); got != (RGB{0, 0, 2}) {
		t.Errorf("clamped pixel = %+v, want {0 0 2}", got)
	}
	if got := img.At(1, 0); got != (RGB{0.5, 10, 0}) {
		t.Errorf("clamped pixel = %+v, want {0.5 10 0}", got)
	}
}

func TestTexelAtAxisDirections(t *testing.T) {
	const dim = 4
	_, cm := New(dim, false)
	for f := Face(0); f < NumFaces; f++ {
		fill(cm.FaceImage(f), RGB{float32(f), 0, 0})
	}
	cases := []struct {
		d    Direction
		want Face
	}{
		{Direction{1, 0, 0}, FacePX},
		{Direction{-1, 0, 0}, FaceNX},
		{Direction{0, 1, 0}, FacePY},
		{Direction{0, -1, 0}, FaceNY},
		{Direction{0, 0, 1}, FacePZ},
		{Direction{0, 0, -1}, FaceNZ},
	}
	for _, c := range cases {
		if got := cm.TexelAt(c.d); got.R != float32(c.want) {
			t.Errorf("TexelAt(%+v) hit face %v, want %v", c.d, Face(got.R), c.want)
		}
	}
}

func TestFilterAtLevelsBlends(t *testing.T) {
	const dim = 4
	_, l0 := New(dim, false)
	_, l1 := New(dim, false)
	for f := Face(0); f < NumFaces; f++ {
		fill(l0.FaceImage(f), RGB{1, 1, 1})
		fill(l1.FaceImage(f), RGB{3, 3, 3})
	}
	d := Direction{0, 0, 1}
	if got := FilterAtLevels(l0, l1, 0.5, d); math.Abs(float64(got.R)-2) > 1e-6 {
		t.Errorf("blend at t=0.5 = %g, want 2", got.R)
	}
	if got := FilterAtLevels(l0, nil, 0.5, d); got.R != 1 {
		t.Errorf("blend with missing upper level = %g, want 1", got.R)
	}
	if got := FilterAtLevels(l0, l1, 0, d); got.R != 1 {
		t.Errorf("blend at t=0 = %g, want 1", got.R)
	}
}

func TestIsPowerOfTwo(t *testing.T) {
	for _, n := range []int{1, 2, 4, 256, 1024} {
		if !IsPowerOfTwo(n) {
			t.Errorf("IsPowerOfTwo(%d) = false", n)
		}
	}
	for _, n := range []int{0, -2, 3, 12, 255} {
		if IsPowerOfTwo(n) {
			t.Errorf("IsPowerOfTwo(%d) = true", n)
		}
	}
}

func fill(img *Image, c RGB) {
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			img.Set(x, y, c)
		}
	}
}
