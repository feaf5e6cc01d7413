package ibl

import (
	"math"
	"strings"
	"testing"

	"github.com/mrjoshuak/go-cmgen/cubemap"
)

func uniformCubemap(dim int, c cubemap.RGB) (*cubemap.Image, *cubemap.Cubemap) {
	img, cm := cubemap.New(dim, false)
	for f := cubemap.Face(0); f < cubemap.NumFaces; f++ {
		face := cm.FaceImage(f)
		for y := 0; y < dim; y++ {
			for x := 0; x < dim; x++ {
				face.Set(x, y, c)
			}
		}
	}
	return img, cm
}

func TestProjectSHUniformRadiance(t *testing.T) {
	_, cm := uniformCubemap(32, cubemap.RGB{R: 1, G: 1, B: 1})
	sh := ProjectSH(cm, 3, false)

	if len(sh.Coefs) != 9 {
		t.Fatalf("3 bands gave %d coefficients, want 9", len(sh.Coefs))
	}

	// A constant environment projects entirely onto band 0:
	// coef0 = 4*pi*Y00 = 2*sqrt(pi).
	want := 2 * math.Sqrt(math.Pi)
	if math.Abs(sh.Coefs[0][0]-want) > 1e-3 {
		t.Errorf("band 0 coefficient = %g, want %g", sh.Coefs[0][0], want)
	}
	for i := 1; i < len(sh.Coefs); i++ {
		if math.Abs(sh.Coefs[i][0]) > 1e-3 {
			t.Errorf("coefficient %d = %g, want ~0 for uniform input", i, sh.Coefs[i][0])
		}
	}
}

func TestProjectSHDeterministic(t *testing.T) {
	img, cm := cubemap.New(16, false)
	for i := range img.Pix {
		img.Pix[i] = float32(i%97) / 97
	}
	a := ProjectSH(cm, 3, false)
	b := ProjectSH(cm, 3, false)
	for i := range a.Coefs {
		if a.Coefs[i] != b.Coefs[i] {
			t.Fatalf("coefficient %d differs between identical runs", i)
		}
	}
}

func TestEvalReconstructsUniform(t *testing.T) {
	_, cm := uniformCubemap(32, cubemap.RGB{R: 0.8, G: 0.8, B: 0.8})
	sh := ProjectSH(cm, 3, false)
	for _, d := range []cubemap.Direction{
		{Z: 1}, {X: 1}, {Y: -1},
	} {
		c := sh.Eval(d)
		if math.Abs(float64(c.R)-0.8) > 1e-2 {
			t.Errorf("Eval(%+v) = %g, want 0.8", d, c.R)
		}
	}
}

func TestShaderSHOfUniformIsUnity(t *testing.T) {
	// For a constant environment of radiance 1, the preprocessed 3-band
	// irradiance SH must reduce to a constant term of 1: the shader
	// polynomial basis starts with {1}, and E/pi of a white furnace is 1.
	_, cm := uniformCubemap(32, cubemap.RGB{R: 1, G: 1, B: 1})
	sh := ProjectSH(cm, 3, true)
	sh.PreprocessForShader()

	if math.Abs(sh.Coefs[0][0]-1) > 1e-3 {
		t.Errorf("constant term = %g, want 1", sh.Coefs[0][0])
	}
	for i := 1; i < 9; i++ {
		if math.Abs(sh.Coefs[i][0]) > 1e-3 {
			t.Errorf("coefficient %d = %g, want ~0", i, sh.Coefs[i][0])
		}
	}
}

func TestTruncatedCosSHKnownValues(t *testing.T) {
	cases := []struct {
		l    int
		want float64
	}{
		{0, math.Pi},
		{1, 2 * math.Pi / 3},
		{2, math.Pi / 4},
		{3, 0},
		{4, -math.Pi / 24},
		{5, 0},
	}
	for _, c := range cases {
		if got := truncatedCosSH(c.l); math.Abs(got-c.want) > 1e-12 {
			t.Errorf("truncatedCosSH(%d) = %g, want %g", c.l, got, c.want)
		}
	}
}

func TestSHBasisBandZeroAndOne(t *testing.T) {
	out := make([]float64, 9)

	shBasis(out, 3, cubemap.Direction{Z: 1})
	if math.Abs(out[0]-0.282095) > 1e-6 {
		t.Errorf("Y00 = %g, want 0.282095", out[0])
	}
	// At +Z only the zonal harmonics are nonzero.
	if math.Abs(out[shIndex(0, 1)]-0.488603) > 1e-6 {
		t.Errorf("Y10(+Z) = %g, want 0.488603", out[shIndex(0, 1)])
	}
	if math.Abs(out[shIndex(1, 1)]) > 1e-12 || math.Abs(out[shIndex(-1, 1)]) > 1e-12 {
		t.Error("sectoral band-1 harmonics nonzero at +Z")
	}

	// Band 1 follows the direction components up to the shared constant.
	shBasis(out, 3, cubemap.Direction{X: 1})
	if math.Abs(math.Abs(out[shIndex(1, 1)])-0.488603) > 1e-6 {
		t.Errorf("|Y11(+X)| = %g, want 0.488603", math.Abs(out[shIndex(1, 1)]))
	}
}

func TestSHWriteText(t *testing.T) {
	sh := &SH{Bands: 1, Coefs: [][3]float64{{0.5, 0.25, 0.125}}}
	var sb strings.Builder
	if err := sh.WriteText(&sb); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	if got, want := sb.String(), "0.5 0.25 0.125\n"; got != want {
		t.Errorf("WriteText = %q, want %q", got, want)
	}
}

func TestNumCoefs(t *testing.T) {
	for bands, want := range map[int]int{1: 1, 2: 4, 3: 9, 4: 16} {
		if got := NumCoefs(bands); got != want {
			t.Errorf("NumCoefs(%d) = %d, want %d", bands, got, want)
		}
	}
}
