package ibl

import (
	"fmt"
	"io"
	"math"

	"github.com/mrjoshuak/go-cmgen/cubemap"
	"github.com/mrjoshuak/go-cmgen/internal/parallel"
)

// SH holds a spherical harmonics decomposition of a cubemap: bands^2 RGB
// coefficients in band-major order (l*(l+1)+m).
type SH struct {
	Bands int
	Coefs [][3]float64
}

// NumCoefs returns the number of coefficients for a band count.
func NumCoefs(bands int) int { return bands * bands }

func shIndex(m, l int) int { return l*(l+1) + m }

// ProjectSH projects the cubemap's radiance onto the real spherical
// harmonics basis: coef[i] = sum over all texels of radiance * Y_i(dir) *
// solidAngle(texel). Accumulation runs in double precision with one partial
// sum per face, merged in face order, so results are deterministic and the
// low-frequency bands do not suffer cancellation.
//
// If irradiance is set, each band is convolved with the truncated cosine
// transfer function, turning the radiance decomposition into irradiance.
func ProjectSH(cm *cubemap.Cubemap, bands int, irradiance bool) *SH {
	n := NumCoefs(bands)
	dim := cm.Dim()

	// One private partial sum per face, merged in face order below: the
	// reduction is deterministic no matter how faces land on workers.
	var partial [cubemap.NumFaces][][3]float64
	parallel.For(cubemap.NumFaces, func(fi int) {
		f := cubemap.Face(fi)
		img := cm.FaceImage(f)
		acc := make([][3]float64, n)
		basis := make([]float64, n)
		for y := 0; y < dim; y++ {
			for x := 0; x < dim; x++ {
				d := cm.DirectionFor(f, float64(x), float64(y))
				sa := cubemap.SolidAngle(dim, x, y)
				c := img.At(x, y)
				shBasis(basis, bands, d)
				for i := 0; i < n; i++ {
					w := basis[i] * sa
					acc[i][0] += float64(c.R) * w
					acc[i][1] += float64(c.G) * w
					acc[i][2] += float64(c.B) * w
				}
			}
		}
		partial[f] = acc
	})

	sh := &SH{Bands: bands, Coefs: make([][3]float64, n)}
	for f := 0; f < cubemap.NumFaces; f++ {
		for i := 0; i < n; i++ {
			sh.Coefs[i][0] += partial[f][i][0]
			sh.Coefs[i][1] += partial[f][i][1]
			sh.Coefs[i][2] += partial[f][i][2]
		}
	}

	if irradiance {
		for l := 0; l < bands; l++ {
			a := truncatedCosSH(l)
			for m := -l; m <= l; m++ {
				i := shIndex(m, l)
				sh.Coefs[i][0] *= a
				sh.Coefs[i][1] *= a
				sh.Coefs[i][2] *= a
			}
		}
	}
	return sh
}

// shaderPolyConstants are the polynomial-form constants of the first three
// SH bands ("Stupid Spherical Harmonics Tricks", Sloan). A shader evaluates
// the raw polynomials {1, y, z, x, xy, yz, 3z^2-1, xz, x^2-y^2} and
// dot-products them with the preprocessed coefficients.
var shaderPolyConstants = [9]float64{
	0.282095,  // 0  0
	-0.488603, // 1 -1
	0.488603,  // 1  0
	-0.488603, // 1  1
	1.092548,  // 2 -2
	-1.092548, // 2 -1
	0.315392,  // 2  0
	-1.092548, // 2  1
	0.546274,  // 2  2
}

// PreprocessForShader folds the basis constants and the 1/pi Lambertian
// term into the coefficients so a shader can reconstruct irradiance with a
// plain polynomial dot product. Defined for the first three bands; callers
// request exactly 3 bands for shader output.
func (sh *SH) PreprocessForShader() {
	n := len(sh.Coefs)
	if n > len(shaderPolyConstants) {
		n = len(shaderPolyConstants)
	}
	for i := 0; i < n; i++ {
		k := shaderPolyConstants[i] / math.Pi
		sh.Coefs[i][0] *= k
		sh.Coefs[i][1] *= k
		sh.Coefs[i][2] *= k
	}
}

// Eval reconstructs the SH expansion in the given direction, clamped at
// zero. Used to render a decomposition back into a cubemap for inspection.
func (sh *SH) Eval(d cubemap.Direction) cubemap.RGB {
	n := len(sh.Coefs)
	basis := make([]float64, n)
	shBasis(basis, sh.Bands, d)
	var r, g, b float64
	for i := 0; i < n; i++ {
		r += sh.Coefs[i][0] * basis[i]
		g += sh.Coefs[i][1] * basis[i]
		b += sh.Coefs[i][2] * basis[i]
	}
	return cubemap.RGB{
		R: float32(math.Max(0, r)),
		G: float32(math.Max(0, g)),
		B: float32(math.Max(0, b)),
	}
}

// Render writes the SH reconstruction into a cubemap.
func (sh *SH) Render(dst *cubemap.Cubemap) {
	dst.Process(func(f cubemap.Face, y int, img *cubemap.Image) {
		for x := 0; x < dst.Dim(); x++ {
			d := dst.DirectionFor(f, float64(x), float64(y))
			img.Set(x, y, sh.Eval(d))
		}
	})
	dst.MakeSeamless()
}

// WriteText writes the coefficients as text, one "R G B" line per
// coefficient in band-major order.
func (sh *SH) WriteText(w io.Writer) error {
	for _, c := range sh.Coefs {
		if _, err := fmt.Fprintf(w, "%g %g %g\n", c[0], c[1], c[2]); err != nil {
			return err
		}
	}
	return nil
}

// shBasis evaluates the real spherical harmonics basis (with Condon-
// Shortley phase) for all bands at the normalized direction d, writing
// bands^2 values indexed by l*(l+1)+m.
func shBasis(out []float64, bands int, d cubemap.Direction) {
	x, y, z := d.X, d.Y, d.Z
	sinTheta := math.Sqrt(math.Max(0, 1-z*z))
	var cosPhi, sinPhi float64 = 1, 0
	if sinTheta > 1e-12 {
		cosPhi = x / sinTheta
		sinPhi = y / sinTheta
	}

	// P(l, m) by the standard recurrences, one diagonal at a time.
	// pmm carries P(m, m) = (-1)^m (2m-1)!! sin^m(theta).
	pmm := 1.0
	cosM, sinM := 1.0, 0.0 // cos(m phi), sin(m phi)
	for m := 0; m < bands; m++ {
		if m > 0 {
			pmm *= -float64(2*m-1) * sinTheta
			cosM, sinM = cosM*cosPhi-sinM*sinPhi, sinM*cosPhi+cosM*sinPhi
		}

		pl1, pl := 0.0, pmm // P(l-1, m), P(l, m), starting at l = m
		for l := m; l < bands; l++ {
			if l > m {
				// P(l,m) = ((2l-1) z P(l-1,m) - (l+m-1) P(l-2,m)) / (l-m)
				p := (float64(2*l-1)*z*pl - float64(l+m-1)*pl1) / float64(l-m)
				pl1, pl = pl, p
			}
			k := shNormalization(l, m)
			if m == 0 {
				out[shIndex(0, l)] = k * pl
			} else {
				s := math.Sqrt2 * k * pl
				out[shIndex(m, l)] = s * cosM
				out[shIndex(-m, l)] = s * sinM
			}
		}
	}
}

// shNormalization returns K(l, m) = sqrt((2l+1)(l-m)! / (4 pi (l+m)!)).
func shNormalization(l, m int) float64 {
	return math.Sqrt((2*float64(l) + 1) * factorialRatio(l-m, l+m) / (4 * math.Pi))
}

// factorialRatio returns a! / b! for a <= b.
func factorialRatio(a, b int) float64 {
	r := 1.0
	for i := a + 1; i <= b; i++ {
		r /= float64(i)
	}
	return r
}

// truncatedCosSH returns the l-th zonal coefficient of the clamped cosine
// lobe: pi, 2pi/3, pi/4, 0, -pi/24, ... Odd bands above 1 vanish.
func truncatedCosSH(l int) float64 {
	switch {
	case l == 0:
		return math.Pi
	case l == 1:
		return 2 * math.Pi / 3
	case l&1 == 1:
		return 0
	}
	l2 := l / 2
	sign := -1.0
	if l2&1 == 1 {
		sign = 1.0
	}
	a0 := sign / float64((l+2)*(l-1))
	a1 := factorial(l) / (math.Exp2(float64(l)) * factorial(l2) * factorial(l2))
	return 2 * math.Pi * a0 * a1
}

func factorial(n int) float64 {
	r := 1.0
	for i := 2; i <= n; i++ {
		r *= float64(i)
	}
	return r
}
