// Package ibl implements image-based-lighting precomputation: spherical
// harmonics projection, GGX roughness prefiltering of cubemap mip chains,
// and the split-sum DFG lookup table.
package ibl

import (
	"math"
	"math/bits"
)

// hammersley returns the i-th point of the Hammersley low-discrepancy
// sequence: (i*iN, radical inverse of i in base 2).
func hammersley(i uint32, iN float64) (u, v float64) {
	u = float64(i) * iN
	v = float64(bits.Reverse32(i)) * (1.0 / 4294967296.0)
	return u, v
}

// vec3 is a small local vector type for the sampling math; accumulation
// stays in double precision throughout.
type vec3 struct {
	x, y, z float64
}

func (a vec3) add(b vec3) vec3     { return vec3{a.x + b.x, a.y + b.y, a.z + b.z} }
func (a vec3) scale(s float64) vec3 { return vec3{a.x * s, a.y * s, a.z * s} }
func (a vec3) dot(b vec3) float64  { return a.x*b.x + a.y*b.y + a.z*b.z }

func (a vec3) cross(b vec3) vec3 {
	return vec3{
		a.y*b.z - a.z*b.y,
		a.z*b.x - a.x*b.z,
		a.x*b.y - a.y*b.x,
	}
}

func (a vec3) normalize() vec3 {
	l := math.Sqrt(a.dot(a))
	if l == 0 {
		return vec3{0, 0, 1}
	}
	return a.scale(1 / l)
}

// tangentFrame returns an orthonormal basis (t, b) around normal n.
func tangentFrame(n vec3) (t, b vec3) {
	up := vec3{0, 0, 1}
	if math.Abs(n.z) >= 0.999 {
		up = vec3{1, 0, 0}
	}
	t = up.cross(n).normalize()
	b = n.cross(t)
	return t, b
}

// importanceSampleGGX maps a uniform sample (u1, u2) to a half vector
// distributed according to the GGX normal distribution with linear
// roughness a, in tangent space around +Z.
func importanceSampleGGX(u1, u2, a float64) vec3 {
	phi := 2 * math.Pi * u1
	// cosTheta^2 = (1 - u) / (1 + (a^2 - 1) u)
	cosTheta2 := (1 - u2) / (1 + (a*a-1)*u2)
	cosTheta := math.Sqrt(cosTheta2)
	sinTheta := math.Sqrt(1 - cosTheta2)
	return vec3{
		sinTheta * math.Cos(phi),
		sinTheta * math.Sin(phi),
		cosTheta,
	}
}

// distributionGGX evaluates the GGX normal distribution function at NoH
// for linear roughness a.
func distributionGGX(noH, a float64) float64 {
	a2 := a * a
	f := (noH*a2-noH)*noH + 1
	return a2 / (math.Pi * f * f)
}

// visibilitySmithGGXCorrelated is the height-correlated Smith visibility
// term, V = G / (4 NoV NoL).
func visibilitySmithGGXCorrelated(noV, noL, a float64) float64 {
	a2 := a * a
	ggxL := noV * math.Sqrt((noL-noL*a2)*noL+a2)
	ggxV := noL * math.Sqrt((noV-noV*a2)*noV+a2)
	return 0.5 / (ggxV + ggxL)
}

func saturate(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func pow5(x float64) float64 {
	x2 := x * x
	return x2 * x2 * x
}

// log4 returns log base 4, used by the filtered-importance-sampling mip
// selection where each mip level quarters the texel solid angle.
func log4(x float64) float64 {
	return 0.5 * math.Log2(x)
}
