package ibl

import (
	"math"

	"github.com/mrjoshuak/go-cmgen/cubemap"
	"github.com/mrjoshuak/go-cmgen/internal/parallel"
)

// dfv integrates the split-sum BRDF directional albedo for one (NoV,
// roughness) cell with GGX importance sampling: the scale and bias of the
// Fresnel-Schlick split, f = scale + F0 * bias... more precisely
// f = F0 * scale + bias.
func dfv(noV, linearRoughness float64, samples int) (scale, bias float64) {
	v := vec3{x: sqrt(1 - noV*noV), y: 0, z: noV}
	iN := 1 / float64(samples)
	for i := 0; i < samples; i++ {
		u1, u2 := hammersley(uint32(i), iN)
		h := importanceSampleGGX(u1, u2, linearRoughness)
		l := h.scale(2 * v.dot(h)).add(v.scale(-1))
		voH := saturate(v.dot(h))
		noL := saturate(l.z)
		noH := saturate(h.z)
		if noL > 0 {
			// Importance-sampled estimator: the GGX D and the 1/(4 VoH)
			// Jacobian cancel against the PDF, leaving G * VoH / NoH.
			g := visibilitySmithGGXCorrelated(noV, noL, linearRoughness) * noL * (voH / noH)
			fc := pow5(1 - voH)
			scale += g * (1 - fc)
			bias += g * fc
		}
	}
	return scale * 4 * iN, bias * 4 * iN
}

// dfvMultiscatter is the energy-conserving variant used with multiple
// scattering compensation: the Fresnel term is folded into the first
// channel so runtime reconstruction stays a single mad.
func dfvMultiscatter(noV, linearRoughness float64, samples int) (scale, bias float64) {
	v := vec3{x: sqrt(1 - noV*noV), y: 0, z: noV}
	iN := 1 / float64(samples)
	for i := 0; i < samples; i++ {
		u1, u2 := hammersley(uint32(i), iN)
		h := importanceSampleGGX(u1, u2, linearRoughness)
		l := h.scale(2 * v.dot(h)).add(v.scale(-1))
		voH := saturate(v.dot(h))
		noL := saturate(l.z)
		noH := saturate(h.z)
		if noL > 0 {
			g := visibilitySmithGGXCorrelated(noV, noL, linearRoughness) * noL * (voH / noH)
			fc := pow5(1 - voH)
			scale += g * fc
			bias += g
		}
	}
	return scale * 4 * iN, bias * 4 * iN
}

// DFGOptions configures DFG.
type DFGOptions struct {
	Size         int
	Multiscatter bool
	Samples      int
}

// DFG Monte-Carlo integrates the BRDF lookup table of the split-sum
// approximation. The result is a Size x Size image: x maps to NoV in
// (0, 1], y maps to perceptual roughness with 0 at the bottom row, squared
// into linear roughness for sampling.
//
// Channels R and G hold the scale and bias terms. With Multiscatter they
// hold the energy-conserving variant, and B additionally stores the
// single-scatter directional albedo Ess, from which a shader derives the
// energy compensation factor 1 + F0 (1/Ess - 1).
func DFG(opts DFGOptions) *cubemap.Image {
	size := opts.Size
	samples := opts.Samples
	if samples <= 0 {
		samples = 1024
	}
	img := cubemap.NewImage(size, size)

	parallel.For(size, func(y int) {
		// Bottom row is roughness 0 so the LUT matches texture V=0 at
		// mirror roughness.
		coord := saturate((float64(size-y) - 0.5) / float64(size))
		linearRoughness := coord * coord
		for x := 0; x < size; x++ {
			noV := saturate((float64(x) + 0.5) / float64(size))
			var r, g, b float64
			if opts.Multiscatter {
				r, g = dfvMultiscatter(noV, linearRoughness, samples)
				es, eb := dfv(noV, linearRoughness, samples)
				b = es + eb // single-scatter directional albedo
			} else {
				r, g = dfv(noV, linearRoughness, samples)
			}
			img.Set(x, y, cubemap.RGB{R: float32(r), G: float32(g), B: float32(b)})
		}
	})
	return img
}

func sqrt(v float64) float64 {
	if v <= 0 {
		return 0
	}
	return math.Sqrt(v)
}
