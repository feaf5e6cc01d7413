package ibl

import (
	"github.com/mrjoshuak/go-cmgen/cubemap"
)

// RenderBRDF paints the GGX specular lobe into dst for visual inspection:
// each texel direction is taken as the half vector H around a surface with
// N == V == +Z, and the texel stores the full BRDF times NoL for that
// sample, with a dielectric F0 of 0.04. The lobe tightens as the linear
// roughness approaches zero.
func RenderBRDF(dst *cubemap.Cubemap, linearRoughness float64) {
	dst.Process(func(f cubemap.Face, y int, img *cubemap.Image) {
		for x := 0; x < dst.Dim(); x++ {
			h := dirToVec(dst.DirectionFor(f, float64(x), float64(y)))
			nv := vec3{0, 0, 1} // N == V
			l := h.scale(2 * h.dot(nv)).add(nv.scale(-1))

			noL := l.z
			loH := l.dot(h)
			var v float64
			if noL > 0 && loH > 0 {
				d := distributionGGX(h.z, linearRoughness)
				vis := visibilitySmithGGXCorrelated(1, noL, linearRoughness)
				f := fresnelSchlick(0.04, 1.0, loH)
				v = d * vis * f * noL
			}
			img.Set(x, y, cubemap.RGB{R: float32(v), G: float32(v), B: float32(v)})
		}
	})
	dst.MakeSeamless()
}

// fresnelSchlick interpolates between f0 at normal incidence and f90 at
// grazing angles.
func fresnelSchlick(f0, f90, loH float64) float64 {
	return f0 + (f90-f0)*pow5(1-loH)
}
