package ibl

import (
	"math"
	"sort"

	"github.com/mrjoshuak/go-cmgen/cubemap"
)

// prefilterSample is one precomputed GGX importance sample, expressed in
// the tangent frame around the surface normal: direction L, its NoL-based
// weight, and the mip levels it reads through.
type prefilterSample struct {
	l      vec3
	weight float64
	lerp   float64
	l0, l1 int
}

// RoughnessFilter convolves the mip chain with the GGX lobe of the given
// linear roughness and writes the result into dst. The integration uses
// the split-sum assumption N == V == R: for every destination texel the
// precomputed half-vector samples are rotated into the texel's tangent
// frame and the radiance is accumulated with NoL weights, normalized by
// their sum.
//
// Each sample reads the mip level whose per-texel solid angle matches the
// sample's PDF footprint (filtered importance sampling), which keeps noise
// acceptable at modest sample counts. Roughness 0 is a mirror: it would
// degenerate to point sampling, so it short-circuits to a bilinear resample
// of the base level.
func RoughnessFilter(dst *cubemap.Cubemap, levels []cubemap.Level, linearRoughness float64, samples int) {
	base := levels[0].Cubemap

	if linearRoughness == 0 {
		dst.Process(func(f cubemap.Face, y int, img *cubemap.Image) {
			for x := 0; x < dst.Dim(); x++ {
				d := dst.DirectionFor(f, float64(x), float64(y))
				img.Set(x, y, base.FilterAt(d))
			}
		})
		dst.MakeSeamless()
		return
	}

	cache := buildSampleCache(levels, linearRoughness, samples)

	dst.Process(func(f cubemap.Face, y int, img *cubemap.Image) {
		for x := 0; x < dst.Dim(); x++ {
			n := dirToVec(dst.DirectionFor(f, float64(x), float64(y)))
			t, b := tangentFrame(n)

			var r, g, bl float64
			for _, s := range cache {
				// Rotate the tangent-space sample around the normal.
				l := cubemap.Direction{
					X: t.x*s.l.x + b.x*s.l.y + n.x*s.l.z,
					Y: t.y*s.l.x + b.y*s.l.y + n.y*s.l.z,
					Z: t.z*s.l.x + b.z*s.l.y + n.z*s.l.z,
				}
				c := cubemap.FilterAtLevels(
					levels[s.l0].Cubemap, levelOrNil(levels, s.l1), s.lerp, l)
				r += float64(c.R) * s.weight
				g += float64(c.G) * s.weight
				bl += float64(c.B) * s.weight
			}
			img.Set(x, y, cubemap.RGB{R: float32(r), G: float32(g), B: float32(bl)})
		}
	})
	dst.MakeSeamless()
}

// buildSampleCache importance-samples the GGX distribution once for the
// whole filter pass. Weights are pre-normalized by the sum of NoL, and each
// sample carries its PDF-matched mip level pair.
func buildSampleCache(levels []cubemap.Level, linearRoughness float64, samples int) []prefilterSample {
	dim0 := levels[0].Cubemap.Dim()
	maxLevel := float64(len(levels) - 1)
	iN := 1 / float64(samples)

	// Solid angle of one base-level texel; each mip up quarters the texel
	// count, so footprints map to levels in log4 space.
	omegaP := 4 * math.Pi / float64(6*dim0*dim0)
	const K = 4 // filter kernel broadening

	cache := make([]prefilterSample, 0, samples)
	var weightSum float64
	for i := 0; i < samples; i++ {
		u1, u2 := hammersley(uint32(i), iN)
		h := importanceSampleGGX(u1, u2, linearRoughness)
		// V == N == +Z: reflect to get L.
		l := h.scale(2 * h.z).add(vec3{0, 0, -1})
		noL := l.z
		if noL <= 0 {
			continue
		}
		noH := h.z
		pdf := distributionGGX(noH, linearRoughness) / 4

		omegaS := 1 / (float64(samples) * pdf)
		lod := log4(omegaS) - log4(omegaP) + log4(K)
		mip := math.Min(math.Max(lod, 0), maxLevel)
		l0 := int(mip)

		cache = append(cache, prefilterSample{
			l:      l,
			weight: noL,
			lerp:   mip - float64(l0),
			l0:     l0,
			l1:     l0 + 1,
		})
		weightSum += noL
	}

	for i := range cache {
		cache[i].weight /= weightSum
	}

	// Group samples by mip so each destination texel walks the chain
	// coherently.
	sort.SliceStable(cache, func(a, b int) bool {
		return cache[a].l0 < cache[b].l0
	})
	return cache
}

func levelOrNil(levels []cubemap.Level, i int) *cubemap.Cubemap {
	if i >= len(levels) {
		return nil
	}
	return levels[i].Cubemap
}

func dirToVec(d cubemap.Direction) vec3 { return vec3{d.X, d.Y, d.Z} }

// PrefilterOptions configures RoughnessPrefilter.
type PrefilterOptions struct {
	Samples int // base sample count, doubled from the third level on
}

// PrefilteredLevel is one output level of the specular prefilter.
type PrefilteredLevel struct {
	Level           int
	Roughness       float64 // perceptual roughness of this level
	LinearRoughness float64
	Image           *cubemap.Image
	Cubemap         *cubemap.Cubemap
}

// RoughnessPrefilter produces the specular mip chain for split-sum IBL.
// Level 0 has the source's base dimension and roughness 0; each following
// level halves the dimension and advances along the fixed mapping
// perceptual roughness = level/(numLevels-1), squared into linear roughness
// for the GGX filter. Sample counts double from the third level on, where
// the widened lobe needs them.
func RoughnessPrefilter(levels []cubemap.Level, opts PrefilterOptions) []PrefilteredLevel {
	numLevels := len(levels)
	samples := opts.Samples
	if samples <= 0 {
		samples = 1024
	}

	out := make([]PrefilteredLevel, 0, numLevels)
	for level := 0; level < numLevels; level++ {
		dim := levels[0].Cubemap.Dim() >> level
		if dim < 1 {
			break
		}
		if level >= 2 {
			samples *= 2
		}
		lod := 0.0
		if numLevels > 1 {
			lod = saturate(float64(level) / float64(numLevels-1))
		}
		linear := lod * lod

		img, cm := cubemap.New(dim, false)
		RoughnessFilter(cm, levels, linear, samples)
		out = append(out, PrefilteredLevel{
			Level:           level,
			Roughness:       lod,
			LinearRoughness: linear,
			Image:           img,
			Cubemap:         cm,
		})
	}
	return out
}
