package cubemap

// Level pairs a cubemap view with its backing image so a mip chain can own
// its storage as a unit.
type Level struct {
	Image   *Image
	Cubemap *Cubemap
}

// GenerateMipmaps extends the chain starting at base down to dimension 1,
// box-filtering each 2x2 texel block of the seamless previous level. The
// bilinear fetch at block centers reads through the previous level's
// duplicated seam ring, so blocks adjacent to an edge average the true
// neighboring face's texels instead of wrapping within the face. Each new
// level is made seamless before the next one is derived.
//
// For a base dimension D (power of two) the returned chain has exactly
// log2(D)+1 levels, the last holding a single texel per face.
func GenerateMipmaps(base Level) []Level {
	levels := []Level{base}
	for dim := base.Cubemap.Dim(); dim > 1; {
		dim >>= 1
		img, cm := New(dim, false)
		downsampleBox(cm, levels[len(levels)-1].Cubemap)
		cm.MakeSeamless()
		levels = append(levels, Level{Image: img, Cubemap: cm})
	}
	return levels
}

// downsampleBox halves src into dst. Sampling src bilinearly at the center
// of each 2x2 block is exactly the box average of the block.
func downsampleBox(dst, src *Cubemap) {
	dst.Process(func(f Face, y int, img *Image) {
		for x := 0; x < dst.dim; x++ {
			c := src.FilterAtFace(f, float64(2*x+1), float64(2*y+1))
			img.Set(x, y, c)
		}
	})
}
