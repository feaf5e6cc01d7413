package cubemap

// Mirror writes into dst the reflection of src across the X axis, used to
// flip cubemap handedness for reflection rendering. Each destination texel
// takes the source texel nearest the mirrored direction, so face swaps and
// UV flips follow from the direction mapping itself. dst and src must have
// the same dimension.
func Mirror(dst, src *Cubemap) {
	dst.Process(func(f Face, y int, img *Image) {
		for x := 0; x < dst.dim; x++ {
			d := dst.DirectionFor(f, float64(x), float64(y))
			img.Set(x, y, src.TexelAt(Direction{-d.X, d.Y, d.Z}))
		}
	})
}
