package cubemap

// MakeSeamless rewrites the one-texel border ring of every face with the
// interior-edge texels of the adjacent faces. Border texels are duplicated
// data, never independently authored: bilinear sampling and 2x2 box
// downsampling read across them, so this must run after every content write
// and before the cubemap is consumed by a filter or integrator.
//
// The face adjacency and index permutation are derived from the direction
// mapping itself: each border texel is probed just outside its face plane
// and re-addressed. Along a shared edge the edge-parallel coordinate is
// identical in both faces' parametrization, so the landing texel is exact.
//
// Corner texels have more than one contributing neighbor; they take the
// average of the two edge probes. The rule is the same at every level so
// mip chains stay consistent across corners.
//
// Faces of dimension < 3 have no interior ring to copy from and are left
// untouched. Interior texels are never modified.
func (cm *Cubemap) MakeSeamless() {
	d := cm.dim
	if d < 3 {
		return
	}
	// Push the probe half a ULP-scale step past the face boundary: enough
	// to flip the dominant axis, small enough to keep the parallel
	// coordinate on the shared edge.
	const out = 1 + 1e-9

	for f := Face(0); f < NumFaces; f++ {
		img := cm.faces[f]
		for i := 1; i <= d-2; i++ {
			cx := (float64(i)+0.5)*cm.scale - 1
			cy := 1 - (float64(i)+0.5)*cm.scale
			img.Set(0, i, cm.seamSource(f, -out, cy))   // left
			img.Set(d-1, i, cm.seamSource(f, out, cy))  // right
			img.Set(i, 0, cm.seamSource(f, cx, out))    // top
			img.Set(i, d-1, cm.seamSource(f, cx, -out)) // bottom
		}

		lo := 0.5*cm.scale - 1 // first texel center
		hi := -lo              // last texel center
		img.Set(0, 0, avg(cm.seamSource(f, -out, hi), cm.seamSource(f, lo, out)))
		img.Set(d-1, 0, avg(cm.seamSource(f, out, hi), cm.seamSource(f, hi, out)))
		img.Set(0, d-1, avg(cm.seamSource(f, -out, lo), cm.seamSource(f, lo, -out)))
		img.Set(d-1, d-1, avg(cm.seamSource(f, out, lo), cm.seamSource(f, hi, -out)))
	}
}

// seamSource resolves the neighbor texel backing a border position of face
// f probed at face-plane coordinates (cx, cy), one of which lies outside
// [-1, 1]. The perpendicular coordinate is clamped one texel inside the
// neighbor's edge so the source is authored data, not another border.
func (cm *Cubemap) seamSource(f Face, cx, cy float64) RGB {
	d := cm.dim
	nf, u, v := cm.Address(directionFor(f, cx, cy))
	sx := clampInt(int(u), 1, d-2)
	sy := clampInt(int(v), 1, d-2)
	return cm.faces[nf].At(sx, sy)
}

func avg(a, b RGB) RGB {
	return RGB{(a.R + b.R) * 0.5, (a.G + b.G) * 0.5, (a.B + b.B) * 0.5}
}
