package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mrjoshuak/go-cmgen/cubemap"
	"github.com/mrjoshuak/go-cmgen/ibl"
	"github.com/mrjoshuak/go-cmgen/imageio"
)

// writeImageFile encodes img into path using the configured format and
// compression, creating parent directories as needed.
func writeImageFile(cfg config, path string, img *cubemap.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	err = imageio.Encode(f, img, imageio.EncodeOptions{
		Format:      cfg.format,
		Compression: cfg.compression,
	})
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}

// extractFaces writes the six faces of cm into dir as px, nx, py, ny, pz,
// nz with the configured format's extension.
func extractFaces(cfg config, cm *cubemap.Cubemap, dir string) error {
	ext := cfg.format.Extension()
	for f := cubemap.Face(0); f < cubemap.NumFaces; f++ {
		path := filepath.Join(dir, f.String()+ext)
		if err := writeImageFile(cfg, path, cm.FaceImage(f)); err != nil {
			return err
		}
	}
	return nil
}

// writeMipChain writes each level of the seamless mip chain as a whole
// cross image, m0 being the base level.
func writeMipChain(cfg config, name string, levels []cubemap.Level, dir string) error {
	ext := cfg.format.Extension()
	for i, l := range levels {
		path := filepath.Join(dir, fmt.Sprintf("m%d_%s%s", i, name, ext))
		if err := writeImageFile(cfg, path, l.Image); err != nil {
			return err
		}
	}
	return nil
}

// writePrefiltered writes the roughness-prefiltered levels face by face as
// m<level>_<face>, the layout renderers load at runtime.
func writePrefiltered(cfg config, out []ibl.PrefilteredLevel, dir string) error {
	ext := cfg.format.Extension()
	for _, l := range out {
		for f := cubemap.Face(0); f < cubemap.NumFaces; f++ {
			path := filepath.Join(dir, fmt.Sprintf("m%d_%s%s", l.Level, f, ext))
			if err := writeImageFile(cfg, path, l.Cubemap.FaceImage(f)); err != nil {
				return err
			}
		}
	}
	return nil
}

// sphericalHarmonics projects the base cubemap onto SH and writes the
// result: coefficients to stdout when no file is named, as text for .txt
// files, otherwise as a reconstruction cross image.
func sphericalHarmonics(cfg config, cm *cubemap.Cubemap) error {
	bands := cfg.shBands
	if cfg.shShader {
		bands = 3
	}
	sh := ibl.ProjectSH(cm, bands, cfg.shIrradiance)
	if cfg.shShader {
		sh.PreprocessForShader()
	}

	if cfg.shFile == "" {
		return sh.WriteText(os.Stdout)
	}
	if strings.EqualFold(filepath.Ext(cfg.shFile), ".txt") {
		return writeTextFile(cfg.shFile, sh.WriteText)
	}

	// Render the reconstruction into a cross image.
	img, dst := cubemap.New(cm.Dim(), false)
	sh.Render(dst)
	return writeImageFile(cfg, cfg.shFile, img)
}

// writeDFG writes the DFG LUT either as an image or, for source-file
// extensions, as a float table ready for inclusion in a program.
func writeDFG(path string, lut *cubemap.Image, cfg config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".h", ".hpp", ".c", ".cpp", ".inc":
		return writeTextFile(path, func(w io.Writer) error {
			return writeDFGArray(w, lut)
		})
	case ".txt":
		return writeTextFile(path, func(w io.Writer) error {
			return writeDFGText(w, lut)
		})
	}

	out := cfg
	if !cfg.formatSet {
		out.format = imageio.FormatForPath(path)
	}
	return writeImageFile(out, path, lut)
}

// writeDFGArray emits the LUT as a flat C float array, three values per
// texel in scanline order.
func writeDFGArray(w io.Writer, lut *cubemap.Image) error {
	if _, err := fmt.Fprintf(w,
		"// DFG LUT, %dx%d, RGB32F, scanline order\nconst float kDFG[] = {\n",
		lut.Width, lut.Height); err != nil {
		return err
	}
	for y := 0; y < lut.Height; y++ {
		for x := 0; x < lut.Width; x++ {
			c := lut.At(x, y)
			if _, err := fmt.Fprintf(w, "    %.8ff, %.8ff, %.8ff,\n",
				c.R, c.G, c.B); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintln(w, "};")
	return err
}

// writeDFGText emits one "R G B" line per texel in scanline order.
func writeDFGText(w io.Writer, lut *cubemap.Image) error {
	for y := 0; y < lut.Height; y++ {
		for x := 0; x < lut.Width; x++ {
			c := lut.At(x, y)
			if _, err := fmt.Fprintf(w, "%g %g %g\n", c.R, c.G, c.B); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeTextFile(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(f)
	err = write(bw)
	if ferr := bw.Flush(); err == nil {
		err = ferr
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}
