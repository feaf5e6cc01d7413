// cmgen generates spherical harmonics and prefiltered mipmap levels from an
// environment map, for image-based lighting.
//
// Cubemap crosses and equirectangular panoramas are both supported and
// detected from the aspect ratio of the source image. When the input path
// does not name a file, procedural environments are generated instead:
// "uvN" draws a UV grid with N cells per face and "brdfN" renders a GGX
// lobe of increasing roughness.
//
// Usage:
//
//	cmgen [options] <input-file>
//	cmgen [options] <uv[N]|brdf[N]>
//
// Supported input formats: PNG (8 and 16 bits), Radiance (.hdr),
// Photoshop (.psd, 16 and 32 bits), OpenEXR (.exr).
package main

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/mrjoshuak/go-cmgen/cubemap"
	"github.com/mrjoshuak/go-cmgen/ibl"
	"github.com/mrjoshuak/go-cmgen/imageio"
)

// radianceClamp bounds decoded HDR samples; fireflies above the half-float
// range destabilize the integrators and cannot be stored in most outputs
// anyway.
const radianceClamp = 65504

// config is the driver configuration, built once from the command line and
// not modified afterwards except by the deploy preset.
type config struct {
	quiet       bool
	format      imageio.Format
	formatSet   bool
	compression string
	size        int
	samples     int

	deployDir   string
	extractDir  string
	extractBlur float64
	mirror      bool
	debug       bool

	dfgFile         string
	dfgMultiscatter bool

	isMipmapDir  string
	prefilterDir string

	shCompute    bool
	shBands      int
	shFile       string
	shIrradiance bool
	shShader     bool
}

// inputKind tags the three ways the positional argument selects an
// environment.
type inputKind int

const (
	inputFile inputKind = iota
	inputUVGrid
	inputBRDF
)

// input describes the environment source: an image file on disk or a
// procedural generator with its parameter.
type input struct {
	kind  inputKind
	path  string
	name  string // base name without extension, used for output naming
	param int
}

func usage() {
	name := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, `%[1]s generates SH and mipmap levels from an environment map.
Cubemap crosses and equirectangular formats are both supported, detected
from the aspect ratio of the source image.

Usage:
    %[1]s [options] <input-file>
    %[1]s [options] <uv[N]|brdf[N]>

Supported input formats:
    PNG, 8 and 16 bits
    Radiance (.hdr)
    Photoshop (.psd), 16 and 32 bits
    OpenEXR (.exr)

Options:
`, name)
	pflag.PrintDefaults()
}

func parseFlags() (config, []string) {
	quiet := pflag.BoolP("quiet", "q", false, "suppress all non-error output")
	formatName := pflag.StringP("format", "f", "", "output format: png, hdr, rgbm, psd, exr, dds")
	compression := pflag.StringP("compression", "c", "", "format specific compression:\nPSD: 16 (default), 32\nOpenEXR: RAW, RLE, ZIPS, ZIP, PIZ (default)\nDDS: 8, 16 (default), 32\nothers: ignored")
	size := pflag.IntP("size", "s", 0, "size of the output cubemaps (base level), power of two, 256 by default")
	deployDir := pflag.StringP("deploy", "x", "", "generate everything needed for deployment into the directory")
	extractDir := pflag.String("extract", "", "extract faces of the cubemap into the directory")
	extractBlur := pflag.Float64("extract-blur", 0, "blur the cubemap with this roughness before extracting faces")
	mirror := pflag.Bool("mirror", false, "mirror generated cubemaps for reflections")
	samples := pflag.Int("ibl-samples", 1024, "number of samples for IBL integrations")
	dfgFile := pflag.String("ibl-dfg", "", "compute the IBL DFG LUT into filename.[exr|hdr|psd|png|rgbm|dds|h|hpp|c|cpp|inc|txt]")
	dfgMulti := pflag.Bool("ibl-dfg-multiscatter", false, "compute the DFG for multi-scattering GGX")
	isMipmapDir := pflag.String("ibl-is-mipmap", "", "generate mipmaps for prefiltered importance sampling into the directory")
	prefilterDir := pflag.String("ibl-ld", "", "roughness prefilter into the directory")
	shFlag := pflag.String("sh", "", "SH decomposition of the input cubemap, with the given number of bands")
	shOutput := pflag.String("sh-output", "", "SH output file; the extension selects text (.txt) or image output")
	shIrradiance := pflag.BoolP("sh-irradiance", "i", false, "irradiance SH coefficients")
	shShader := pflag.Bool("sh-shader", false, "generate irradiance SH for shader code")
	debug := pflag.BoolP("debug", "d", false, "generate extra data for debugging")
	pflag.Lookup("sh").NoOptDefVal = "3"
	pflag.Usage = usage
	pflag.Parse()

	cfg := config{
		quiet:           *quiet,
		compression:     *compression,
		size:            *size,
		samples:         *samples,
		deployDir:       *deployDir,
		extractDir:      *extractDir,
		extractBlur:     *extractBlur,
		mirror:          *mirror,
		debug:           *debug,
		dfgFile:         *dfgFile,
		dfgMultiscatter: *dfgMulti,
		isMipmapDir:     *isMipmapDir,
		prefilterDir:    *prefilterDir,
		shBands:         3,
		shFile:          *shOutput,
		shIrradiance:    *shIrradiance,
		shShader:        *shShader,
	}

	if cfg.size != 0 && !cubemap.IsPowerOfTwo(cfg.size) {
		fatalf("output size must be a power of two")
	}
	if cfg.extractBlur < 0 || cfg.extractBlur > 1 {
		fatalf("roughness (blur) parameter must be between 0.0 and 1.0")
	}

	if *formatName != "" {
		f, err := imageio.ParseFormat(*formatName)
		if err != nil {
			fatalf("%v", err)
		}
		cfg.format = f
		cfg.formatSet = true
	} else if cfg.deployDir != "" {
		cfg.format = imageio.FormatRGBM
	}

	cfg.shCompute = pflag.CommandLine.Changed("sh") || *shOutput != "" ||
		cfg.shIrradiance || cfg.shShader
	if *shFlag != "" {
		// An unparsable band count keeps the default.
		if bands, err := strconv.Atoi(*shFlag); err == nil && bands > 0 {
			cfg.shBands = bands
		}
	}
	if cfg.shShader {
		cfg.shIrradiance = true
	}

	return cfg, pflag.Args()
}

func main() {
	cfg, args := parseFlags()

	if cfg.dfgFile == "" && len(args) < 1 {
		usage()
		os.Exit(1)
	}

	if cfg.dfgFile != "" {
		step(cfg, "Generating IBL DFG LUT...")
		size := cfg.size
		if size == 0 {
			size = 128
		}
		lut := ibl.DFG(ibl.DFGOptions{
			Size:         size,
			Multiscatter: cfg.dfgMultiscatter,
			Samples:      cfg.samples,
		})
		if err := writeDFG(cfg.dfgFile, lut, cfg); err != nil {
			fatalf("%v", err)
		}
		if len(args) < 1 {
			return
		}
	}

	in := classifyInput(args[0])

	if cfg.deployDir != "" {
		outDir := filepath.Join(cfg.deployDir, in.name)

		// Pre-scaled irradiance SH as a text file.
		cfg.shCompute = true
		cfg.shBands = 3
		cfg.shShader = true
		cfg.shIrradiance = true
		cfg.shFile = filepath.Join(outDir, "sh.txt")

		cfg.extractDir = cfg.deployDir
		cfg.prefilterDir = cfg.deployDir
	}

	if cfg.debug && cfg.prefilterDir != "" && cfg.isMipmapDir == "" {
		cfg.isMipmapDir = cfg.prefilterDir
	}

	base, err := loadEnvironment(cfg, in)
	if err != nil {
		fatalf("%v", err)
	}

	levels := cubemap.GenerateMipmaps(base)

	if cfg.mirror {
		step(cfg, "Mirroring...")
		mirrored := make([]cubemap.Level, 0, len(levels))
		for _, l := range levels {
			img, cm := cubemap.New(l.Cubemap.Dim(), false)
			cubemap.Mirror(cm, l.Cubemap)
			cm.MakeSeamless()
			mirrored = append(mirrored, cubemap.Level{Image: img, Cubemap: cm})
		}
		levels = mirrored
	}

	if cfg.shCompute {
		step(cfg, "Spherical harmonics...")
		if err := sphericalHarmonics(cfg, levels[0].Cubemap); err != nil {
			fatalf("%v", err)
		}
	}

	if cfg.isMipmapDir != "" {
		step(cfg, "IBL mipmaps for prefiltered importance sampling...")
		if err := writeMipChain(cfg, in.name, levels, cfg.isMipmapDir); err != nil {
			fatalf("%v", err)
		}
	}

	if cfg.prefilterDir != "" {
		step(cfg, "IBL prefiltering...")
		out := ibl.RoughnessPrefilter(levels, ibl.PrefilterOptions{Samples: cfg.samples})
		if err := writePrefiltered(cfg, out, cfg.prefilterDir); err != nil {
			fatalf("%v", err)
		}
	}

	if cfg.extractDir != "" {
		cm := levels[0].Cubemap
		if cfg.extractBlur != 0 {
			step(cfg, "Blurring...")
			dim := cfg.size
			if dim == 0 {
				dim = cm.Dim()
			}
			_, blurred := cubemap.New(dim, false)
			linear := cfg.extractBlur * cfg.extractBlur
			ibl.RoughnessFilter(blurred, levels, linear, cfg.samples)
			cm = blurred
		}
		step(cfg, "Extract faces...")
		if err := extractFaces(cfg, cm, cfg.extractDir); err != nil {
			fatalf("%v", err)
		}
	}
}

// classifyInput decides between a file on disk and the procedural
// generators. Unknown non-file names fall back to a one-cell UV grid.
func classifyInput(arg string) input {
	name := strings.TrimSuffix(filepath.Base(arg), filepath.Ext(arg))
	if _, err := os.Stat(arg); err == nil {
		return input{kind: inputFile, path: arg, name: name}
	}
	var p int
	if _, err := fmt.Sscanf(name, "uv%d", &p); err == nil && p > 0 {
		return input{kind: inputUVGrid, name: name, param: p}
	}
	if _, err := fmt.Sscanf(name, "brdf%d", &p); err == nil && p >= 0 {
		return input{kind: inputBRDF, name: name, param: p}
	}
	return input{kind: inputUVGrid, name: name, param: 1}
}

// loadEnvironment produces the base cubemap level from the input
// descriptor: decoded from a file (cross or equirectangular, by aspect
// ratio) or generated procedurally.
func loadEnvironment(cfg config, in input) (cubemap.Level, error) {
	if in.kind == inputFile {
		return loadImageFile(cfg, in.path)
	}

	step(cfg, "Generating image...")
	dim := cfg.size
	if dim == 0 {
		dim = 256
	}
	img, cm := cubemap.New(dim, false)
	switch in.kind {
	case inputUVGrid:
		cm.DrawUVGrid(in.param)
	case inputBRDF:
		r := float64(in.param) / math.Log2(float64(dim))
		ibl.RenderBRDF(cm, r*r)
	}
	cm.MakeSeamless()
	return cubemap.Level{Image: img, Cubemap: cm}, nil
}

func loadImageFile(cfg config, path string) (cubemap.Level, error) {
	step(cfg, "Decoding image...")
	f, err := os.Open(path)
	if err != nil {
		return cubemap.Level{}, err
	}
	defer f.Close()

	src, err := imageio.Decode(f)
	if err != nil {
		return cubemap.Level{}, err
	}
	src.Clamp(radianceClamp)

	w, h := src.Width, src.Height
	switch {
	case (cubemap.IsPowerOfTwo(w) && w*3 == h*4) ||
		(cubemap.IsPowerOfTwo(h) && h*3 == w*4):
		step(cfg, "Loading cross...")
		horizontal := w > h
		dim := w
		if h > w {
			dim = h
		}
		dim /= 4
		img, cm := cubemap.New(dim, horizontal)
		if err := cubemap.CopyCross(img, src); err != nil {
			return cubemap.Level{}, err
		}
		cm.MakeSeamless()
		return cubemap.Level{Image: img, Cubemap: cm}, nil

	case w == 2*h:
		step(cfg, "Converting equirectangular image...")
		dim := cfg.size
		if dim == 0 {
			dim = 256
		}
		img, cm := cubemap.New(dim, false)
		cm.ProjectEquirect(src)
		cm.MakeSeamless()
		return cubemap.Level{Image: img, Cubemap: cm}, nil
	}

	return cubemap.Level{}, fmt.Errorf(
		"aspect ratio %dx%d not supported; expected 2:1 equirectangular, "+
			"3:4 vertical cross or 4:3 horizontal cross", w, h)
}

func step(cfg config, msg string) {
	if !cfg.quiet {
		fmt.Println(msg)
	}
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
