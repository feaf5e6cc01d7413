// Package imageio reads and writes the image formats used for environment
// map input and output: PNG (sRGB, plus RGBM packing), Radiance HDR,
// Photoshop PSD, OpenEXR and DDS. In-memory images are always linear RGB
// float32; the codecs apply transfer functions at the file boundary.
package imageio

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/mrjoshuak/go-cmgen/cubemap"
)

var (
	// ErrUnknownFormat is returned when a file's magic number or a format
	// name does not match any supported codec.
	ErrUnknownFormat = errors.New("imageio: unknown image format")
	// ErrBadCompression is returned when a compression name is not valid
	// for the selected output format.
	ErrBadCompression = errors.New("imageio: invalid compression for format")
)

// Format identifies an output codec.
type Format int

const (
	FormatPNG Format = iota
	FormatHDR
	FormatRGBM
	FormatPSD
	FormatEXR
	FormatDDS
)

// ParseFormat maps a format name to a Format. Names match the output
// file-type flag values.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "png":
		return FormatPNG, nil
	case "hdr", "rgbe":
		return FormatHDR, nil
	case "rgbm":
		return FormatRGBM, nil
	case "psd":
		return FormatPSD, nil
	case "exr":
		return FormatEXR, nil
	case "dds":
		return FormatDDS, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// FormatForPath infers the output format from a file extension, defaulting
// to PNG.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hdr":
		return FormatHDR
	case ".psd":
		return FormatPSD
	case ".exr":
		return FormatEXR
	case ".dds":
		return FormatDDS
	default:
		return FormatPNG
	}
}

// Extension returns the conventional file extension for the format,
// including the dot.
func (f Format) Extension() string {
	switch f {
	case FormatHDR:
		return ".hdr"
	case FormatRGBM:
		return ".rgbm"
	case FormatPSD:
		return ".psd"
	case FormatEXR:
		return ".exr"
	case FormatDDS:
		return ".dds"
	default:
		return ".png"
	}
}

func (f Format) String() string {
	switch f {
	case FormatPNG:
		return "png"
	case FormatHDR:
		return "hdr"
	case FormatRGBM:
		return "rgbm"
	case FormatPSD:
		return "psd"
	case FormatEXR:
		return "exr"
	case FormatDDS:
		return "dds"
	}
	return "unknown"
}

// EncodeOptions selects the codec and its format-specific compression
// parameter: EXR accepts RAW, RLE, ZIPS, ZIP and PIZ; PSD and DDS accept a
// bit depth of 16 or 32; PNG, RGBM and HDR ignore it.
type EncodeOptions struct {
	Format      Format
	Compression string
}

// Encode writes img to w in the selected format.
func Encode(w io.Writer, img *cubemap.Image, opts EncodeOptions) error {
	switch opts.Format {
	case FormatPNG:
		return encodePNG(w, img)
	case FormatHDR:
		return encodeHDR(w, img)
	case FormatRGBM:
		return encodeRGBM(w, img)
	case FormatPSD:
		return encodePSD(w, img, opts.Compression)
	case FormatEXR:
		return encodeEXR(w, img, opts.Compression)
	case FormatDDS:
		return encodeDDS(w, img, opts.Compression)
	}
	return fmt.Errorf("%w: %d", ErrUnknownFormat, opts.Format)
}
