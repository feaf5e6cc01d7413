package imageio

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/mrjoshuak/go-cmgen/cubemap"
)

// ErrBadPSD is returned for malformed or unsupported Photoshop files.
var ErrBadPSD = errors.New("imageio: unsupported PSD file")

const (
	psdModeRGB        = 3
	psdCompressionRaw = 0
)

// encodePSD writes an uncompressed RGB Photoshop document. The compression
// option selects the bit depth: "16" (the default) stores linear 16-bit
// integers, "32" stores IEEE floats.
func encodePSD(w io.Writer, img *cubemap.Image, compression string) error {
	depth := 16
	switch compression {
	case "", "16":
	case "32":
		depth = 32
	default:
		return fmt.Errorf("%w: psd %q", ErrBadCompression, compression)
	}

	bw := bufio.NewWriter(w)
	be := binary.BigEndian

	bw.WriteString("8BPS")
	var head [22]byte
	be.PutUint16(head[0:], 1) // version
	// 6 reserved bytes
	be.PutUint16(head[8:], 3) // channels
	be.PutUint32(head[10:], uint32(img.Height))
	be.PutUint32(head[14:], uint32(img.Width))
	be.PutUint16(head[18:], uint16(depth))
	be.PutUint16(head[20:], psdModeRGB)
	bw.Write(head[:])

	// Empty color mode data, image resources and layer sections.
	var zero [4]byte
	bw.Write(zero[:])
	bw.Write(zero[:])
	bw.Write(zero[:])

	var comp [2]byte
	be.PutUint16(comp[:], psdCompressionRaw)
	bw.Write(comp[:])

	// Planar channel data, R then G then B.
	for c := 0; c < 3; c++ {
		for y := 0; y < img.Height; y++ {
			for x := 0; x < img.Width; x++ {
				v := channel(img.At(x, y), c)
				if depth == 16 {
					var b [2]byte
					be.PutUint16(b[:], psdUint16(v))
					bw.Write(b[:])
				} else {
					var b [4]byte
					be.PutUint32(b[:], math.Float32bits(v))
					bw.Write(b[:])
				}
			}
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("imageio: psd encode: %w", err)
	}
	return nil
}

// decodePSD reads an uncompressed RGB Photoshop document at 16 or 32 bits
// per channel.
func decodePSD(data []byte) (*cubemap.Image, error) {
	if len(data) < 26+4+4+4+2 || string(data[0:4]) != "8BPS" {
		return nil, ErrBadPSD
	}
	be := binary.BigEndian
	if be.Uint16(data[4:]) != 1 {
		return nil, fmt.Errorf("%w: version", ErrBadPSD)
	}
	channels := int(be.Uint16(data[12:]))
	height := int(be.Uint32(data[14:]))
	width := int(be.Uint32(data[18:]))
	depth := int(be.Uint16(data[22:]))
	mode := int(be.Uint16(data[24:]))

	if mode != psdModeRGB || channels < 3 || width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: mode %d, %d channels", ErrBadPSD, mode, channels)
	}
	if depth != 16 && depth != 32 {
		return nil, fmt.Errorf("%w: %d bits per channel", ErrBadPSD, depth)
	}

	// Skip the three variable-length sections.
	off := 26
	for i := 0; i < 3; i++ {
		if off+4 > len(data) {
			return nil, ErrBadPSD
		}
		off += 4 + int(be.Uint32(data[off:]))
	}
	if off+2 > len(data) {
		return nil, ErrBadPSD
	}
	if be.Uint16(data[off:]) != psdCompressionRaw {
		return nil, fmt.Errorf("%w: compressed image data", ErrBadPSD)
	}
	off += 2

	bytesPer := depth / 8
	plane := width * height * bytesPer
	if off+3*plane > len(data) {
		return nil, ErrBadPSD
	}

	img := cubemap.NewImage(width, height)
	for c := 0; c < 3; c++ {
		p := data[off+c*plane:]
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				i := (y*width + x) * bytesPer
				var v float32
				if depth == 16 {
					v = float32(be.Uint16(p[i:])) / 65535
				} else {
					v = math.Float32frombits(be.Uint32(p[i:]))
				}
				setChannel(img, x, y, c, v)
			}
		}
	}
	return img, nil
}

func channel(c cubemap.RGB, i int) float32 {
	switch i {
	case 0:
		return c.R
	case 1:
		return c.G
	default:
		return c.B
	}
}

func setChannel(img *cubemap.Image, x, y, i int, v float32) {
	c := img.At(x, y)
	switch i {
	case 0:
		c.R = v
	case 1:
		c.G = v
	default:
		c.B = v
	}
	img.Set(x, y, c)
}

func psdUint16(v float32) uint16 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 65535
	}
	return uint16(v*65535 + 0.5)
}
