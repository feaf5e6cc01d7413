package imageio

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/mrjoshuak/go-cmgen/cubemap"
)

// ErrBadHDR is returned for malformed Radiance files.
var ErrBadHDR = errors.New("imageio: malformed Radiance HDR file")

// encodeHDR writes a Radiance RGBE file with new-style run-length encoded
// scanlines when the width allows it.
func encodeHDR(w io.Writer, img *cubemap.Image) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "#?RADIANCE\nFORMAT=32-bit_rle_rgbe\n\n-Y %d +X %d\n", img.Height, img.Width)

	width := img.Width
	rle := width >= 8 && width <= 0x7fff
	planes := make([][]byte, 4)
	for i := range planes {
		planes[i] = make([]byte, width)
	}

	for y := 0; y < img.Height; y++ {
		for x := 0; x < width; x++ {
			p := toRGBE(img.At(x, y))
			planes[0][x] = p[0]
			planes[1][x] = p[1]
			planes[2][x] = p[2]
			planes[3][x] = p[3]
		}
		if !rle {
			for x := 0; x < width; x++ {
				bw.Write([]byte{planes[0][x], planes[1][x], planes[2][x], planes[3][x]})
			}
			continue
		}
		bw.Write([]byte{2, 2, byte(width >> 8), byte(width)})
		for _, p := range planes {
			writeRLEPlane(bw, p)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("imageio: hdr encode: %w", err)
	}
	return nil
}

// writeRLEPlane emits one component plane in the Radiance run-length
// scheme: counts above 128 repeat a byte, counts up to 128 copy literals.
func writeRLEPlane(w *bufio.Writer, p []byte) {
	const minRun = 4
	for i := 0; i < len(p); {
		// Find the next run of at least minRun identical bytes.
		runStart := i
		runLen := 0
		for runStart < len(p) {
			runLen = 1
			for runStart+runLen < len(p) && runLen < 127 && p[runStart+runLen] == p[runStart] {
				runLen++
			}
			if runLen >= minRun {
				break
			}
			runStart += runLen
		}
		if runStart >= len(p) || runLen < minRun {
			runStart = len(p)
		}
		// Literals up to the run.
		for i < runStart {
			n := runStart - i
			if n > 128 {
				n = 128
			}
			w.WriteByte(byte(n))
			w.Write(p[i : i+n])
			i += n
		}
		if i < len(p) {
			w.WriteByte(byte(128 + runLen))
			w.WriteByte(p[i])
			i += runLen
		}
	}
}

// decodeHDR reads a Radiance RGBE file, accepting both flat and run-length
// encoded scanlines.
func decodeHDR(data []byte) (*cubemap.Image, error) {
	br := bufio.NewReader(bytes.NewReader(data))

	// Header: signature line, variable lines, blank line, resolution line.
	line, err := br.ReadString('\n')
	if err != nil || !strings.HasPrefix(line, "#?") {
		return nil, ErrBadHDR
	}
	for {
		line, err = br.ReadString('\n')
		if err != nil {
			return nil, ErrBadHDR
		}
		line = strings.TrimSpace(line)
		if line == "" {
			break
		}
		if strings.HasPrefix(line, "FORMAT=") && line != "FORMAT=32-bit_rle_rgbe" {
			return nil, fmt.Errorf("%w: format %q", ErrBadHDR, line)
		}
	}
	line, err = br.ReadString('\n')
	if err != nil {
		return nil, ErrBadHDR
	}
	var h, w int
	if _, err := fmt.Sscanf(line, "-Y %d +X %d", &h, &w); err != nil || w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: resolution %q", ErrBadHDR, strings.TrimSpace(line))
	}

	img := cubemap.NewImage(w, h)
	row := make([]byte, 4*w)
	for y := 0; y < h; y++ {
		if err := readHDRScanline(br, row, w); err != nil {
			return nil, err
		}
		for x := 0; x < w; x++ {
			img.Set(x, y, fromRGBE(row[4*x], row[4*x+1], row[4*x+2], row[4*x+3]))
		}
	}
	return img, nil
}

func readHDRScanline(br *bufio.Reader, row []byte, w int) error {
	var head [4]byte
	if _, err := io.ReadFull(br, head[:]); err != nil {
		return ErrBadHDR
	}
	if head[0] == 2 && head[1] == 2 && int(head[2])<<8|int(head[3]) == w && w >= 8 && w <= 0x7fff {
		// New-style RLE: four separate component planes.
		for c := 0; c < 4; c++ {
			for x := 0; x < w; {
				n, err := br.ReadByte()
				if err != nil {
					return ErrBadHDR
				}
				if n > 128 {
					v, err := br.ReadByte()
					if err != nil {
						return ErrBadHDR
					}
					count := int(n) - 128
					if x+count > w {
						return ErrBadHDR
					}
					for i := 0; i < count; i++ {
						row[4*(x+i)+c] = v
					}
					x += count
				} else {
					count := int(n)
					if count == 0 || x+count > w {
						return ErrBadHDR
					}
					for i := 0; i < count; i++ {
						v, err := br.ReadByte()
						if err != nil {
							return ErrBadHDR
						}
						row[4*(x+i)+c] = v
					}
					x += count
				}
			}
		}
		return nil
	}

	// Flat (or old-style) scanline; the four header bytes are the first
	// pixel. Old-style runs repeat the previous pixel.
	copy(row[0:4], head[:])
	x := 1
	for x < w {
		var p [4]byte
		if _, err := io.ReadFull(br, p[:]); err != nil {
			return ErrBadHDR
		}
		if p[0] == 1 && p[1] == 1 && p[2] == 1 {
			count := int(p[3])
			if x == 0 || x+count > w {
				return ErrBadHDR
			}
			prev := row[4*(x-1) : 4*x]
			for i := 0; i < count; i++ {
				copy(row[4*(x+i):4*(x+i)+4], prev)
			}
			x += count
			continue
		}
		copy(row[4*x:4*x+4], p[:])
		x++
	}
	return nil
}

// toRGBE packs a linear color into the shared-exponent RGBE format.
func toRGBE(c cubemap.RGB) [4]byte {
	m := math.Max(float64(c.R), math.Max(float64(c.G), float64(c.B)))
	if m < 1e-32 {
		return [4]byte{}
	}
	frac, exp := math.Frexp(m)
	f := frac * 256 / m
	return [4]byte{
		rgbeByte(float64(c.R) * f),
		rgbeByte(float64(c.G) * f),
		rgbeByte(float64(c.B) * f),
		byte(exp + 128),
	}
}

func rgbeByte(v float64) byte {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return byte(v)
}

func fromRGBE(r, g, b, e byte) cubemap.RGB {
	if e == 0 {
		return cubemap.RGB{}
	}
	f := float32(math.Ldexp(1, int(e)-(128+8)))
	return cubemap.RGB{
		R: float32(r) * f,
		G: float32(g) * f,
		B: float32(b) * f,
	}
}
