package imageio

import (
	"bytes"
	"fmt"
	"io"

	"github.com/mrjoshuak/go-cmgen/cubemap"
	"github.com/mrjoshuak/go-openexr/exr"
)

// exrCompression maps the compression flag names to OpenEXR schemes.
func exrCompression(name string) (exr.Compression, error) {
	switch name {
	case "", "PIZ":
		return exr.CompressionPIZ, nil
	case "RAW":
		return exr.CompressionNone, nil
	case "RLE":
		return exr.CompressionRLE, nil
	case "ZIPS":
		return exr.CompressionZIPS, nil
	case "ZIP":
		return exr.CompressionZIP, nil
	}
	return 0, fmt.Errorf("%w: exr %q", ErrBadCompression, name)
}

// encodeEXR writes a half-float scanline OpenEXR file.
func encodeEXR(w io.Writer, img *cubemap.Image, compression string) error {
	comp, err := exrCompression(compression)
	if err != nil {
		return err
	}

	h := exr.NewScanlineHeader(img.Width, img.Height)
	h.SetCompression(comp)

	var buf seekBuffer
	sw, err := exr.NewScanlineWriter(&buf, h)
	if err != nil {
		return fmt.Errorf("imageio: exr writer: %w", err)
	}

	fb := exr.NewRGBAFrameBuffer(img.Width, img.Height, false)
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			c := img.At(x, y)
			fb.SetPixel(x, y, c.R, c.G, c.B, 1)
		}
	}
	sw.SetFrameBuffer(fb.ToFrameBuffer())
	if err := sw.WritePixels(0, img.Height-1); err != nil {
		return fmt.Errorf("imageio: exr write: %w", err)
	}
	if err := sw.Close(); err != nil {
		return fmt.Errorf("imageio: exr close: %w", err)
	}
	if _, err := w.Write(buf.data); err != nil {
		return fmt.Errorf("imageio: exr write: %w", err)
	}
	return nil
}

// decodeEXR reads any scanline or tiled OpenEXR file through the library's
// RGBA path and drops the alpha channel.
func decodeEXR(data []byte) (*cubemap.Image, error) {
	src, err := exr.Decode(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("imageio: exr decode: %w", err)
	}
	b := src.Bounds()
	img := cubemap.NewImage(b.Dx(), b.Dy())
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			r, g, bl, _ := src.RGBA(b.Min.X+x, b.Min.Y+y)
			img.Set(x, y, cubemap.RGB{R: r, G: g, B: bl})
		}
	}
	return img, nil
}

// seekBuffer is an in-memory io.WriteSeeker for codecs that patch offsets
// after writing the pixel data.
type seekBuffer struct {
	data []byte
	pos  int64
}

func (b *seekBuffer) Write(p []byte) (int, error) {
	end := int(b.pos) + len(p)
	if end > len(b.data) {
		if end > cap(b.data) {
			grown := make([]byte, end, 2*end)
			copy(grown, b.data)
			b.data = grown
		} else {
			b.data = b.data[:end]
		}
	}
	copy(b.data[b.pos:], p)
	b.pos = int64(end)
	return len(p), nil
}

func (b *seekBuffer) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		b.pos = offset
	case io.SeekCurrent:
		b.pos += offset
	case io.SeekEnd:
		b.pos = int64(len(b.data)) + offset
	}
	if int(b.pos) > len(b.data) {
		grown := make([]byte, b.pos)
		copy(grown, b.data)
		b.data = grown
	}
	return b.pos, nil
}
