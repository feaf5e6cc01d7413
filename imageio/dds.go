package imageio

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/mrjoshuak/go-cmgen/cubemap"
	"github.com/mrjoshuak/go-openexr/half"
)

// DDS header constants; see the DirectDraw surface documentation.
const (
	ddsFlagsRequired = 0x1007 // CAPS | HEIGHT | WIDTH | PIXELFORMAT
	ddsFlagsPitch    = 0x8
	ddsCapsTexture   = 0x1000

	ddsPFFlagRGB    = 0x40
	ddsPFFlagFourCC = 0x4

	ddsFourCCRGBAHalf  = 113 // D3DFMT_A16B16G16R16F
	ddsFourCCRGBAFloat = 116 // D3DFMT_A32B32G32R32F
)

// encodeDDS writes an uncompressed DDS surface. The compression option
// selects the depth: "8" packs 24-bit BGR, "16" (the default) half floats
// and "32" full floats, both as RGBA with alpha fixed at 1.
func encodeDDS(w io.Writer, img *cubemap.Image, compression string) error {
	var fourCC uint32
	var bpp int
	switch compression {
	case "", "16":
		fourCC, bpp = ddsFourCCRGBAHalf, 8
	case "32":
		fourCC, bpp = ddsFourCCRGBAFloat, 16
	case "8":
		fourCC, bpp = 0, 3
	default:
		return fmt.Errorf("%w: dds %q", ErrBadCompression, compression)
	}

	bw := bufio.NewWriter(w)
	le := binary.LittleEndian

	var header [128]byte
	copy(header[0:4], "DDS ")
	le.PutUint32(header[4:], 124) // header size
	le.PutUint32(header[8:], ddsFlagsRequired|ddsFlagsPitch)
	le.PutUint32(header[12:], uint32(img.Height))
	le.PutUint32(header[16:], uint32(img.Width))
	le.PutUint32(header[20:], uint32(img.Width*bpp)) // pitch

	// Pixel format block at offset 76.
	le.PutUint32(header[76:], 32) // pixel format size
	if fourCC != 0 {
		le.PutUint32(header[80:], ddsPFFlagFourCC)
		le.PutUint32(header[84:], fourCC)
	} else {
		le.PutUint32(header[80:], ddsPFFlagRGB)
		le.PutUint32(header[88:], 24)       // bit count
		le.PutUint32(header[92:], 0xff0000) // R mask
		le.PutUint32(header[96:], 0x00ff00) // G mask
		le.PutUint32(header[100:], 0x0000ff) // B mask
	}
	le.PutUint32(header[108:], ddsCapsTexture)
	bw.Write(header[:])

	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			c := img.At(x, y)
			switch {
			case fourCC == ddsFourCCRGBAFloat:
				var b [16]byte
				le.PutUint32(b[0:], math.Float32bits(c.R))
				le.PutUint32(b[4:], math.Float32bits(c.G))
				le.PutUint32(b[8:], math.Float32bits(c.B))
				le.PutUint32(b[12:], math.Float32bits(1))
				bw.Write(b[:])
			case fourCC == ddsFourCCRGBAHalf:
				var b [8]byte
				le.PutUint16(b[0:], half.FromFloat32(c.R).Bits())
				le.PutUint16(b[2:], half.FromFloat32(c.G).Bits())
				le.PutUint16(b[4:], half.FromFloat32(c.B).Bits())
				le.PutUint16(b[6:], half.FromFloat32(1).Bits())
				bw.Write(b[:])
			default:
				// Masked 24-bit rows are stored B, G, R in memory.
				bw.Write([]byte{srgbByte(c.B), srgbByte(c.G), srgbByte(c.R)})
			}
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("imageio: dds encode: %w", err)
	}
	return nil
}
