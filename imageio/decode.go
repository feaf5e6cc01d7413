package imageio

import (
	"bytes"
	"fmt"
	"io"

	"github.com/mrjoshuak/go-cmgen/cubemap"
)

// Decode reads an image in any supported input format, sniffing the magic
// number: PNG, Radiance HDR, PSD or OpenEXR. The result is linear RGB.
func Decode(r io.Reader) (*cubemap.Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("imageio: read: %w", err)
	}
	switch {
	case bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")):
		return decodePNG(bytes.NewReader(data))
	case bytes.HasPrefix(data, []byte("#?")):
		return decodeHDR(data)
	case bytes.HasPrefix(data, []byte("8BPS")):
		return decodePSD(data)
	case bytes.HasPrefix(data, []byte{0x76, 0x2f, 0x31, 0x01}):
		return decodeEXR(data)
	}
	return nil, ErrUnknownFormat
}
