package imageio

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrjoshuak/go-openexr/exr"
)

func TestEXRCompressionNames(t *testing.T) {
	cases := map[string]exr.Compression{
		"":     exr.CompressionPIZ,
		"PIZ":  exr.CompressionPIZ,
		"RAW":  exr.CompressionNone,
		"RLE":  exr.CompressionRLE,
		"ZIPS": exr.CompressionZIPS,
		"ZIP":  exr.CompressionZIP,
	}
	for name, want := range cases {
		got, err := exrCompression(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
	_, err := exrCompression("B44")
	assert.ErrorIs(t, err, ErrBadCompression)
}

func TestEXRRoundTrip(t *testing.T) {
	img := gradientImage(16, 8)
	for _, compression := range []string{"RAW", "ZIP", "PIZ"} {
		var buf bytes.Buffer
		require.NoError(t, encodeEXR(&buf, img, compression), compression)

		got, err := decodeEXR(buf.Bytes())
		require.NoError(t, err, compression)
		require.Equal(t, 16, got.Width)
		require.Equal(t, 8, got.Height)

		// Half-float storage: ~3 decimal digits.
		for y := 0; y < 8; y++ {
			for x := 0; x < 16; x++ {
				a, b := img.At(x, y), got.At(x, y)
				assert.InDelta(t, a.R, b.R, 1e-3, "%s (%d,%d)", compression, x, y)
				assert.InDelta(t, a.G, b.G, 1e-3, "%s (%d,%d)", compression, x, y)
			}
		}
	}
}

func TestEXRDecodeViaSniffer(t *testing.T) {
	img := gradientImage(4, 4)
	var buf bytes.Buffer
	require.NoError(t, encodeEXR(&buf, img, ""))

	got, err := Decode(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 4, got.Width)
}

func TestSeekBuffer(t *testing.T) {
	var b seekBuffer
	n, err := b.Write([]byte("hello world"))
	require.NoError(t, err)
	assert.Equal(t, 11, n)

	_, err = b.Seek(6, io.SeekStart)
	require.NoError(t, err)
	_, err = b.Write([]byte("earth"))
	require.NoError(t, err)
	assert.Equal(t, "hello earth", string(b.data))

	pos, err := b.Seek(0, io.SeekEnd)
	require.NoError(t, err)
	assert.Equal(t, int64(11), pos)

	// Seeking past the end zero-fills.
	_, err = b.Seek(15, io.SeekStart)
	require.NoError(t, err)
	b.Write([]byte("x"))
	assert.Equal(t, 16, len(b.data))
}
