package media

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// encodeTestPNG renders a simple gradient so the BlurHash has structure.
func encodeTestPNG(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 255 / width), G: uint8(y * 255 / height), B: 128, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestProcessPhoto(t *testing.T) {
	data := encodeTestPNG(t, 320, 240)

	info, err := ProcessPhoto(data)
	require.NoError(t, err)

	assert.Len(t, info.Hash, 64, "sha256 hex")
	assert.NotEmpty(t, info.BlurHash)
	assert.Equal(t, 320, info.Width)
	assert.Equal(t, 240, info.Height)
}

func TestProcessPhoto_Deterministic(t *testing.T) {
	data := encodeTestPNG(t, 100, 100)

	first, err := ProcessPhoto(data)
	require.NoError(t, err)
	second, err := ProcessPhoto(data)
	require.NoError(t, err)

	assert.Equal(t, first.Hash, second.Hash)
	assert.Equal(t, first.BlurHash, second.BlurHash)
}

func TestProcessPhoto_SmallImageSkipsResize(t *testing.T) {
	data := encodeTestPNG(t, 32, 32)

	info, err := ProcessPhoto(data)
	require.NoError(t, err)
	assert.NotEmpty(t, info.BlurHash)
}

func TestProcessPhoto_InvalidData(t *testing.T) {
	_, err := ProcessPhoto([]byte("not an image"))
	assert.Error(t, err)

	_, err = ProcessPhoto(nil)
	assert.Error(t, err)
}
