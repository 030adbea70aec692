package helpers

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResizeProfilePicture(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 640, 480))
	for x := 0; x < 640; x++ {
		src.Set(x, x%480, color.RGBA{R: 200, A: 255})
	}
	var in bytes.Buffer
	require.NoError(t, jpeg.Encode(&in, src, nil))

	out, err := ResizeProfilePicture(&in)
	require.NoError(t, err)

	decoded, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, ProfilePicWidth, decoded.Bounds().Dx())
	assert.Equal(t, ProfilePicHeight, decoded.Bounds().Dy())
}

func TestResizeProfilePicture_NotAnImage(t *testing.T) {
	_, err := ResizeProfilePicture(strings.NewReader("definitely not pixels"))
	assert.Error(t, err)
}
