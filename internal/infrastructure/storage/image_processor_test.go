package storage

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 255, A: 255})
	}
	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func TestValidateImage(t *testing.T) {
	p := NewImageProcessor()

	format, err := p.ValidateImage(encodePNG(t, 4, 4))
	require.NoError(t, err)
	assert.Equal(t, "png", format)

	_, err = p.ValidateImage([]byte("plain text"))
	assert.ErrorIs(t, err, ErrNotAnImage)

	small := &ImageProcessor{MaxSize: 10}
	_, err = small.ValidateImage(encodePNG(t, 4, 4))
	assert.ErrorIs(t, err, ErrImageTooLarge)
}

func TestThumbnail_FitsBox(t *testing.T) {
	p := NewImageProcessor()

	thumb, err := p.Thumbnail(encodePNG(t, 900, 600))
	require.NoError(t, err)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(thumb))
	require.NoError(t, err)
	assert.Equal(t, ThumbnailSize, cfg.Width)
	assert.Equal(t, 200, cfg.Height)
}

func TestThumbnail_Garbage(t *testing.T) {
	_, err := NewImageProcessor().Thumbnail([]byte("nope"))
	assert.Error(t, err)
}
