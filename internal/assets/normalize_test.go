package assets

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func TestNormalizeDownscales(t *testing.T) {
	out, err := Normalize(encodePNG(t, 1024, 600), 512)
	require.NoError(t, err)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 512, cfg.Width)
	assert.Equal(t, 300, cfg.Height)
}

func TestNormalizeKeepsSmallImages(t *testing.T) {
	in := encodePNG(t, 64, 64)
	out, err := Normalize(in, 512)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	out, err = Normalize([]byte("anything"), 0)
	require.NoError(t, err)
	assert.Equal(t, []byte("anything"), out)
}

func TestNormalizeRejectsGarbage(t *testing.T) {
	_, err := Normalize([]byte("not an image"), 512)
	assert.Error(t, err)
}
