package extractor

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngImage(t *testing.T, w, h int) Image {
	t.Helper()
	src := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		src.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))
	return Image{Data: buf.Bytes(), MIMEType: "image/png", Name: "scan.png"}
}

func TestDownscale(t *testing.T) {
	t.Run("Large", func(t *testing.T) {
		out := Downscale(pngImage(t, 400, 100), 200)
		assert.Equal(t, "image/jpeg", out.MIMEType)
		assert.Equal(t, "scan.png", out.Name)

		cfg, format, err := image.DecodeConfig(bytes.NewReader(out.Data))
		require.NoError(t, err)
		assert.Equal(t, "jpeg", format)
		assert.Equal(t, 200, cfg.Width)
		assert.Equal(t, 50, cfg.Height)
	})

	t.Run("Small", func(t *testing.T) {
		in := pngImage(t, 100, 100)
		assert.Equal(t, in, Downscale(in, 200))
	})

	t.Run("Disabled", func(t *testing.T) {
		in := pngImage(t, 400, 100)
		assert.Equal(t, in, Downscale(in, 0))
	})

	t.Run("Not An Image", func(t *testing.T) {
		in := Image{Data: []byte("%PDF-1.7"), MIMEType: "application/pdf"}
		assert.Equal(t, in, Downscale(in, 200))
	})
}
