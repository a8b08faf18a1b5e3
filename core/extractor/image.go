package extractor

import (
	"bytes"
	"image"

	"github.com/disintegration/imaging"
)

const jpegQuality = 85

// Downscale shrinks a photo so that neither edge exceeds maxEdge and applies
// its EXIF orientation. Images that are small enough, or that cannot be
// decoded (PDF scans for example), are returned unchanged. maxEdge <= 0
// disables resizing.
func Downscale(img Image, maxEdge int) Image {
	if maxEdge <= 0 || len(img.Data) == 0 {
		return img
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(img.Data))
	if err != nil || (cfg.Width <= maxEdge && cfg.Height <= maxEdge) {
		return img
	}

	src, err := imaging.Decode(bytes.NewReader(img.Data), imaging.AutoOrientation(true))
	if err != nil {
		return img
	}
	resized := imaging.Fit(src, maxEdge, maxEdge, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return img
	}
	return Image{Data: buf.Bytes(), MIMEType: "image/jpeg", Name: img.Name}
}
