package extractor

import (
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// PDFMIMEType is the one non-image document type the model accepts.
const PDFMIMEType = "application/pdf"

// IsDocumentFile reports whether path has an image or PDF extension, i.e.
// whether it has to go through the model rather than be decoded as JSON.
func IsDocumentFile(path string) bool {
	t, _, _ := strings.Cut(mime.TypeByExtension(strings.ToLower(filepath.Ext(path))), ";")
	return strings.HasPrefix(t, "image/") || t == PDFMIMEType
}

// ReadImageFile loads an image or PDF from disk, deriving its MIME type
// from the extension.
func ReadImageFile(path string) (Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Image{}, err
	}
	return Image{
		Data:     data,
		MIMEType: mime.TypeByExtension(strings.ToLower(filepath.Ext(path))),
		Name:     filepath.Base(path),
	}, nil
}
