package extractor

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"challan-reconciler/core/reconcile"
)

// DocumentType selects the prompt and schema used for an image.
type DocumentType string

const (
	// DocumentChallan is a delivery challan listing expected line items.
	DocumentChallan DocumentType = "CHALLAN"
	// DocumentSticker is a product sticker attached to one unit.
	DocumentSticker DocumentType = "STICKER"
)

// ParseDocumentType accepts "challan" or "sticker" in any case.
func ParseDocumentType(s string) (DocumentType, error) {
	switch DocumentType(normalizeType(s)) {
	case DocumentChallan:
		return DocumentChallan, nil
	case DocumentSticker:
		return DocumentSticker, nil
	default:
		return "", fmt.Errorf("unknown document type %q", s)
	}
}

// DefaultMIMEType is assumed when an upload does not declare one.
const DefaultMIMEType = "image/jpeg"

// Image is one uploaded photo or scan.
type Image struct {
	Data     []byte
	MIMEType string
	// Name is the original file name, used in logs and error reports.
	Name string
}

func (img Image) mimeType() string {
	if img.MIMEType == "" || img.MIMEType == "application/octet-stream" {
		return DefaultMIMEType
	}
	return img.MIMEType
}

// Extractor reads challans and stickers from images.
type Extractor interface {
	ExtractChallan(ctx context.Context, img Image) (*reconcile.Challan, error)
	ExtractSticker(ctx context.Context, img Image) (*reconcile.Sticker, error)
}

// ErrModelUnavailable marks failures to reach the model, as opposed to
// answers that could not be parsed.
var ErrModelUnavailable = errors.New("extraction model unavailable")

// ExtractionError reports a document that could not be turned into a record.
type ExtractionError struct {
	DocType DocumentType
	// Raw is the model output as received, empty when the model was not reached.
	Raw string
	Err error
}

func (e *ExtractionError) Error() string {
	if e.Raw != "" {
		return fmt.Sprintf("failed to extract %s: %v (raw response: %s)", e.DocType, e.Err, truncate(e.Raw, 500))
	}
	return fmt.Sprintf("failed to extract %s: %v", e.DocType, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
