package scanning

import (
	"fmt"
	"strings"

	"github.com/zombor/bill-tracker/internal/document"
)

// TextExtractor transcribes an uploaded receipt or statement into raw text
type TextExtractor interface {
	// ExtractText returns the document's visible text, top to bottom
	ExtractText(data []byte, contentType string) (string, error)
	// Close releases provider resources
	Close() error
}

// SupportedContentType reports whether uploads of this MIME type can be transcribed
func SupportedContentType(contentType string) bool {
	ct := normalizeMimeType(contentType)
	return ct == "application/pdf" || strings.HasPrefix(ct, "image/")
}

func normalizeMimeType(contentType string) string {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	return ct
}

func ocrError(provider string, err error) error {
	return document.NewError(document.ErrOCR, provider, err)
}

func emptyTranscription(provider string) error {
	return document.NewError(document.ErrOCR, provider, fmt.Errorf("no text in response"))
}

// textLayer returns a PDF's embedded text when it has enough of it, so the
// provider is only called for images and scanned PDFs.
func textLayer(data []byte, contentType string) (string, bool) {
	if normalizeMimeType(contentType) != "application/pdf" {
		return "", false
	}
	text, err := pdfText(data)
	if err != nil || text == "" {
		return "", false
	}
	return text, true
}
