package scanning

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	"image/png"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/gen2brain/heic"

	"github.com/zombor/bill-tracker/internal/document"
)

// transcribePrompt is shared by every vision provider
const transcribePrompt = `You are reading a financial document: a receipt, invoice, bill, bank statement or salary slip. Transcribe ALL visible text exactly as printed, top to bottom, one printed line per output line.

Important:
- Keep every number, currency symbol and date as printed (e.g. "₹96.00", "$12.50")
- Keep the merchant or employer name and any totals
- Do not summarize, translate or explain
- Do not use markdown code blocks
- If there is no readable text, return an empty response`

// pdfText returns the embedded text layer of every page, or "" for scanned PDFs
func pdfText(pdfData []byte) (string, error) {
	doc, err := fitz.NewFromMemory(pdfData)
	if err != nil {
		return "", fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	var pages []string
	for i := 0; i < doc.NumPage(); i++ {
		text, err := doc.Text(i)
		if err != nil {
			return "", fmt.Errorf("reading PDF page %d text: %w", i+1, err)
		}
		if t := strings.TrimSpace(text); t != "" {
			pages = append(pages, t)
		}
	}
	text := strings.Join(pages, "\n")
	if document.TooShort(document.Sanitize(text)) {
		return "", nil
	}
	return text, nil
}

// pdfToImage renders the first page of a PDF as PNG
func pdfToImage(pdfData []byte) ([]byte, error) {
	doc, err := fitz.NewFromMemory(pdfData)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	img, err := doc.ImageDPI(0, 300)
	if err != nil {
		return nil, fmt.Errorf("rendering PDF page: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// imageToPNG decodes JPEG, GIF, PNG or HEIC data and re-encodes it as PNG
func imageToPNG(imageData []byte, mimeType string) ([]byte, error) {
	var img image.Image
	var err error

	if isHEICFormat(imageData) || isHEICMimeType(mimeType) {
		img, err = heic.Decode(bytes.NewReader(imageData))
		if err != nil {
			return nil, fmt.Errorf("decoding HEIC/HEIF image: %w", err)
		}
	} else {
		img, _, err = image.Decode(bytes.NewReader(imageData))
		if err != nil {
			if strings.Contains(err.Error(), "unknown format") {
				return nil, fmt.Errorf("unsupported image format. Supported formats: JPEG, PNG, GIF, HEIC, HEIF, PDF. Error: %w", err)
			}
			return nil, fmt.Errorf("decoding image: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// isHEICFormat checks for an ftyp box with a HEIC brand at offset 4
func isHEICFormat(data []byte) bool {
	if len(data) < 12 || string(data[4:8]) != "ftyp" {
		return false
	}
	switch string(data[8:12]) {
	case "heic", "heix", "heif", "mif1", "msf1":
		return true
	}
	return false
}

func isHEICMimeType(mimeType string) bool {
	mimeType = normalizeMimeType(mimeType)
	return strings.Contains(mimeType, "heic") || strings.Contains(mimeType, "heif")
}

// preparePNG converts PDFs and non-PNG images to PNG. The bool reports whether
// a conversion happened.
func preparePNG(data []byte, contentType string) ([]byte, bool, error) {
	mimeType := normalizeMimeType(contentType)
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	switch {
	case mimeType == "application/pdf":
		out, err := pdfToImage(data)
		if err != nil {
			return nil, false, fmt.Errorf("converting PDF to image: %w", err)
		}
		return out, true, nil
	case mimeType != "image/png" || isHEICFormat(data):
		out, err := imageToPNG(data, mimeType)
		if err != nil {
			return nil, false, fmt.Errorf("converting image to PNG: %w", err)
		}
		return out, true, nil
	}
	return data, false, nil
}

// cleanTranscription drops code fences some models add despite the prompt
func cleanTranscription(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		if nl := strings.Index(text, "\n"); nl >= 0 {
			text = text[nl+1:]
		} else {
			text = strings.TrimPrefix(text, "```")
		}
	}
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
