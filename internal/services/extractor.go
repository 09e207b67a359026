package services

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// ErrUnreadable reports a document that could not be decoded: a corrupt
// file, or a media type the extractor does not support. Callers match it
// with errors.Is.
var ErrUnreadable = errors.New("document is unreadable")

const (
	MediaTypePDF  = "application/pdf"
	MediaTypeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MediaTypeText = "text/plain"
)

type TextExtractor interface {
	Extract(filePath string, mediaType string) (string, error)
}

type textExtractor struct{}

func NewTextExtractor() TextExtractor {
	return &textExtractor{}
}

// Extract returns the plain text of a staged document. The result may be
// empty (an image-only PDF extracts to ""); that is success, not failure.
func (e *textExtractor) Extract(filePath string, mediaType string) (string, error) {
	switch normalizeMediaType(mediaType) {
	case MediaTypePDF:
		return e.extractPDF(filePath)
	case MediaTypeDocx:
		return e.extractDocx(filePath)
	case MediaTypeText:
		return e.extractPlain(filePath)
	default:
		return "", fmt.Errorf("%w: unsupported media type %q", ErrUnreadable, mediaType)
	}
}

func (e *textExtractor) extractPDF(filePath string) (string, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	defer f.Close()

	var textBuilder strings.Builder
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// Skip unreadable pages, keep the rest
			continue
		}

		textBuilder.WriteString(text)
		textBuilder.WriteString("\n\n")
	}

	return CleanText(textBuilder.String()), nil
}

func (e *textExtractor) extractDocx(filePath string) (string, error) {
	doc, err := docx.ReadDocxFile(filePath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	defer doc.Close()

	return CleanText(doc.Editable().GetContent()), nil
}

func (e *textExtractor) extractPlain(filePath string) (string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	return CleanText(string(data)), nil
}

// normalizeMediaType drops any parameters ("text/plain; charset=utf-8")
// and lowercases the type.
func normalizeMediaType(mediaType string) string {
	if idx := strings.Index(mediaType, ";"); idx != -1 {
		mediaType = mediaType[:idx]
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

// CleanText trims each line and collapses blank lines.
func CleanText(text string) string {
	text = strings.TrimSpace(text)

	lines := strings.Split(text, "\n")
	var cleanedLines []string

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleanedLines = append(cleanedLines, line)
		}
	}

	return strings.Join(cleanedLines, "\n")
}
