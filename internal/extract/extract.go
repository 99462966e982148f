// Package extract turns uploaded files into plain text ready for chunking
// and embedding.
package extract

import (
	"path/filepath"
	"strings"
)

// Kind identifies how a file's text is obtained.
type Kind int

const (
	KindPlain Kind = iota
	KindMarkdown
	KindPDF
)

// DetectKind classifies a file by MIME type first, then by extension.
// Anything unrecognized falls back to plain-text extraction.
func DetectKind(filename, mimeType string) Kind {
	mime := strings.ToLower(mimeType)
	switch {
	case strings.Contains(mime, "markdown"):
		return KindMarkdown
	case mime == "application/pdf":
		return KindPDF
	case strings.HasPrefix(mime, "text/"),
		strings.Contains(mime, "json"),
		strings.Contains(mime, "csv"):
		return KindPlain
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".md", ".mdx", ".markdown":
		return KindMarkdown
	case ".pdf":
		return KindPDF
	default:
		return KindPlain
	}
}

// Text extracts the text content of a file. Plain formats (txt, JSON, CSV,
// and anything unknown) pass through as-is; markdown is stripped down to its
// semantic content; PDFs go through the PDF reader.
func Text(filename, mimeType string, data []byte) (string, error) {
	switch DetectKind(filename, mimeType) {
	case KindMarkdown:
		return ExtractMarkdownText(string(data)), nil
	case KindPDF:
		return extractPDFText(data)
	default:
		return string(data), nil
	}
}
