// Package extract converts uploaded document bytes into plain text.
// Supported formats: .pdf, .docx, .txt.
package extract

import (
	"errors"
	"strings"
	"unicode/utf8"
)

var ErrUnsupportedFormat = errors.New("unsupported file format")

// Text extracts plain text from data based on the file extension
// (lower-cased, including the dot).
func Text(data []byte, ext string) (string, error) {
	switch strings.ToLower(ext) {
	case ".pdf":
		return pdfText(data)
	case ".docx":
		return docxText(data)
	case ".txt":
		return txtText(data), nil
	default:
		return "", ErrUnsupportedFormat
	}
}

// txtText decodes bytes as UTF-8, dropping invalid sequences.
func txtText(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	return strings.ToValidUTF8(string(data), "")
}
