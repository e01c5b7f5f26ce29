package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/jihoonbyun/loandraft/internal/agreement"
)

// Extractor linearizes a source document into its ordered, non-empty
// paragraph texts. Structural interpretation happens afterwards in
// ParseParagraphs.
type Extractor interface {
	Paragraphs(r io.Reader) ([]string, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".docx": true,
	".txt":  true,
	".html": true,
	".htm":  true,
	".pdf":  true,
}

// ForFile returns the appropriate extractor for a filename.
func ForFile(filename string) (Extractor, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".docx":
		return &DOCXExtractor{}, nil
	case ".txt":
		return &TextExtractor{}, nil
	case ".html", ".htm":
		return &HTMLExtractor{}, nil
	case ".pdf":
		return &PDFExtractor{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// ParseFile extracts paragraphs from r according to the filename's extension
// and runs the structural parse. The document name falls back to the
// filename when the header names no agreement.
func ParseFile(r io.Reader, filename string) (*agreement.Document, error) {
	ex, err := ForFile(filename)
	if err != nil {
		return nil, err
	}
	return ParseWith(ex, r, filename)
}

// ParseWith is ParseFile with a caller-configured extractor.
func ParseWith(ex Extractor, r io.Reader, filename string) (*agreement.Document, error) {
	paragraphs, err := ex.Paragraphs(r)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", filename, err)
	}
	if paragraphs == nil {
		paragraphs = []string{}
	}
	doc, err := ParseParagraphs(paragraphs)
	if err != nil {
		return nil, err
	}
	doc.FileName = filepath.Base(filename)
	if doc.Name == "" {
		doc.Name = strings.TrimSuffix(doc.FileName, filepath.Ext(doc.FileName))
	}
	return doc, nil
}
