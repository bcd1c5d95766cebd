// Package pdf handles the PDF plumbing around conversion: file detection,
// page counting, ZIP archive extraction, and page rasterization.
package pdf

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

var pdfMagic = []byte("%PDF")

// IsPDF reports whether a file looks like a PDF: a .pdf extension plus the
// 4-byte magic number at offset zero.
func IsPDF(filename string, data []byte) bool {
	if !strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return false
	}
	return bytes.HasPrefix(data, pdfMagic)
}

// PageCount returns the number of pages in a PDF.
func PageCount(data []byte) (int, error) {
	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("read pdf: %w", err)
	}
	n := reader.NumPage()
	if n <= 0 {
		return 0, fmt.Errorf("pdf has no pages")
	}
	return n, nil
}

// Stem returns the filename without its directory or extension, for use as
// the title fallback when OCR finds nothing.
func Stem(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
