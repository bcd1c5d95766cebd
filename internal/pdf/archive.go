package pdf

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// File is a PDF pulled out of an upload or archive.
type File struct {
	Name    string
	Content []byte
}

// ExtractFromZip returns the PDF files contained in a ZIP archive. Entries
// without a .pdf extension or without the PDF magic bytes are skipped; a
// malformed archive is an error.
func ExtractFromZip(data []byte) ([]File, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("invalid zip archive: %w", err)
	}

	var files []File
	for _, entry := range zr.File {
		if entry.FileInfo().IsDir() {
			continue
		}
		name := filepath.Base(entry.Name)
		if !strings.EqualFold(filepath.Ext(name), ".pdf") {
			continue
		}
		rc, err := entry.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", entry.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", entry.Name, err)
		}
		if !IsPDF(name, content) {
			continue
		}
		files = append(files, File{Name: name, Content: content})
	}
	return files, nil
}
