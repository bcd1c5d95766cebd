package api

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/pdfdeck/pdfdeck/internal/pdf"
	"github.com/pdfdeck/pdfdeck/internal/pipeline"
)

// handleConvert accepts one PDF, or one ZIP archive that is expanded into a
// job per contained PDF.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	// Limit total request size; extra 1MB for form overhead.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	data, err := s.readUpload(file)
	if err != nil {
		jsonError(w, err.Error(), http.StatusRequestEntityTooLarge)
		return
	}

	switch {
	case strings.EqualFold(filepath.Ext(filename), ".zip"):
		pdfs, err := pdf.ExtractFromZip(data)
		if err != nil {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		if len(pdfs) == 0 {
			jsonError(w, "no PDF files found in archive", http.StatusBadRequest)
			return
		}
		var jobs []map[string]any
		for _, f := range pdfs {
			jobs = append(jobs, s.submitPDF(f.Name, f.Content))
		}
		writeJSON(w, http.StatusAccepted, map[string]any{"jobs": jobs})

	case pdf.IsPDF(filename, data):
		result := s.submitPDF(filename, data)
		if errMsg, failed := result["error"]; failed {
			jsonError(w, fmt.Sprint(errMsg), http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, http.StatusAccepted, result)

	default:
		jsonError(w, fmt.Sprintf("unsupported file: %s (expecting a PDF or a ZIP of PDFs)", filename), http.StatusBadRequest)
	}
}

// handleBatchConvert accepts multiple PDFs under the "files" field and
// reports a per-file accept/reject result.
func (s *Server) handleBatchConvert(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*10+10*1024*1024)

	if err := r.ParseMultipartForm(64 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		jsonError(w, "at least one file is required", http.StatusBadRequest)
		return
	}

	var results []map[string]any
	for _, fh := range files {
		filename := sanitizeFilename(fh.Filename)

		f, err := fh.Open()
		if err != nil {
			results = append(results, map[string]any{"filename": filename, "error": "failed to open file"})
			continue
		}
		data, err := s.readUpload(f)
		f.Close()
		if err != nil {
			results = append(results, map[string]any{"filename": filename, "error": err.Error()})
			continue
		}
		if !pdf.IsPDF(filename, data) {
			results = append(results, map[string]any{"filename": filename, "error": "not a PDF"})
			continue
		}

		results = append(results, s.submitPDF(filename, data))
	}

	writeJSON(w, http.StatusAccepted, map[string]any{"jobs": results})
}

// submitPDF queues one conversion and returns the JSON fragment describing
// the outcome.
func (s *Server) submitPDF(filename string, data []byte) map[string]any {
	job := pipeline.NewJob(filename, data)
	if err := s.orchestrator.Submit(job); err != nil {
		return map[string]any{"filename": filename, "error": err.Error()}
	}
	return map[string]any{
		"filename": filename,
		"job_id":   job.ID,
		"status":   job.Status,
		"poll_url": fmt.Sprintf("/api/convert/%s/status", job.ID),
	}
}

func (s *Server) readUpload(f multipart.File) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file")
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return nil, fmt.Errorf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes)
	}
	return data, nil
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
