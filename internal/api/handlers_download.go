package api

import (
	"archive/zip"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-chi/chi/v5"
)

const pptxContentType = "application/vnd.openxmlformats-officedocument.presentationml.presentation"

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	snap := job.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"job_id":   snap.ID,
		"filename": snap.Filename,
		"title":    snap.Title,
		"status":   snap.Status,
		"phase":    snap.Phase,
		"progress": snap.Progress,
	})
}

// handleDownload serves a finished deck. The inferred title becomes the
// attachment filename after filesystem-safe sanitization.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	title, deck, ok := job.Result()
	if !ok {
		jsonError(w, fmt.Sprintf("job is not completed (status: %s)", job.Snapshot().Status), http.StatusConflict)
		return
	}

	name := deckFilename(title)
	w.Header().Set("Content-Type", pptxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(len(deck)))
	w.Write(deck)
}

// handleArchive bundles several completed decks into one ZIP download.
func (s *Server) handleArchive(w http.ResponseWriter, r *http.Request) {
	ids := r.URL.Query()["job_id"]
	if len(ids) == 0 {
		jsonError(w, "at least one job_id query parameter is required", http.StatusBadRequest)
		return
	}

	type entry struct {
		name string
		deck []byte
	}
	var entries []entry
	for _, id := range ids {
		job := s.orchestrator.GetJob(id)
		if job == nil {
			jsonError(w, fmt.Sprintf("job not found: %s", id), http.StatusNotFound)
			return
		}
		title, deck, ok := job.Result()
		if !ok {
			jsonError(w, fmt.Sprintf("job is not completed: %s", id), http.StatusConflict)
			return
		}
		entries = append(entries, entry{name: deckFilename(title), deck: deck})
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="presentations.zip"`)

	zw := zip.NewWriter(w)
	used := map[string]int{}
	for _, e := range entries {
		name := e.name
		// Distinct jobs can infer identical titles.
		if n := used[e.name]; n > 0 {
			name = strings.TrimSuffix(e.name, ".pptx") + fmt.Sprintf(" (%d).pptx", n)
		}
		used[e.name]++

		f, err := zw.Create(name)
		if err != nil {
			s.log.Error("archive entry failed", "name", name, "error", err)
			return
		}
		if _, err := f.Write(e.deck); err != nil {
			s.log.Error("archive write failed", "name", name, "error", err)
			return
		}
	}
	if err := zw.Close(); err != nil {
		s.log.Error("archive close failed", "error", err)
	}
}

// deckFilename turns an inferred title into a safe .pptx attachment name.
func deckFilename(title string) string {
	base := sanitizeTitle(title)
	if base == "" {
		base = "presentation"
	}
	return base + ".pptx"
}

// sanitizeTitle strips characters that are unsafe in filenames and caps
// the length. Inner spaces are preserved.
func sanitizeTitle(title string) string {
	var sb strings.Builder
	for _, r := range title {
		switch {
		case r == '/' || r == '\\' || r == ':' || r == '*' || r == '?' || r == '"' || r == '<' || r == '>' || r == '|':
			sb.WriteRune('_')
		case unicode.IsControl(r):
			// drop
		default:
			sb.WriteRune(r)
		}
	}
	out := strings.TrimSpace(sb.String())
	const maxLen = 120
	if len(out) > maxLen {
		out = strings.TrimSpace(out[:maxLen])
	}
	return out
}
