package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pdfdeck/pdfdeck/internal/deck"
	"github.com/pdfdeck/pdfdeck/internal/ocr"
	"github.com/pdfdeck/pdfdeck/internal/pdf"
	"github.com/pdfdeck/pdfdeck/internal/title"
)

// Worker converts a single PDF job into a slide deck.
type Worker struct {
	engine ocr.Engine
	raster *pdf.Rasterizer
	titles *title.Extractor
	decks  *deck.Builder
	log    *slog.Logger
}

func NewWorker(engine ocr.Engine, raster *pdf.Rasterizer, titles *title.Extractor, decks *deck.Builder, log *slog.Logger) *Worker {
	return &Worker{
		engine: engine,
		raster: raster,
		titles: titles,
		decks:  decks,
		log:    log,
	}
}

// Process runs the full conversion pipeline for a job. A failing job never
// takes the batch down with it; every failure mode ends in StatusFailed on
// this job alone. Title inference is best-effort: an OCR error or an
// extraction miss falls back to the source filename stem.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)
	data := job.FileData()

	// Phase 1: Validate and count pages.
	job.SetStatus(StatusCounting, "counting pages")
	if !pdf.IsPDF(job.Filename, data) {
		log.Error("not a pdf")
		job.AddError("file is not a PDF")
		job.SetStatus(StatusFailed, "counting pages")
		return
	}
	pageCount, err := pdf.PageCount(data)
	if err != nil {
		log.Error("page count failed", "error", err)
		job.AddError(fmt.Sprintf("count pages: %s", err))
		job.SetStatus(StatusFailed, "counting pages")
		return
	}
	job.SetTotalPages(pageCount)

	// Phase 2: Rasterize all pages once; the first image doubles as the
	// OCR input for title inference.
	job.SetStatus(StatusRasterizing, "rasterizing pages")
	pages, err := w.raster.Pages(ctx, data)
	if err != nil {
		log.Error("rasterization failed", "error", err)
		job.AddError(fmt.Sprintf("rasterize: %s", err))
		job.SetStatus(StatusFailed, "rasterizing pages")
		return
	}
	log.Info("rasterized pages", "pages", len(pages))

	// Phase 3: Infer the deck title from the first page.
	job.SetStatus(StatusRecognizing, "inferring title")
	deckTitle := w.inferTitle(ctx, log, job, pages[0])
	job.SetTitle(deckTitle)

	// Phase 4: Render the deck.
	job.SetStatus(StatusRendering, "rendering deck")
	deckBytes, err := w.decks.Build(deckTitle, pages)
	if err != nil {
		log.Error("deck build failed", "error", err)
		job.AddError(fmt.Sprintf("render: %s", err))
		job.SetStatus(StatusFailed, "rendering deck")
		return
	}

	job.SetPagesRendered(len(pages))
	job.SetResult(deckBytes)
	job.SetStatus(StatusCompleted, "done")
	log.Info("conversion complete", "title", deckTitle, "pages", len(pages), "deck_bytes", len(deckBytes))
}

// inferTitle runs OCR and the title heuristic over the first page image,
// falling back to the filename stem when either yields nothing.
func (w *Worker) inferTitle(ctx context.Context, log *slog.Logger, job *Job, firstPage []byte) string {
	tokens, err := w.engine.Recognize(ctx, firstPage)
	if err != nil {
		log.Warn("ocr failed, using filename", "engine", w.engine.Name(), "error", err)
		job.AddError(fmt.Sprintf("ocr: %s", err))
		return pdf.Stem(job.Filename)
	}

	if t, ok := w.titles.Extract(tokens); ok {
		log.Info("title inferred", "title", t)
		return t
	}
	log.Info("no title found, using filename")
	return pdf.Stem(job.Filename)
}
