package pipeline

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	"github.com/dgallion1/kidsbook/internal/parser"
	"github.com/dgallion1/kidsbook/internal/segment"
)

// Worker processes a single import job.
type Worker struct {
	log  *slog.Logger
	opts Options
}

func NewWorker(log *slog.Logger, opts Options) *Worker {
	return &Worker{log: log, opts: opts}
}

// Process runs extraction and segmentation for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)
	start := time.Now()

	if err := ctx.Err(); err != nil {
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "cancelled")
		return
	}

	// Phase 1: Extract
	job.SetStatus(StatusExtracting, "extracting text")
	data := job.FileData()
	ext, err := parser.Extract(bytes.NewReader(data), job.Filename, w.opts.Extract)
	if err != nil {
		log.Error("extraction failed", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "extracting")
		return
	}
	job.SetContentHash(ContentHashHex([]byte(ext.Text)))

	// Phase 2: Segment
	job.SetStatus(StatusSegmenting, "splitting into chapters")
	res := segment.Segment(ext.Text, w.opts.Segment)
	if len(res.Chapters) == 0 {
		log.Warn("no chapters produced", "strategy", res.Strategy)
	}

	job.Complete(ProcessedFile{
		OriginalName:  job.Filename,
		Size:          int64(len(data)),
		Type:          parser.Ext(job.Filename),
		Title:         ext.Title,
		ExtractedText: ext.Text,
		Status:        FileSuccess,
		WordCount:     segment.CountWords(ext.Text),
		ProcessedAt:   time.Now().UTC(),
		Chapters:      res.Chapters,
		Strategy:      res.Strategy,
	})
	log.Info("import complete",
		"chapters", len(res.Chapters),
		"strategy", res.Strategy,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
