package api

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sort"
	"time"

	"github.com/dgallion1/kidsbook/internal/pipeline"
	"github.com/dgallion1/kidsbook/internal/segment"
)

// maxUploadFiles bounds a single multipart upload.
const maxUploadFiles = 10

func (s *Server) handleProcessUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*maxUploadFiles+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonErrorDetails(w, "Failed to process uploaded files", err, http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	// Any field name is accepted; fields are walked in name order.
	fields := make([]string, 0, len(r.MultipartForm.File))
	for name := range r.MultipartForm.File {
		fields = append(fields, name)
	}
	sort.Strings(fields)

	var headers []*multipart.FileHeader
	for _, name := range fields {
		headers = append(headers, r.MultipartForm.File[name]...)
	}
	if len(headers) == 0 {
		jsonError(w, "No files uploaded", http.StatusBadRequest)
		return
	}
	if len(headers) > maxUploadFiles {
		jsonError(w, fmt.Sprintf("Too many files (max %d)", maxUploadFiles), http.StatusBadRequest)
		return
	}

	start := time.Now()
	files := make([]pipeline.ProcessedFile, 0, len(headers))
	for _, fh := range headers {
		files = append(files, s.processHeader(fh))
	}
	s.deps.Latency.Since("process_upload", start)

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"files":   files,
	})
}

func (s *Server) processHeader(fh *multipart.FileHeader) pipeline.ProcessedFile {
	name := sanitizeFilename(fh.Filename)
	fail := func(msg string) pipeline.ProcessedFile {
		return pipeline.FailedFile(name, fh.Size, msg)
	}

	if fh.Size > s.cfg.MaxUploadBytes {
		return fail(fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes))
	}
	f, err := fh.Open()
	if err != nil {
		return fail("failed to open file")
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return fail("failed to read file")
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return fail(fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes))
	}

	pf := pipeline.ProcessFile(name, data, s.deps.Pipeline)
	if pf.Status == pipeline.FileError {
		s.log.Warn("upload processing failed", "filename", name, "error", pf.Error)
	}
	return pf
}

type segmentRequest struct {
	Text        string `json:"text"`
	WindowWords int    `json:"windowWords,omitempty"`
	MinChars    int    `json:"minChars,omitempty"`
}

func (s *Server) handleSegment(w http.ResponseWriter, r *http.Request) {
	var req segmentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	opts := s.deps.Pipeline.Segment
	if req.WindowWords > 0 {
		opts.WindowWords = req.WindowWords
	}
	if req.MinChars > 0 {
		opts.MinChars = req.MinChars
	}

	res := segment.Segment(req.Text, opts)
	writeJSON(w, http.StatusOK, map[string]any{
		"chapters":  res.Chapters,
		"strategy":  res.Strategy,
		"wordCount": segment.CountWords(req.Text),
	})
}
