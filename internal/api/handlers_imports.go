package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/kidsbook/internal/gdocs"
	"github.com/dgallion1/kidsbook/internal/parser"
	"github.com/dgallion1/kidsbook/internal/pipeline"
	"github.com/dgallion1/kidsbook/internal/story"
)

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

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
	if !parser.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	// Read file data.
	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	job := pipeline.NewJob(filename, data)
	if err := s.deps.Orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	snap := job.Snapshot()
	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":   snap.ID,
		"status":   snap.Status,
		"poll_url": fmt.Sprintf("/api/imports/%s", snap.ID),
	})
}

func (s *Server) handleImportStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.deps.Orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

func (s *Server) handleGoogleDoc(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	token := r.Header.Get("X-Google-Token")
	if token == "" {
		jsonError(w, "X-Google-Token header is required", http.StatusBadRequest)
		return
	}

	doc, err := s.deps.GDocs.Import(r.Context(), docID, token)
	switch {
	case errors.Is(err, gdocs.ErrNotFound):
		jsonErrorDetails(w, "Google Doc not found", err, http.StatusNotFound)
		return
	case err != nil:
		s.log.Error("google doc import failed", "doc_id", docID, "error", err)
		jsonErrorDetails(w, "Failed to import Google Doc", err, http.StatusBadGateway)
		return
	}

	s.log.Info("google doc imported", "doc_id", docID, "chapters", len(doc.Chapters), "strategy", doc.Strategy)
	resp := map[string]any{
		"success":  true,
		"document": doc,
	}
	// With an art style the chapters come back as a book ready for illustration.
	if style := r.URL.Query().Get("artStyle"); style != "" {
		resp["book"] = story.FromSegments(doc.Title, style, doc.Chapters, s.deps.Templates)
	}
	writeJSON(w, http.StatusOK, resp)
}
