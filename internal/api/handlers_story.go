package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dgallion1/kidsbook/internal/illustrate"
	"github.com/dgallion1/kidsbook/internal/story"
)

type generateStoryRequest struct {
	story.Request
	// Illustrate renders every chapter's image before responding.
	Illustrate bool `json:"illustrate"`
}

func (s *Server) handleGenerateStory(w http.ResponseWriter, r *http.Request) {
	var req generateStoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	start := time.Now()
	book, err := s.deps.Writer.Write(r.Context(), req.Request)
	s.deps.Latency.Since("generate_story", start)
	if errors.Is(err, story.ErrInvalidRequest) {
		jsonErrorDetails(w, "Missing required fields", err, http.StatusBadRequest)
		return
	}
	if err != nil {
		s.log.Error("story generation failed", "error", err)
		jsonErrorDetails(w, "Failed to generate story", err, http.StatusInternalServerError)
		return
	}

	if req.Illustrate {
		start = time.Now()
		results, err := s.deps.Studio.Batch(r.Context(), book.Chapters, req.ArtStyle, nil)
		s.deps.Latency.Since("generate_images", start)
		if err != nil {
			jsonErrorDetails(w, "Failed to illustrate story", err, http.StatusInternalServerError)
			return
		}
		illustrate.Apply(book, results)
	}

	s.log.Info("story generated", "title", book.Title, "chapters", len(book.Chapters), "source", book.Metadata.Source)
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"story":   book,
	})
}

func (s *Server) handleGenerateImage(w http.ResponseWriter, r *http.Request) {
	var req illustrate.Request
	if !decodeJSON(w, r, &req) {
		return
	}

	start := time.Now()
	img, err := s.deps.Studio.Generate(r.Context(), req)
	s.deps.Latency.Since("generate_image", start)
	if errors.Is(err, story.ErrInvalidRequest) {
		jsonErrorDetails(w, "Missing required fields: prompt and artStyle", err, http.StatusBadRequest)
		return
	}
	if err != nil {
		s.log.Error("image generation failed", "error", err)
		jsonErrorDetails(w, "Failed to generate image", err, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"image":   img,
	})
}

type characterInput struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	VisualFeatures  string   `json:"visualFeatures"`
	ReferenceImages []string `json:"referenceImages"`
}

type generateImagesRequest struct {
	Chapters   []story.Chapter  `json:"chapters"`
	ArtStyle   string           `json:"artStyle"`
	Characters []characterInput `json:"characters"`
}

func (s *Server) handleGenerateImages(w http.ResponseWriter, r *http.Request) {
	var req generateImagesRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	var missing []string
	if len(req.Chapters) == 0 {
		missing = append(missing, "chapters")
	}
	if strings.TrimSpace(req.ArtStyle) == "" {
		missing = append(missing, "artStyle")
	}
	if len(missing) > 0 {
		jsonErrorDetails(w, "Missing required fields", &story.ValidationError{Missing: missing}, http.StatusBadRequest)
		return
	}

	refs := make([]illustrate.CharacterReference, 0, len(req.Characters))
	for _, c := range req.Characters {
		if strings.TrimSpace(c.Description) == "" {
			continue
		}
		refs = append(refs, illustrate.NewCharacterReference(c.Name, c.Description, c.VisualFeatures, req.ArtStyle, c.ReferenceImages))
	}

	start := time.Now()
	results, err := s.deps.Studio.Batch(r.Context(), req.Chapters, req.ArtStyle, refs)
	s.deps.Latency.Since("generate_images", start)
	if err != nil {
		jsonErrorDetails(w, "Failed to generate images", err, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"results":    results,
		"characters": refs,
	})
}
