package api

import (
	"net/http"
	"sort"
	"time"

	"github.com/dgallion1/kidsbook/internal/story"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "OK",
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	})
}

func (s *Server) handleTemplates(w http.ResponseWriter, r *http.Request) {
	t := s.deps.Templates
	styles := make([]string, 0, len(t.StyleDescriptors))
	for style := range t.StyleDescriptors {
		styles = append(styles, style)
	}
	sort.Strings(styles)

	writeJSON(w, http.StatusOK, map[string]any{
		"presets":   t.Presets,
		"artStyles": styles,
		"lengths": map[string]int{
			"short":  story.ChapterCount("short"),
			"medium": story.ChapterCount("medium"),
			"long":   story.ChapterCount("long"),
		},
	})
}

func (s *Server) handleBookSchema(w http.ResponseWriter, r *http.Request) {
	schema, err := story.BookSchema()
	if err != nil {
		jsonErrorDetails(w, "Failed to build schema", err, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/schema+json")
	w.Write(schema)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	backend := "template"
	if s.cfg.GenerationEnabled() {
		backend = "openai"
	}
	resp := map[string]any{
		"generation": backend,
		"latency":    s.deps.Latency.Snapshot(),
	}
	if o := s.deps.Orchestrator; o != nil {
		resp["queue_depth"] = o.QueueDepth()
		resp["jobs"] = o.JobCount()
	}
	writeJSON(w, http.StatusOK, resp)
}
