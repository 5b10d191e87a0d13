package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/dgallion1/kidsbook/internal/config"
	"github.com/dgallion1/kidsbook/internal/gdocs"
	"github.com/dgallion1/kidsbook/internal/illustrate"
	"github.com/dgallion1/kidsbook/internal/pipeline"
	"github.com/dgallion1/kidsbook/internal/stats"
	"github.com/dgallion1/kidsbook/internal/story"
)

// Deps are the services behind the HTTP API.
type Deps struct {
	Orchestrator *pipeline.Orchestrator
	Writer       story.Writer
	Studio       *illustrate.Studio
	GDocs        *gdocs.Client
	Templates    *story.Templates
	Latency      *stats.Latency
	Pipeline     pipeline.Options
}

// Server is the HTTP API server for kidsbook.
type Server struct {
	router chi.Router
	deps   Deps
	log    *slog.Logger
	cfg    config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(deps Deps, log *slog.Logger, cfg config.Config) *Server {
	if deps.Templates == nil {
		deps.Templates = story.DefaultTemplates()
	}
	if deps.Latency == nil {
		deps.Latency = stats.NewLatency(0)
	}
	s := &Server{
		deps: deps,
		log:  log,
		cfg:  cfg,
	}
	s.registerGauges()
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))
	r.Use(CORS(s.cfg.CORSOrigins))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		jsonError(w, "Not found", http.StatusNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
	})

	// Public endpoints.
	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.deps.Latency.Handler())

	r.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}

		// Generation is the expensive part; throttle it.
		r.Group(func(r chi.Router) {
			if s.cfg.RateLimitRPS > 0 {
				r.Use(RateLimit(rate.NewLimiter(rate.Limit(s.cfg.RateLimitRPS), s.cfg.RateLimitBurst), s.log))
			}
			r.Post("/api/generate-story", s.handleGenerateStory)
			r.Post("/api/generate-image", s.handleGenerateImage)
			r.Post("/api/generate-images", s.handleGenerateImages)
		})

		r.Post("/api/process-upload", s.handleProcessUpload)
		r.Post("/api/segment", s.handleSegment)
		r.Post("/api/imports", s.handleImport)
		r.Get("/api/imports/{jobID}", s.handleImportStatus)
		r.Post("/api/google-docs/{docID}", s.handleGoogleDoc)

		r.Get("/api/templates", s.handleTemplates)
		r.Get("/api/schema/book", s.handleBookSchema)
		r.Get("/api/stats", s.handleStats)
	})

	s.router = r
}

func (s *Server) registerGauges() {
	o := s.deps.Orchestrator
	if o == nil {
		return
	}
	gauges := []struct {
		name, help string
		fn         func() float64
	}{
		{"import_queue_depth", "Import jobs waiting for a worker", func() float64 { return float64(o.QueueDepth()) }},
		{"import_jobs_tracked", "Import jobs held in the job store", func() float64 { return float64(o.JobCount()) }},
	}
	for _, g := range gauges {
		if err := s.deps.Latency.Gauge(g.name, g.help, g.fn); err != nil {
			s.log.Warn("metrics gauge not registered", "name", g.name, "error", err)
		}
	}
}
