// Package app wires the kidsbook services together and runs the HTTP server.
package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/dgallion1/kidsbook/internal/api"
	"github.com/dgallion1/kidsbook/internal/config"
	"github.com/dgallion1/kidsbook/internal/gdocs"
	"github.com/dgallion1/kidsbook/internal/illustrate"
	"github.com/dgallion1/kidsbook/internal/parser"
	"github.com/dgallion1/kidsbook/internal/pipeline"
	"github.com/dgallion1/kidsbook/internal/segment"
	"github.com/dgallion1/kidsbook/internal/stats"
	"github.com/dgallion1/kidsbook/internal/story"
)

// App holds the long-lived services of one server process.
type App struct {
	cfg  config.Config
	log  *slog.Logger
	orch *pipeline.Orchestrator
	docs *gdocs.Client
	srv  *api.Server
}

// PipelineOptions derives extraction and segmentation settings from cfg.
func PipelineOptions(cfg config.Config) pipeline.Options {
	return pipeline.Options{
		Extract: parser.Options{
			PDFFallbackPdftotext: cfg.PDFFallbackPdftotext,
			MinChars:             cfg.MinExtractedChars,
		},
		Segment: segment.Options{
			WindowWords: cfg.SegmentWindowWords,
			MinChars:    cfg.SegmentMinChars,
		},
	}
}

// New builds every service. Generation uses OpenAI when a key is
// configured and the offline template writer and placeholder images otherwise.
func New(cfg config.Config, log *slog.Logger) *App {
	popts := PipelineOptions(cfg)
	tmpl := story.DefaultTemplates()

	var writer story.Writer
	var illustrator illustrate.Illustrator
	if cfg.GenerationEnabled() {
		client := openai.NewClient(cfg.OpenAIAPIKey)
		writer = story.NewOpenAIWriter(client, cfg.OpenAIModel, log.With("component", "writer"))
		illustrator = illustrate.NewOpenAIIllustrator(client, cfg.OpenAIImageModel, log.With("component", "illustrator"))
	} else {
		writer = story.NewTemplateWriter(tmpl)
		illustrator = illustrate.NewPlaceholder(nil)
	}

	a := &App{
		cfg:  cfg,
		log:  log,
		orch: pipeline.NewOrchestrator(cfg.WorkerCount, cfg.MaxQueueSize, cfg.JobTTL, popts, log.With("component", "pipeline")),
		docs: gdocs.NewClient(cfg.GDocsBaseURL, popts.Segment),
	}
	a.srv = api.NewServer(api.Deps{
		Orchestrator: a.orch,
		Writer:       writer,
		Studio:       illustrate.NewStudio(illustrator, cfg.ImageConcurrency, log.With("component", "studio")),
		GDocs:        a.docs,
		Templates:    tmpl,
		Latency:      stats.NewLatency(time.Hour),
		Pipeline:     popts,
	}, log, cfg)
	return a
}

// Handler exposes the HTTP API.
func (a *App) Handler() http.Handler { return a.srv }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	a.orch.Start(ctx)

	httpServer := &http.Server{
		Addr:         ":" + a.cfg.Port,
		Handler:      a.srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("starting kidsbook", "port", a.cfg.Port, "generation", a.cfg.GenerationEnabled())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		a.orch.Stop()
		a.docs.Close()
		return err
	case <-ctx.Done():
	}

	a.log.Info("shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	err := httpServer.Shutdown(shutdownCtx)

	a.orch.Stop()
	a.docs.Close()
	return err
}
