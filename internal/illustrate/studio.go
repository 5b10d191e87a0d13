package illustrate

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dgallion1/kidsbook/internal/story"
)

// Illustrator turns a final prompt into an image URL.
type Illustrator interface {
	Render(ctx context.Context, prompt, artStyle string) (string, error)
	Name() string
}

// Request asks for a single illustration.
type Request struct {
	Prompt               string `json:"prompt"`
	ArtStyle             string `json:"artStyle"`
	ChapterTitle         string `json:"chapterTitle,omitempty"`
	ChapterContent       string `json:"chapterContent,omitempty"`
	CharacterConsistency bool   `json:"characterConsistency,omitempty"`
}

func (r Request) Validate() error {
	var missing []string
	if strings.TrimSpace(r.Prompt) == "" {
		missing = append(missing, "prompt")
	}
	if strings.TrimSpace(r.ArtStyle) == "" {
		missing = append(missing, "artStyle")
	}
	if len(missing) > 0 {
		return &story.ValidationError{Missing: missing}
	}
	return nil
}

type ImageMetadata struct {
	GeneratedAt          time.Time `json:"generatedAt"`
	ChapterTitle         string    `json:"chapterTitle"`
	CharacterConsistency bool      `json:"characterConsistency"`
	Backend              string    `json:"backend"`
}

// Image is a rendered illustration and the prompt that produced it.
type Image struct {
	URL      string        `json:"url"`
	Prompt   string        `json:"prompt"`
	Style    string        `json:"style"`
	Metadata ImageMetadata `json:"metadata"`
}

// BatchResult is the outcome for one chapter of a batch.
type BatchResult struct {
	ChapterID string `json:"chapterId"`
	Success   bool   `json:"success"`
	Image     *Image `json:"image,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Studio applies the prompt pipeline in front of an Illustrator.
type Studio struct {
	backend     Illustrator
	concurrency int
	log         *slog.Logger
	now         func() time.Time
}

func NewStudio(backend Illustrator, concurrency int, log *slog.Logger) *Studio {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Studio{backend: backend, concurrency: concurrency, log: log, now: time.Now}
}

// Generate renders one illustration.
func (s *Studio) Generate(ctx context.Context, req Request) (*Image, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	prompt := FinalPrompt(req.Prompt, req.ArtStyle)
	url, err := s.backend.Render(ctx, prompt, req.ArtStyle)
	if err != nil {
		return nil, err
	}

	title := req.ChapterTitle
	if title == "" {
		title = "Untitled Chapter"
	}
	return &Image{
		URL:    url,
		Prompt: prompt,
		Style:  req.ArtStyle,
		Metadata: ImageMetadata{
			GeneratedAt:          s.now().UTC(),
			ChapterTitle:         title,
			CharacterConsistency: req.CharacterConsistency,
			Backend:              s.backend.Name(),
		},
	}, nil
}

// Character renders a reference sheet for a character description.
func (s *Studio) Character(ctx context.Context, description, artStyle string) (*Image, error) {
	return s.Generate(ctx, Request{
		Prompt:               CharacterPrompt(description, artStyle),
		ArtStyle:             artStyle,
		CharacterConsistency: true,
	})
}

// Batch illustrates every chapter concurrently. Results keep chapter order;
// a failed chapter is recorded in its result and does not stop the others.
// The returned error is non-nil only when ctx ends first.
func (s *Studio) Batch(ctx context.Context, chapters []story.Chapter, artStyle string, refs []CharacterReference) ([]BatchResult, error) {
	results := make([]BatchResult, len(chapters))
	if len(chapters) == 0 {
		return results, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, ch := range chapters {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			img, err := s.Generate(ctx, Request{
				Prompt:               ChapterPrompt(ch, refs),
				ArtStyle:             artStyle,
				ChapterTitle:         ch.Title,
				ChapterContent:       ch.Content,
				CharacterConsistency: len(refs) > 0,
			})
			if err != nil {
				s.log.Warn("chapter illustration failed", "chapter", ch.ID, "error", err)
				results[i] = BatchResult{ChapterID: ch.ID, Error: err.Error()}
				return nil
			}
			results[i] = BatchResult{ChapterID: ch.ID, Success: true, Image: img}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Apply attaches successful batch results to the book's chapters.
func Apply(book *story.Book, results []BatchResult) {
	for i, r := range results {
		if r.Success && r.Image != nil && i < len(book.Chapters) && book.Chapters[i].ID == r.ChapterID {
			book.SetImage(i, r.Image.URL)
		}
	}
}
