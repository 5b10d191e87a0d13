package story

import (
	"context"
	"fmt"
	"time"

	"github.com/dgallion1/kidsbook/internal/segment"
)

// TemplateWriter writes books from the template tables. Its output depends
// only on the request, apart from the generation timestamp.
type TemplateWriter struct {
	tmpl *Templates
	now  func() time.Time
}

func NewTemplateWriter(tmpl *Templates) *TemplateWriter {
	if tmpl == nil {
		tmpl = DefaultTemplates()
	}
	return &TemplateWriter{tmpl: tmpl, now: time.Now}
}

func (w *TemplateWriter) Write(ctx context.Context, req Request) (*Book, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	total := ChapterCount(req.Length)

	chapters := make([]Chapter, 0, total)
	for n := 1; n <= total; n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		title := w.tmpl.ChapterTitle(n, req.StoryPrompt)
		content := w.tmpl.ChapterContent(n, total, req.StoryPrompt, req.Age)
		chapters = append(chapters, Chapter{
			ID:          fmt.Sprintf("chapter-%d", n),
			Title:       title,
			Content:     content,
			ImagePrompt: w.tmpl.ImagePrompt(title, content, req.ArtStyle),
		})
	}

	return &Book{
		Title:    req.Title,
		Chapters: chapters,
		Metadata: Metadata{
			Age:           req.Age,
			Length:        total,
			ArtStyle:      req.ArtStyle,
			CharacterName: req.CharacterName,
			Source:        "template",
			GeneratedAt:   w.now().UTC(),
		},
	}, nil
}

// FromSegments builds a book from imported chapters, attaching an image
// prompt to each one.
func FromSegments(title, artStyle string, chapters []segment.Chapter, tmpl *Templates) *Book {
	if tmpl == nil {
		tmpl = DefaultTemplates()
	}
	out := make([]Chapter, len(chapters))
	for i, c := range chapters {
		out[i] = Chapter{
			ID:          c.ID,
			Title:       c.Title,
			Content:     c.Content,
			ImagePrompt: tmpl.ImagePrompt(c.Title, c.Content, artStyle),
		}
	}
	return &Book{
		Title:    title,
		Chapters: out,
		Metadata: Metadata{
			Length:      len(out),
			ArtStyle:    artStyle,
			Source:      "import",
			GeneratedAt: time.Now().UTC(),
		},
	}
}
