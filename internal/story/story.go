// Package story turns a story request into a chaptered children's book.
package story

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidRequest is wrapped by every request validation failure.
var ErrInvalidRequest = errors.New("invalid request")

// Request describes the book to write.
type Request struct {
	Title         string `json:"title"`
	StoryPrompt   string `json:"storyPrompt"`
	Age           string `json:"age"`
	Length        string `json:"length"`
	ArtStyle      string `json:"artStyle"`
	CharacterName string `json:"characterName,omitempty"`
}

// ValidationError lists the required fields a request is missing.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return "Missing required fields: " + strings.Join(e.Missing, ", ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidRequest }

// Validate checks that all required fields are present.
func (r Request) Validate() error {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"title", r.Title},
		{"storyPrompt", r.StoryPrompt},
		{"age", r.Age},
		{"length", r.Length},
		{"artStyle", r.ArtStyle},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}

// ChapterCount maps a requested length to a number of chapters.
func ChapterCount(length string) int {
	switch length {
	case "short":
		return 4
	case "medium":
		return 6
	default:
		return 8
	}
}

// Chapter is one chapter of a book.
type Chapter struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Content     string  `json:"content"`
	ImagePrompt string  `json:"imagePrompt"`
	ImageURL    *string `json:"imageUrl"`
	HasImage    bool    `json:"hasImage"`
}

// Metadata records how a book was produced.
type Metadata struct {
	Age           string    `json:"age"`
	Length        int       `json:"length" jsonschema:"description=Number of chapters"`
	ArtStyle      string    `json:"artStyle"`
	CharacterName string    `json:"characterName,omitempty"`
	Source        string    `json:"source" jsonschema:"enum=template,enum=openai,enum=import"`
	GeneratedAt   time.Time `json:"generatedAt"`
}

// Book is the generated story and its JSON export format.
type Book struct {
	Title    string    `json:"title"`
	Chapters []Chapter `json:"chapters"`
	Metadata Metadata  `json:"metadata"`
}

// Writer produces a book from a validated request.
type Writer interface {
	Write(ctx context.Context, req Request) (*Book, error)
}

// SetImage attaches a generated illustration to chapter i.
func (b *Book) SetImage(i int, url string) error {
	if i < 0 || i >= len(b.Chapters) {
		return fmt.Errorf("chapter index %d out of range", i)
	}
	b.Chapters[i].ImageURL = &url
	b.Chapters[i].HasImage = true
	return nil
}
