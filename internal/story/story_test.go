package story

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func validRequest() Request {
	return Request{
		Title:       "Pip's Big Day",
		StoryPrompt: "A brave little fox goes on an adventure",
		Age:         "6-8",
		Length:      "short",
		ArtStyle:    "cartoon",
	}
}

func TestRequestValidate(t *testing.T) {
	if err := validRequest().Validate(); err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}

	req := validRequest()
	req.Title = ""
	req.ArtStyle = "  "
	err := req.Validate()
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if strings.Join(ve.Missing, ",") != "title,artStyle" {
		t.Errorf("unexpected missing fields %v", ve.Missing)
	}
}

func TestChapterCount(t *testing.T) {
	tests := map[string]int{"short": 4, "medium": 6, "long": 8, "": 8, "epic": 8}
	for length, want := range tests {
		if got := ChapterCount(length); got != want {
			t.Errorf("ChapterCount(%q) = %d, want %d", length, got, want)
		}
	}
}

func TestTemplateWriter_Write(t *testing.T) {
	w := NewTemplateWriter(nil)
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return fixed }

	book, err := w.Write(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(book.Chapters) != 4 {
		t.Fatalf("expected 4 chapters, got %d", len(book.Chapters))
	}

	wantTitles := []string{
		"Chapter 1: The Beginning of the Adventure",
		"Chapter 2: A New Discovery of the Adventure",
		"Chapter 3: The Challenge of the Adventure",
		"Chapter 4: Making Friends of the Adventure",
	}
	for i, c := range book.Chapters {
		if c.Title != wantTitles[i] {
			t.Errorf("chapter %d: expected title %q, got %q", i+1, wantTitles[i], c.Title)
		}
		if c.ImageURL != nil || c.HasImage {
			t.Errorf("chapter %d: expected no image yet", i+1)
		}
		if !strings.HasPrefix(c.ImagePrompt, "colorful cartoon style, "+c.Title+", child-friendly") {
			t.Errorf("chapter %d: unexpected image prompt %q", i+1, c.ImagePrompt)
		}
	}
	if !strings.HasPrefix(book.Chapters[0].Content, "Our story begins in a wonderful place") {
		t.Errorf("expected adventure introduction, got %q", book.Chapters[0].Content)
	}
	if book.Metadata.Length != 4 || book.Metadata.Source != "template" || !book.Metadata.GeneratedAt.Equal(fixed) {
		t.Errorf("unexpected metadata %+v", book.Metadata)
	}
}

func TestTemplateWriter_RejectsInvalid(t *testing.T) {
	_, err := NewTemplateWriter(nil).Write(context.Background(), Request{Title: "x"})
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestChapterTitleSuffixes(t *testing.T) {
	tmpl := DefaultTemplates()
	tests := []struct {
		prompt string
		n      int
		want   string
	}{
		{"A MAGIC adventure", 1, "Chapter 1: The Beginning of the Adventure"},
		{"a magic wand", 2, "Chapter 2: A New Discovery - A Magical Tale"},
		{"animal parade", 8, "Chapter 8: The Happy Ending in the Animal Kingdom"},
		{"a quiet day", 3, "Chapter 3: The Challenge"},
		{"a quiet day", 9, "Chapter 9: Chapter 9"},
	}
	for _, tt := range tests {
		if got := tmpl.ChapterTitle(tt.n, tt.prompt); got != tt.want {
			t.Errorf("ChapterTitle(%d, %q) = %q, want %q", tt.n, tt.prompt, got, tt.want)
		}
	}
}

func TestChapterContentProgression(t *testing.T) {
	tmpl := DefaultTemplates()
	c := tmpl.Content

	tests := []struct {
		name   string
		n      int
		total  int
		prompt string
		age    string
		want   string
	}{
		{"intro friendship", 1, 8, "two friends", "6-8", c.Introduction["friendship"]},
		{"intro default", 2, 8, "a quiet day", "6-8", c.IntroductionDefault},
		{"rising", 4, 8, "a quiet day", "6-8", c.Rising},
		{"climax", 6, 8, "a quiet day", "6-8", c.Climax},
		{"climax young", 3, 4, "a quiet day", "3-5", c.ClimaxYoung},
		{"resolution", 7, 8, "a quiet day", "6-8", c.Resolution},
		{"nature has no intro of its own", 1, 4, "a pet rabbit", "6-8", c.IntroductionDefault},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tmpl.ChapterContent(tt.n, tt.total, tt.prompt, tt.age); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestAdjustForAge(t *testing.T) {
	tmpl := DefaultTemplates()

	young := tmpl.ChapterContent(1, 4, "a magic garden", "3-5")
	if strings.Contains(young, "extraordinary") || !strings.Contains(young, "something special") {
		t.Errorf("expected vocabulary swap for 3-5, got %q", young)
	}

	teen := tmpl.AdjustForAge("It ended.", "13+")
	want := "It ended. The experience taught valuable life lessons about perseverance, empathy, and personal growth."
	if teen != want {
		t.Errorf("expected %q, got %q", want, teen)
	}

	if got := tmpl.AdjustForAge("A magnificent day.", "9-12"); got != "A magnificent day." {
		t.Errorf("expected unchanged content, got %q", got)
	}
}

func TestThemesFor(t *testing.T) {
	got := DefaultTemplates().ThemesFor("A wizard and her pet help a friend explore")
	want := "adventure,friendship,magic,nature"
	if strings.Join(got, ",") != want {
		t.Errorf("expected %s, got %v", want, got)
	}
}

func TestImagePrompt(t *testing.T) {
	tmpl := DefaultTemplates()
	content := strings.Repeat("é", 150)
	got := tmpl.ImagePrompt("Chapter 1: Hi", content, "Watercolor")
	want := "soft watercolor painting, Chapter 1: Hi, child-friendly, bright colors, engaging scene, book illustration, " + strings.Repeat("é", 100)
	if got != want {
		t.Errorf("unexpected prompt %q", got)
	}
	if !strings.HasPrefix(tmpl.ImagePrompt("t", "c", "oil"), "colorful illustration, ") {
		t.Error("expected default descriptor for unknown style")
	}
}

func TestPresets(t *testing.T) {
	tmpl := DefaultTemplates()
	if len(tmpl.Presets) != 4 {
		t.Fatalf("expected 4 presets, got %d", len(tmpl.Presets))
	}
	p, ok := tmpl.Preset("animals")
	if !ok || p.Title != "Animal Friends Adventure" || p.ArtStyle != "cartoon" {
		t.Errorf("unexpected animals preset %+v", p)
	}
	if _, ok := tmpl.Preset("horror"); ok {
		t.Error("expected unknown preset to be missing")
	}
}

func TestParseTemplates_Invalid(t *testing.T) {
	if _, err := ParseTemplates([]byte("arc: [")); err == nil {
		t.Error("expected error for malformed yaml")
	}
	if _, err := ParseTemplates([]byte("themes: []")); err == nil {
		t.Error("expected error for missing arc")
	}
}

func TestBookSetImage(t *testing.T) {
	book := &Book{Chapters: []Chapter{{ID: "chapter-1"}}}
	if err := book.SetImage(0, "https://example.com/a.png"); err != nil {
		t.Fatal(err)
	}
	if !book.Chapters[0].HasImage || *book.Chapters[0].ImageURL != "https://example.com/a.png" {
		t.Errorf("expected image attached, got %+v", book.Chapters[0])
	}
	if err := book.SetImage(3, "x"); err == nil {
		t.Error("expected out of range error")
	}
}

func TestBookSchema(t *testing.T) {
	data, err := BookSchema()
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	for _, want := range []string{`"chapters"`, `"imagePrompt"`, `"generatedAt"`, `"additionalProperties": false`} {
		if !strings.Contains(s, want) {
			t.Errorf("expected schema to contain %s", want)
		}
	}
}
