package parser

import (
	"strings"
	"testing"
)

func TestMarkdownParser_ChapterHeadings(t *testing.T) {
	input := `# The Lost Kite

A story for bedtime.

## Chapter 1

Mia found a red kite in the attic.

### The string

It was tangled in a hundred knots.

## Chapter 2

The wind carried the kite over the hill.
`
	tree, err := (&MarkdownParser{}).Parse(strings.NewReader(input), "kite.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree.Title != "kite" {
		t.Errorf("expected title %q, got %q", "kite", tree.Title)
	}
	if len(tree.Children) != 1 {
		t.Fatalf("expected 1 top-level section, got %d", len(tree.Children))
	}

	book := tree.Children[0]
	if book.Title != "The Lost Kite" || book.Text != "A story for bedtime." {
		t.Errorf("unexpected book node %q / %q", book.Title, book.Text)
	}
	if len(book.Children) != 2 {
		t.Fatalf("expected 2 chapters, got %d", len(book.Children))
	}

	ch1 := book.Children[0]
	if ch1.Title != "Chapter 1" || !strings.Contains(ch1.Text, "red kite") {
		t.Errorf("unexpected chapter 1 %q / %q", ch1.Title, ch1.Text)
	}
	if len(ch1.Children) != 1 || ch1.Children[0].Title != "The string" {
		t.Errorf("expected nested %q under chapter 1", "The string")
	}
	if ch2 := book.Children[1]; ch2.Title != "Chapter 2" {
		t.Errorf("expected %q, got %q", "Chapter 2", ch2.Title)
	}
}

func TestMarkdownParser_FlattenFeedsSegmenter(t *testing.T) {
	input := "## Chapter 1\n\nMia found a *red* kite.\n\n## Chapter 2\n\nThe wind took it away.\n"
	tree, err := (&MarkdownParser{}).Parse(strings.NewReader(input), "kite.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := tree.Flatten()
	want := "Chapter 1\n\nMia found a red kite.\n\nChapter 2\n\nThe wind took it away."
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestMarkdownParser_NoHeadings(t *testing.T) {
	input := "Once upon a time there was a snail.\n\nIt was very slow."
	tree, err := (&MarkdownParser{}).Parse(strings.NewReader(input), "snail.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tree.Children) != 1 {
		t.Fatalf("expected 1 untitled node, got %d", len(tree.Children))
	}
	text := tree.Children[0].Text
	if !strings.Contains(text, "a snail.") || !strings.Contains(text, "very slow.") {
		t.Errorf("expected both paragraphs, got %q", text)
	}
}

func TestMarkdownParser_CodeBlocksKept(t *testing.T) {
	input := "# Songs\n\nThe frog sang:\n\n```\nribbit ribbit\nribbit\n```\n\nThen it hopped away.\n"
	tree, err := (&MarkdownParser{}).Parse(strings.NewReader(input), "songs.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tree.Children) != 1 {
		t.Fatalf("expected 1 section, got %d", len(tree.Children))
	}
	text := tree.Children[0].Text
	for _, want := range []string{"The frog sang:", "ribbit ribbit", "Then it hopped away."} {
		if !strings.Contains(text, want) {
			t.Errorf("expected %q in %q", want, text)
		}
	}
}

func TestMarkdownParser_Empty(t *testing.T) {
	tree, err := (&MarkdownParser{}).Parse(strings.NewReader(""), "empty.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tree.Children) != 0 {
		t.Errorf("expected no sections, got %d", len(tree.Children))
	}
}

func TestMarkdownParser_TitleFromFilename(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"kite.md", "kite"},
		{"drafts/owl.markdown", "owl"},
		{"SHOUT.MD", "SHOUT"},
	}
	for _, tt := range tests {
		tree, err := (&MarkdownParser{}).Parse(strings.NewReader("text"), tt.filename)
		if err != nil {
			t.Fatalf("unexpected error for %s: %v", tt.filename, err)
		}
		if tree.Title != tt.want {
			t.Errorf("filename=%q: expected title %q, got %q", tt.filename, tt.want, tree.Title)
		}
	}
}
