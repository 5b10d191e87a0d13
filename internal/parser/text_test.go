package parser

import (
	"strings"
	"testing"
)

func TestTextParser_Paragraphs(t *testing.T) {
	input := "Pip the rabbit lived under the old oak.\nShe liked carrots best.\n\n" +
		"One morning the oak was gone.\n\nPip went looking for it."
	tree, err := (&TextParser{}).Parse(strings.NewReader(input), "pip.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if tree.Title != "pip" {
		t.Errorf("expected title %q, got %q", "pip", tree.Title)
	}
	want := []string{
		"Pip the rabbit lived under the old oak.\nShe liked carrots best.",
		"One morning the oak was gone.",
		"Pip went looking for it.",
	}
	if len(tree.Children) != len(want) {
		t.Fatalf("expected %d paragraphs, got %d", len(want), len(tree.Children))
	}
	for i, w := range want {
		if tree.Children[i].Text != w {
			t.Errorf("paragraph %d: expected %q, got %q", i, w, tree.Children[i].Text)
		}
	}
}

func TestTextParser_BlankRuns(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"empty", "", 0},
		{"single line", "The end.", 1},
		{"several blank lines", "Chapter 1\n\n\n\nChapter 2", 2},
		{"whitespace-only separator", "Chapter 1\n \t \nChapter 2", 2},
		{"trailing blank lines", "Chapter 1\n\n\n", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, err := (&TextParser{}).Parse(strings.NewReader(tt.input), "story.txt")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(tree.Children) != tt.want {
				t.Errorf("expected %d paragraphs, got %d", tt.want, len(tree.Children))
			}
		})
	}
}

func TestTextParser_FlattenKeepsChapterLines(t *testing.T) {
	input := "Chapter 1\nThe kite flew high.\n\nChapter 2\nThe kite came home."
	tree, err := (&TextParser{}).Parse(strings.NewReader(input), "kite.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := tree.Flatten()
	want := "Chapter 1\nThe kite flew high.\n\nChapter 2\nThe kite came home."
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
