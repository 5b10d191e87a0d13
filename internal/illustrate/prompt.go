// Package illustrate produces chapter illustrations for generated books.
package illustrate

import (
	"fmt"
	"strings"

	"github.com/dgallion1/kidsbook/internal/story"
)

var styleEnhancements = map[string]string{
	"cartoon":    "vibrant cartoon style, bold outlines, bright colors, child-friendly characters, animated look",
	"watercolor": "soft watercolor painting, gentle brushstrokes, flowing colors, artistic texture, dreamy atmosphere",
	"digital":    "digital art illustration, clean lines, modern style, polished finish, contemporary look",
	"hand-drawn": "hand-drawn illustration, sketch-like quality, artistic lines, traditional art feel",
	"realistic":  "realistic illustration, detailed artwork, lifelike characters, natural lighting",
}

const defaultEnhancement = "colorful illustration"

var safetyGuidelines = []string{
	"child-safe content",
	"appropriate for children",
	"wholesome and positive",
	"no scary or inappropriate elements",
	"bright and cheerful",
	"educational and inspiring",
}

// EnhancePrompt appends the art style's look to a base prompt.
func EnhancePrompt(base, artStyle string) string {
	enhancement, ok := styleEnhancements[strings.ToLower(artStyle)]
	if !ok {
		enhancement = defaultEnhancement
	}
	return base + ", " + enhancement
}

// AddSafetyGuidelines appends the child-safety requirements to a prompt.
func AddSafetyGuidelines(prompt string) string {
	return prompt + ", " + strings.Join(safetyGuidelines, ", ")
}

// FinalPrompt is the prompt actually sent to an image backend.
func FinalPrompt(base, artStyle string) string {
	return AddSafetyGuidelines(EnhancePrompt(base, artStyle))
}

var visualKeywords = []string{
	"forest", "castle", "mountain", "ocean", "garden", "house", "tree",
	"animal", "bird", "cat", "dog", "rabbit", "bear", "dragon",
	"magic", "sparkle", "rainbow", "star", "moon", "sun",
	"adventure", "journey", "path", "bridge", "door", "window",
}

// VisualElements returns up to three scenery keywords found in content, in
// keyword-table order. Matching is by substring.
func VisualElements(content string) []string {
	lower := strings.ToLower(content)
	var out []string
	for _, kw := range visualKeywords {
		if strings.Contains(lower, kw) {
			out = append(out, kw)
			if len(out) == 3 {
				break
			}
		}
	}
	return out
}

// ChapterPrompt builds the base prompt for a chapter's illustration.
func ChapterPrompt(ch story.Chapter, refs []CharacterReference) string {
	prompt := ch.ImagePrompt
	if prompt == "" {
		prompt = fmt.Sprintf("Illustration for %s", ch.Title)
	}
	if len(refs) > 0 {
		descs := make([]string, len(refs))
		for i, r := range refs {
			descs[i] = r.Description
		}
		prompt += ", featuring " + strings.Join(descs, ", ")
	}
	if elems := VisualElements(ch.Content); len(elems) > 0 {
		prompt += ", showing " + strings.Join(elems, ", ")
	}
	return prompt
}
