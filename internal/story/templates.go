package story

import (
	_ "embed"
	"fmt"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var templatesYAML []byte

// Templates holds the tables behind template-based story writing.
type Templates struct {
	Arc           []string                 `yaml:"arc"`
	TitleSuffixes []TitleSuffix            `yaml:"title_suffixes"`
	Themes        []Theme                  `yaml:"themes"`
	Content       Content                  `yaml:"content"`
	Ages          map[string]AgeAdjustment `yaml:"ages"`

	StyleDescriptors       map[string]string `yaml:"style_descriptors"`
	DefaultStyleDescriptor string            `yaml:"default_style_descriptor"`

	Presets []Preset `yaml:"presets"`
}

type TitleSuffix struct {
	Keyword string `yaml:"keyword"`
	Suffix  string `yaml:"suffix"`
}

// Theme is matched when any of its keywords occurs in the prompt.
type Theme struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

type Content struct {
	Introduction        map[string]string `yaml:"introduction"`
	IntroductionDefault string            `yaml:"introduction_default"`
	Rising              string            `yaml:"rising"`
	ClimaxYoung         string            `yaml:"climax_young"`
	Climax              string            `yaml:"climax"`
	Resolution          string            `yaml:"resolution"`
}

type AgeAdjustment struct {
	Replace []Replacement `yaml:"replace"`
	Append  string        `yaml:"append"`
}

type Replacement struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// Preset is a ready-made story starting point.
type Preset struct {
	ID          string `yaml:"id" json:"id"`
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
	ArtStyle    string `yaml:"artStyle" json:"artStyle"`
}

// ParseTemplates decodes a template table document.
func ParseTemplates(data []byte) (*Templates, error) {
	var t Templates
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	if len(t.Arc) == 0 {
		return nil, fmt.Errorf("parse templates: arc is empty")
	}
	return &t, nil
}

// DefaultTemplates returns the built-in tables.
func DefaultTemplates() *Templates {
	t, err := ParseTemplates(templatesYAML)
	if err != nil {
		panic(err)
	}
	return t
}

// ChapterTitle returns "Chapter N: <arc title><suffix>".
func (t *Templates) ChapterTitle(n int, prompt string) string {
	base := fmt.Sprintf("Chapter %d", n)
	if n >= 1 && n <= len(t.Arc) {
		base = t.Arc[n-1]
	}
	lower := strings.ToLower(prompt)
	for _, s := range t.TitleSuffixes {
		if strings.Contains(lower, s.Keyword) {
			return fmt.Sprintf("Chapter %d: %s%s", n, base, s.Suffix)
		}
	}
	return fmt.Sprintf("Chapter %d: %s", n, base)
}

// ThemesFor lists the names of themes whose keywords appear in prompt, in table order.
func (t *Templates) ThemesFor(prompt string) []string {
	lower := strings.ToLower(prompt)
	var out []string
	for _, th := range t.Themes {
		for _, kw := range th.Keywords {
			if strings.Contains(lower, kw) {
				out = append(out, th.Name)
				break
			}
		}
	}
	return out
}

// ChapterContent writes chapter n of total according to where it falls in
// the story, then adjusts it for the reader's age group.
func (t *Templates) ChapterContent(n, total int, prompt, age string) string {
	progression := float64(n) / float64(total)

	var content string
	switch {
	case progression <= 0.25:
		content = t.introduction(prompt)
	case progression <= 0.5:
		content = t.Content.Rising
	case progression <= 0.75:
		if age == "3-5" {
			content = t.Content.ClimaxYoung
		} else {
			content = t.Content.Climax
		}
	default:
		content = t.Content.Resolution
	}
	return t.AdjustForAge(content, age)
}

func (t *Templates) introduction(prompt string) string {
	for _, theme := range t.ThemesFor(prompt) {
		if intro, ok := t.Content.Introduction[theme]; ok {
			return intro
		}
	}
	return t.Content.IntroductionDefault
}

// AdjustForAge applies the vocabulary swaps or appended text for an age group.
func (t *Templates) AdjustForAge(content, age string) string {
	adj, ok := t.Ages[age]
	if !ok {
		return content
	}
	for _, r := range adj.Replace {
		content = strings.ReplaceAll(content, r.From, r.To)
	}
	return content + adj.Append
}

// StyleDescriptor maps an art style to the phrase used in image prompts.
func (t *Templates) StyleDescriptor(artStyle string) string {
	if d, ok := t.StyleDescriptors[strings.ToLower(artStyle)]; ok {
		return d
	}
	return t.DefaultStyleDescriptor
}

// ImagePrompt builds the illustration prompt for one chapter.
func (t *Templates) ImagePrompt(title, content, artStyle string) string {
	return fmt.Sprintf("%s, %s, child-friendly, bright colors, engaging scene, book illustration, %s",
		t.StyleDescriptor(artStyle), title, truncateRunes(content, 100))
}

// Preset looks up a preset by id.
func (t *Templates) Preset(id string) (Preset, bool) {
	for _, p := range t.Presets {
		if p.ID == id {
			return p, true
		}
	}
	return Preset{}, false
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
