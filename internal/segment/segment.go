package segment

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Chapter is one chapter-sized fragment of an imported document.
type Chapter struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	WordCount int    `json:"wordCount"`
}

// Strategy names how a document was divided.
type Strategy string

const (
	StrategyChapter  Strategy = "chapter"
	StrategyPart     Strategy = "part"
	StrategySection  Strategy = "section"
	StrategyNumbered Strategy = "numbered"
	StrategyWindow   Strategy = "window"
)

// Marker is a candidate chapter boundary pattern.
type Marker struct {
	Strategy Strategy
	Pattern  *regexp.Regexp
}

// Markers are tried in order; the first one matching more than once wins.
var Markers = []Marker{
	{Strategy: StrategyChapter, Pattern: regexp.MustCompile(`(?i)chapter\s+\d+`)},
	{Strategy: StrategyPart, Pattern: regexp.MustCompile(`(?i)part\s+\d+`)},
	{Strategy: StrategySection, Pattern: regexp.MustCompile(`(?i)section\s+\d+`)},
	{Strategy: StrategyNumbered, Pattern: regexp.MustCompile(`\d+\.`)},
}

// Options controls segmentation.
type Options struct {
	WindowWords int // Words per chunk when no marker applies.
	MinChars    int // Fragments must be longer than this to be kept.
}

// DefaultOptions returns the standard 500-word window and 50-character floor.
func DefaultOptions() Options {
	return Options{
		WindowWords: 500,
		MinChars:    50,
	}
}

// Result is the outcome of one segmentation run.
type Result struct {
	Chapters []Chapter `json:"chapters"`
	Strategy Strategy  `json:"strategy"`
}

// Split segments text with the default options.
func Split(text string) []Chapter {
	return Segment(text, DefaultOptions()).Chapters
}

// Segment divides text into chapters, preferring explicit heading markers and
// falling back to fixed-size word windows.
func Segment(text string, opts Options) Result {
	def := DefaultOptions()
	if opts.WindowWords <= 0 {
		opts.WindowWords = def.WindowWords
	}
	if opts.MinChars <= 0 {
		opts.MinChars = def.MinChars
	}

	fragments, strategy := splitByMarkers(text)
	if fragments == nil {
		fragments = splitByWords(text, opts.WindowWords)
		strategy = StrategyWindow
	}

	chapters := make([]Chapter, 0, len(fragments))
	for _, frag := range fragments {
		content := strings.TrimSpace(frag)
		if utf8.RuneCountInString(content) <= opts.MinChars {
			continue
		}
		n := len(chapters) + 1
		chapters = append(chapters, Chapter{
			ID:        fmt.Sprintf("chapter-%d", n),
			Title:     fmt.Sprintf("Chapter %d", n),
			Content:   content,
			WordCount: CountWords(content),
		})
	}

	return Result{Chapters: chapters, Strategy: strategy}
}

// splitByMarkers returns the text between consecutive matches of the first
// marker that occurs more than once. Text before the first match is dropped.
// Returns nil when no marker qualifies.
func splitByMarkers(text string) ([]string, Strategy) {
	for _, m := range Markers {
		locs := m.Pattern.FindAllStringIndex(text, -1)
		if len(locs) < 2 {
			continue
		}
		parts := make([]string, 0, len(locs))
		for i, loc := range locs {
			end := len(text)
			if i+1 < len(locs) {
				end = locs[i+1][0]
			}
			parts = append(parts, text[loc[1]:end])
		}
		return parts, m.Strategy
	}
	return nil, ""
}

// splitByWords groups whitespace tokens into consecutive windows of size words.
func splitByWords(text string, size int) []string {
	words := strings.Fields(text)
	var parts []string
	for i := 0; i < len(words); i += size {
		end := i + size
		if end > len(words) {
			end = len(words)
		}
		parts = append(parts, strings.Join(words[i:end], " "))
	}
	return parts
}
