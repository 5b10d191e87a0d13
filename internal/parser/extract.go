package parser

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"
)

// ErrTooShort is returned when a document yields almost no usable text.
var ErrTooShort = errors.New("extracted text is too short or empty")

// Options tunes Extract.
type Options struct {
	PDFFallbackPdftotext bool
	MinChars             int  // Cleaned text shorter than this is rejected.
	Raw                  bool // Skip CleanText.
}

// Extraction is the plain-text form of one uploaded document.
type Extraction struct {
	Title string
	Text  string
}

// Extract parses r according to filename's extension and returns its
// normalized text.
func Extract(r io.Reader, filename string, opts Options) (*Extraction, error) {
	p, err := ForFile(filename)
	if err != nil {
		return nil, err
	}
	if pdf, ok := p.(*PDFParser); ok {
		pdf.FallbackPdftotext = opts.PDFFallbackPdftotext
	}

	tree, err := p.Parse(r, filename)
	if err != nil {
		return nil, err
	}

	text := tree.Flatten()
	if !opts.Raw {
		text = CleanText(text)
	}
	if utf8.RuneCountInString(strings.TrimSpace(text)) < opts.MinChars {
		return nil, fmt.Errorf("%w (%d characters)", ErrTooShort, utf8.RuneCountInString(text))
	}

	return &Extraction{Title: tree.Title, Text: text}, nil
}

var (
	whitespaceRe  = regexp.MustCompile(`\s+`)
	disallowedRe  = regexp.MustCompile(`[^\w\s.,!?;:'"()-]`)
	periodRe      = regexp.MustCompile(`\.\s*`)
	questionRe    = regexp.MustCompile(`\?\s*`)
	exclamationRe = regexp.MustCompile(`!\s*`)
)

// CleanText collapses whitespace to single spaces, strips characters outside
// word characters and basic punctuation, and puts one space after each
// sentence terminator.
func CleanText(s string) string {
	if s == "" {
		return ""
	}
	s = whitespaceRe.ReplaceAllString(s, " ")
	s = disallowedRe.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	s = periodRe.ReplaceAllString(s, ". ")
	s = questionRe.ReplaceAllString(s, "? ")
	s = exclamationRe.ReplaceAllString(s, "! ")
	return strings.TrimRight(s, " ")
}
