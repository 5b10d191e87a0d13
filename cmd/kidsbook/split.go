package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dgallion1/kidsbook/internal/parser"
	"github.com/dgallion1/kidsbook/internal/segment"
)

type splitOutput struct {
	Title     string            `json:"title"`
	Strategy  segment.Strategy  `json:"strategy"`
	WordCount int               `json:"wordCount"`
	Chapters  []segment.Chapter `json:"chapters"`
}

func newSplitCmd() *cobra.Command {
	var (
		window    int
		minChars  int
		raw       bool
		pdftotext bool
	)
	def := segment.DefaultOptions()

	cmd := &cobra.Command{
		Use:   "split <file>",
		Short: "Split a manuscript into chapters",
		Long: `Extract the text of a manuscript and split it into chapters.

Headings such as "Chapter 1", "Part 2" or "Section 3" are used when the
text has more than one of them; otherwise the text is cut into fixed-size
word windows. The result is printed as JSON.`,
		Example: `  # Split a Word document
  kidsbook split story.docx

  # Smaller windows for a picture book
  kidsbook split --window 120 notes.txt`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if window <= 0 {
				return fmt.Errorf("--window must be positive, got %d", window)
			}
			if minChars < 0 {
				return fmt.Errorf("--min-chars must not be negative, got %d", minChars)
			}
			if !parser.IsSupportedExtension(args[0]) {
				return fmt.Errorf("%w: %s", parser.ErrUnsupported, parser.Ext(args[0]))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			ext, err := parser.Extract(f, args[0], parser.Options{
				PDFFallbackPdftotext: pdftotext,
				Raw:                  raw,
			})
			if err != nil {
				return fmt.Errorf("extract %s: %w", args[0], err)
			}

			res := segment.Segment(ext.Text, segment.Options{WindowWords: window, MinChars: minChars})
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(splitOutput{
				Title:     ext.Title,
				Strategy:  res.Strategy,
				WordCount: segment.CountWords(ext.Text),
				Chapters:  res.Chapters,
			})
		},
	}

	cmd.Flags().IntVar(&window, "window", def.WindowWords, "Words per chapter when no headings are found")
	cmd.Flags().IntVar(&minChars, "min-chars", def.MinChars, "Drop chapters with this many characters or fewer")
	cmd.Flags().BoolVar(&raw, "raw", false, "Skip text cleaning")
	cmd.Flags().BoolVar(&pdftotext, "pdftotext", true, "Fall back to the pdftotext binary for unreadable PDFs")
	return cmd
}
