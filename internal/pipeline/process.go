package pipeline

import (
	"bytes"
	"time"

	"github.com/dgallion1/kidsbook/internal/parser"
	"github.com/dgallion1/kidsbook/internal/segment"
)

const (
	FileSuccess = "success"
	FileError   = "error"
)

// ProcessedFile is the per-file record of an upload.
type ProcessedFile struct {
	OriginalName  string            `json:"originalName"`
	Size          int64             `json:"size"`
	Type          string            `json:"type"`
	Title         string            `json:"title,omitempty"`
	ExtractedText string            `json:"extractedText"`
	Status        string            `json:"status"`
	Error         string            `json:"error,omitempty"`
	WordCount     int               `json:"wordCount"`
	ProcessedAt   time.Time         `json:"processedAt"`
	Chapters      []segment.Chapter `json:"chapters"`
	Strategy      segment.Strategy  `json:"strategy,omitempty"`
}

// Options configures extraction and segmentation of uploads.
type Options struct {
	Extract parser.Options
	Segment segment.Options
}

// ProcessFile extracts, cleans and segments one uploaded file. Failures are
// reported in the returned record rather than as an error so one bad file
// never aborts a batch.
func ProcessFile(name string, data []byte, opts Options) ProcessedFile {
	pf := ProcessedFile{
		OriginalName: name,
		Size:         int64(len(data)),
		Type:         parser.Ext(name),
		Status:       FileSuccess,
		ProcessedAt:  time.Now().UTC(),
		Chapters:     []segment.Chapter{},
	}

	ext, err := parser.Extract(bytes.NewReader(data), name, opts.Extract)
	if err != nil {
		return FailedFile(name, pf.Size, err.Error())
	}

	res := segment.Segment(ext.Text, opts.Segment)
	pf.Title = ext.Title
	pf.ExtractedText = ext.Text
	pf.WordCount = segment.CountWords(ext.Text)
	pf.Chapters = res.Chapters
	pf.Strategy = res.Strategy
	return pf
}

// FailedFile is the record for a file that could not be processed.
func FailedFile(name string, size int64, msg string) ProcessedFile {
	return ProcessedFile{
		OriginalName: name,
		Size:         size,
		Type:         parser.Ext(name),
		Status:       FileError,
		Error:        msg,
		ProcessedAt:  time.Now().UTC(),
		Chapters:     []segment.Chapter{},
	}
}
