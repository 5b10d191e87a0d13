// Package gdocs imports Google Docs as plain text and segments them into chapters.
package gdocs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dgallion1/kidsbook/internal/parser"
	"github.com/dgallion1/kidsbook/internal/segment"
)

// ErrNotFound is returned when the document does not exist or is not shared
// with the token's owner.
var ErrNotFound = errors.New("document not found")

// maxDocumentBytes caps how much of an export is read.
const maxDocumentBytes = 20 << 20

// Client talks to the Google Docs export endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	segOpts    segment.Options
	now        func() time.Time
}

func NewClient(baseURL string, segOpts segment.Options) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		segOpts: segOpts,
		now:     time.Now,
	}
}

// Document is an imported Google Doc.
type Document struct {
	Title       string            `json:"title"`
	Content     string            `json:"content"`
	Chapters    []segment.Chapter `json:"chapters"`
	Strategy    segment.Strategy  `json:"strategy"`
	Source      string            `json:"source"`
	ProcessedAt time.Time         `json:"processedAt"`
}

// Export downloads the plain-text export of a document.
func (c *Client) Export(ctx context.Context, docID, token string) (string, error) {
	u := c.baseURL + "/document/d/" + url.PathEscape(docID) + "/export?format=txt"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("export document: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("%w: %s", ErrNotFound, docID)
	}
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("export document %s: status %d: %s", docID, resp.StatusCode, string(respBody))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	if err != nil {
		return "", fmt.Errorf("read export: %w", err)
	}
	return string(body), nil
}

// Import exports a document, cleans its text and splits it into chapters.
// The first non-empty line of the export is used as the title.
func (c *Client) Import(ctx context.Context, docID, token string) (*Document, error) {
	raw, err := c.Export(ctx, docID, token)
	if err != nil {
		return nil, err
	}
	raw = strings.TrimPrefix(raw, "\ufeff")

	title := "Imported Google Doc"
	for _, line := range strings.Split(raw, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			title = line
			break
		}
	}

	content := parser.CleanText(raw)
	res := segment.Segment(content, c.segOpts)
	return &Document{
		Title:       title,
		Content:     content,
		Chapters:    res.Chapters,
		Strategy:    res.Strategy,
		Source:      "google-docs",
		ProcessedAt: c.now().UTC(),
	}, nil
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
