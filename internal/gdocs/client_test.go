package gdocs

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dgallion1/kidsbook/internal/segment"
)

func newTestServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/document/d/doc-123/export" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("format"); got != "txt" {
			t.Errorf("expected format=txt, got %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("expected bearer token, got %q", got)
		}
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestImport(t *testing.T) {
	body := "\ufeffThe Fox and the Owl\r\n\r\n" +
		"Chapter 1\r\n" + strings.Repeat("The fox ran across the field. ", 5) + "\r\n" +
		"Chapter 2\r\n" + strings.Repeat("The owl hooted from the tree. ", 5)
	srv := newTestServer(t, http.StatusOK, body)

	c := NewClient(srv.URL+"/", segment.DefaultOptions())
	defer c.Close()

	doc, err := c.Import(context.Background(), "doc-123", "tok")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "The Fox and the Owl" {
		t.Errorf("expected title from first line, got %q", doc.Title)
	}
	if doc.Source != "google-docs" {
		t.Errorf("expected source google-docs, got %q", doc.Source)
	}
	if doc.Strategy != segment.StrategyChapter || len(doc.Chapters) != 2 {
		t.Fatalf("expected 2 chapter-marked chapters, got %d (%s)", len(doc.Chapters), doc.Strategy)
	}
	if strings.Contains(doc.Content, "\r") || strings.Contains(doc.Content, "  ") {
		t.Error("expected cleaned content")
	}
	if doc.ProcessedAt.IsZero() {
		t.Error("expected processedAt to be set")
	}
}

func TestImport_NotFound(t *testing.T) {
	srv := newTestServer(t, http.StatusNotFound, "nope")
	_, err := NewClient(srv.URL, segment.DefaultOptions()).Import(context.Background(), "doc-123", "tok")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestImport_Forbidden(t *testing.T) {
	srv := newTestServer(t, http.StatusForbidden, "no access")
	_, err := NewClient(srv.URL, segment.DefaultOptions()).Import(context.Background(), "doc-123", "tok")
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("expected status error, got %v", err)
	}
	if !strings.Contains(err.Error(), "status 403") || !strings.Contains(err.Error(), "no access") {
		t.Errorf("expected status and body in error, got %v", err)
	}
}

func TestImport_EmptyDocument(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, "")
	doc, err := NewClient(srv.URL, segment.DefaultOptions()).Import(context.Background(), "doc-123", "tok")
	if err != nil {
		t.Fatal(err)
	}
	if doc.Title != "Imported Google Doc" || len(doc.Chapters) != 0 {
		t.Errorf("unexpected document %+v", doc)
	}
}
