// ABOUTME: Page sources for saved HTML files and in-memory readers
// ABOUTME: Unreachable sources report ErrNotReachable
package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/harperreed/closex/models"
)

// ErrNotReachable means the page could not be loaded at all.
var ErrNotReachable = errors.New("page not reachable")

// FileSource reads a saved page from disk.
type FileSource struct {
	Path string
}

func (f FileSource) Fetch(ctx context.Context) (*models.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotReachable, err)
	}
	url := documentURL(string(data))
	if url == "" {
		abs, err := filepath.Abs(f.Path)
		if err != nil {
			abs = f.Path
		}
		url = "file://" + filepath.ToSlash(abs)
	}
	return &models.Page{URL: url, HTML: string(data)}, nil
}

func (f FileSource) Describe() string {
	return f.Path
}

// ReaderSource reads a page from an arbitrary stream such as stdin or an
// upload. An empty URL is filled from the document when it names itself.
type ReaderSource struct {
	Reader io.Reader
	URL    string
	Name   string
}

func (r ReaderSource) Fetch(ctx context.Context) (*models.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.Reader == nil {
		return nil, ErrNotReachable
	}
	data, err := io.ReadAll(r.Reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotReachable, err)
	}
	url := r.URL
	if url == "" {
		url = documentURL(string(data))
	}
	return &models.Page{URL: url, HTML: string(data)}, nil
}

func (r ReaderSource) Describe() string {
	switch {
	case r.Name != "":
		return r.Name
	case r.URL != "":
		return r.URL
	}
	return "stdin"
}

// documentURL returns the canonical or og:url of a saved page, if present.
func documentURL(doc string) string {
	d, err := goquery.NewDocumentFromReader(strings.NewReader(doc))
	if err != nil {
		return ""
	}
	if href, ok := d.Find(`link[rel="canonical"]`).First().Attr("href"); ok && strings.TrimSpace(href) != "" {
		return strings.TrimSpace(href)
	}
	if content, ok := d.Find(`meta[property="og:url"]`).First().Attr("content"); ok {
		return strings.TrimSpace(content)
	}
	return ""
}
