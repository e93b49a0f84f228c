package textdoc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/custodia-labs/livepreview/internal/core/domain"
	"github.com/custodia-labs/livepreview/internal/core/ports/driven"
)

// ErrReleased is returned when pages are requested from a released document.
var ErrReleased = errors.New("textdoc: document released")

// Ensure Engine implements the interface.
var _ driven.RenderEngine = (*Engine)(nil)

// Engine opens text and HTML documents.
type Engine struct{}

// New creates an engine.
func New() *Engine {
	return &Engine{}
}

// Open parses data into pages.
func (e *Engine) Open(ctx context.Context, data []byte) (driven.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if i := bytes.IndexByte(data, 0); i >= 0 {
		return nil, fmt.Errorf("%w: NUL byte at offset %d", domain.ErrInvalidContent, i)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: not valid UTF-8", domain.ErrInvalidContent)
	}

	text := strings.ReplaceAll(string(data), "\r\n", "\n")

	var pages [][]string
	if looksLikeHTML(text) {
		var err error
		pages, err = htmlPages(text)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidContent, err)
		}
	} else {
		pages = textPages(text)
	}

	return &Document{pages: pages}, nil
}

// textPages splits plain text on form feeds.
func textPages(text string) [][]string {
	raw := strings.Split(text, "\f")
	pages := make([][]string, 0, len(raw))
	for _, page := range raw {
		page = strings.TrimPrefix(page, "\n")
		page = strings.TrimSuffix(page, "\n")
		pages = append(pages, strings.Split(page, "\n"))
	}
	return pages
}

// Document is an opened document.
type Document struct {
	pages [][]string

	mu       sync.Mutex
	released bool
}

// PageCount returns the number of pages.
func (d *Document) PageCount() int {
	return len(d.pages)
}

// Page returns page index.
func (d *Document) Page(ctx context.Context, index int) (driven.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.released {
		return nil, ErrReleased
	}
	if index < 0 || index >= len(d.pages) {
		return nil, fmt.Errorf("page %d of %d: %w", index, len(d.pages), domain.ErrNotFound)
	}
	return newPage(index, d.pages[index]), nil
}

// Release drops the parsed pages. Pages already handed out stay usable.
func (d *Document) Release() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.released = true
	return nil
}
