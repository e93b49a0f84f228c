package driven

import (
	"context"
	"iter"

	"github.com/custodia-labs/livepreview/internal/core/domain"
)

// RenderEngine parses document bytes into pages.
type RenderEngine interface {
	// Open parses data. A parse failure must wrap domain.ErrInvalidContent.
	Open(ctx context.Context, data []byte) (Document, error)
}

// Document is an opened document handle.
type Document interface {
	// PageCount returns the number of pages.
	PageCount() int

	// Page returns the page at index (zero-based).
	Page(ctx context.Context, index int) (Page, error)

	// Release frees resources held by the document.
	// It is idempotent; calls after the first are no-ops.
	Release() error
}

// Page is one page of an opened document.
type Page interface {
	// Index returns the zero-based page index.
	Index() int

	// Layout computes the page geometry at the given scale.
	Layout(scale float64) domain.Geometry

	// Paint draws the page onto canvas, which is sized to Layout's geometry.
	Paint(ctx context.Context, canvas *domain.Canvas) error
}

// TextExtractor is implemented by pages that can produce a text layer.
type TextExtractor interface {
	// ExtractText lazily yields the text fragments of the page.
	// Iteration stops at the first non-nil error.
	ExtractText(ctx context.Context) iter.Seq2[domain.TextFragment, error]
}
