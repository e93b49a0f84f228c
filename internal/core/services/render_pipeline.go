package services

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/custodia-labs/livepreview/internal/core/domain"
	"github.com/custodia-labs/livepreview/internal/core/ports/driven"
	"github.com/custodia-labs/livepreview/internal/logger"
)

// CommitFunc atomically replaces the visible pages when gen is still current.
// It reports whether the pages were committed.
type CommitFunc func(gen domain.Generation, pages []domain.RenderedPage) (bool, error)

// RenderPipeline drives a render engine document through layout, paint,
// optional text extraction and the final ordered commit.
type RenderPipeline struct {
	opts domain.RenderOptions
}

// NewRenderPipeline creates a pipeline with the given options.
// A non-positive scale falls back to domain.DefaultScale.
func NewRenderPipeline(opts domain.RenderOptions) *RenderPipeline {
	if opts.Scale <= 0 {
		opts.Scale = domain.DefaultScale
	}
	return &RenderPipeline{opts: opts}
}

// Options returns the pipeline options.
func (p *RenderPipeline) Options() domain.RenderOptions {
	return p.opts
}

// Render paints every page of doc concurrently, then commits them in page
// order if gen is still current. The document is released on every path.
//
// A stale generation is not an error: Render returns false and a nil error.
func (p *RenderPipeline) Render(
	ctx context.Context,
	gen domain.Generation,
	doc driven.Document,
	isStale func(domain.Generation) bool,
	commit CommitFunc,
) (bool, error) {
	defer func() {
		if err := doc.Release(); err != nil {
			logger.Debug("render: releasing document for generation %d: %v", gen, err)
		}
	}()

	count := doc.PageCount()
	pages := make([]domain.RenderedPage, count)
	errs := make([]error, count)

	sem := make(chan struct{}, p.workers(count))
	var wg sync.WaitGroup
	for i := 0; i < count; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if isStale(gen) {
				errs[i] = domain.ErrCancelled
				return
			}
			pages[i], errs[i] = p.renderPage(ctx, doc, i)
		}()
	}
	wg.Wait()

	// Paints finish in any order; nothing reaches the surface until all of
	// them are done and the generation is confirmed current.
	if isStale(gen) {
		logger.Debug("render: discarding %d pages of outdated generation %d", count, gen)
		return false, nil
	}
	if err := errors.Join(errs...); err != nil {
		return false, err
	}

	return commit(gen, pages)
}

func (p *RenderPipeline) workers(pages int) int {
	n := p.opts.Workers
	if n <= 0 {
		n = runtime.NumCPU()
	}
	if n > pages {
		n = pages
	}
	if n < 1 {
		n = 1
	}
	return n
}

// renderPage lays out, paints and optionally extracts the text of one page.
// Paint and text extraction run concurrently.
func (p *RenderPipeline) renderPage(ctx context.Context, doc driven.Document, index int) (domain.RenderedPage, error) {
	page, err := doc.Page(ctx, index)
	if err != nil {
		return domain.RenderedPage{}, fmt.Errorf("page %d: %w", index, cancelledIfDone(ctx, err))
	}

	geom := page.Layout(p.opts.Scale)
	canvas := domain.NewCanvas(geom)

	var (
		text    []domain.TextFragment
		textErr error
		wg      sync.WaitGroup
	)
	if extractor, ok := page.(driven.TextExtractor); ok && p.opts.ExtractText {
		wg.Add(1)
		go func() {
			defer wg.Done()
			text, textErr = collectText(ctx, extractor)
		}()
	}

	paintErr := page.Paint(ctx, canvas)
	wg.Wait()

	if paintErr != nil {
		return domain.RenderedPage{}, fmt.Errorf("painting page %d: %w", index, cancelledIfDone(ctx, paintErr))
	}
	if textErr != nil {
		return domain.RenderedPage{}, fmt.Errorf("text layer of page %d: %w", index, cancelledIfDone(ctx, textErr))
	}

	return domain.RenderedPage{
		Index:    index,
		Geometry: geom,
		Lines:    canvas.Lines(),
		Text:     text,
	}, nil
}

func collectText(ctx context.Context, extractor driven.TextExtractor) ([]domain.TextFragment, error) {
	text := []domain.TextFragment{}
	for frag, err := range extractor.ExtractText(ctx) {
		if err != nil {
			return nil, err
		}
		text = append(text, frag)
	}
	return text, nil
}

// cancelledIfDone tags err as a cancellation when ctx has ended.
func cancelledIfDone(ctx context.Context, err error) error {
	if ctx.Err() != nil && !errors.Is(err, domain.ErrCancelled) {
		return fmt.Errorf("%w: %v", domain.ErrCancelled, err)
	}
	return err
}
