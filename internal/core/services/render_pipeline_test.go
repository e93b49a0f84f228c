package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/livepreview/internal/core/domain"
)

func openFake(t *testing.T, engine *fakeEngine, content string) *fakeDocument {
	t.Helper()
	doc, err := engine.Open(context.Background(), []byte(content))
	require.NoError(t, err)
	return doc.(*fakeDocument)
}

func neverStale(domain.Generation) bool { return false }

func TestNewRenderPipeline_DefaultsScale(t *testing.T) {
	p := NewRenderPipeline(domain.RenderOptions{})
	assert.Equal(t, domain.DefaultScale, p.Options().Scale)

	p = NewRenderPipeline(domain.RenderOptions{Scale: 2})
	assert.Equal(t, 2.0, p.Options().Scale)
}

func TestRenderPipeline_Render(t *testing.T) {
	engine := &fakeEngine{}
	doc := openFake(t, engine, "alpha\fbeta")
	p := NewRenderPipeline(domain.RenderOptions{Scale: 1.5})

	var got []domain.RenderedPage
	committed, err := p.Render(context.Background(), 7, doc, neverStale,
		func(gen domain.Generation, pages []domain.RenderedPage) (bool, error) {
			assert.Equal(t, domain.Generation(7), gen)
			got = pages
			return true, nil
		})

	require.NoError(t, err)
	assert.True(t, committed)
	require.Len(t, got, 2)
	assert.Equal(t, domain.Geometry{Width: 60, Height: 1, Scale: 1.5}, got[0].Geometry)
	assert.Equal(t, []string{"alpha"}, got[0].Lines)
	assert.Equal(t, []string{"beta"}, got[1].Lines)
	assert.Nil(t, got[0].Text, "text layer is off by default")
	assert.Equal(t, 1, engine.Released())
}

func TestRenderPipeline_ExtractsText(t *testing.T) {
	engine := &fakeEngine{}
	doc := openFake(t, engine, "hello live world")
	p := NewRenderPipeline(domain.RenderOptions{ExtractText: true, Workers: 1})

	var got []domain.RenderedPage
	_, err := p.Render(context.Background(), 0, doc, neverStale,
		func(_ domain.Generation, pages []domain.RenderedPage) (bool, error) {
			got = pages
			return true, nil
		})

	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Len(t, got[0].Text, 3)
	assert.Equal(t, "live", got[0].Text[1].Text)
	assert.Equal(t, 1, got[0].Text[1].Column)
}

func TestRenderPipeline_StaleGenerationIsNotCommitted(t *testing.T) {
	engine := &fakeEngine{paintDelay: func(int) time.Duration { return 5 * time.Millisecond }}
	doc := openFake(t, engine, "a\fb\fc")
	p := NewRenderPipeline(domain.RenderOptions{Workers: 1})

	var counter domain.GenerationCounter
	gen := counter.Current()
	go func() {
		time.Sleep(time.Millisecond)
		counter.Advance()
	}()

	committed, err := p.Render(context.Background(), gen, doc, counter.IsStale,
		func(domain.Generation, []domain.RenderedPage) (bool, error) {
			t.Error("stale generation must not be committed")
			return true, nil
		})

	require.NoError(t, err)
	assert.False(t, committed)
	assert.Equal(t, 1, engine.Released())
}

func TestRenderPipeline_PaintError(t *testing.T) {
	engine := &fakeEngine{paintErr: errors.New("out of ink")}
	doc := openFake(t, engine, "a\fb")
	p := NewRenderPipeline(domain.RenderOptions{})

	committed, err := p.Render(context.Background(), 0, doc, neverStale,
		func(domain.Generation, []domain.RenderedPage) (bool, error) {
			t.Error("failed render must not be committed")
			return true, nil
		})

	require.Error(t, err)
	assert.False(t, committed)
	assert.Contains(t, err.Error(), "out of ink")
	assert.Equal(t, domain.LoadTransient, domain.ClassifyLoadError(err))
	assert.Equal(t, 1, engine.Released())
}

func TestRenderPipeline_CancelledContextTagsError(t *testing.T) {
	engine := &fakeEngine{paintDelay: func(int) time.Duration { return time.Hour }}
	doc := openFake(t, engine, "a")
	p := NewRenderPipeline(domain.RenderOptions{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Render(ctx, 0, doc, neverStale,
		func(domain.Generation, []domain.RenderedPage) (bool, error) { return true, nil })

	require.Error(t, err)
	assert.Equal(t, domain.LoadCancelled, domain.ClassifyLoadError(err))
}

func TestRenderPipeline_EmptyDocument(t *testing.T) {
	engine := &fakeEngine{}
	doc := &fakeDocument{engine: engine}
	p := NewRenderPipeline(domain.RenderOptions{})

	var called bool
	committed, err := p.Render(context.Background(), 0, doc, neverStale,
		func(_ domain.Generation, pages []domain.RenderedPage) (bool, error) {
			called = true
			assert.Empty(t, pages)
			return true, nil
		})

	require.NoError(t, err)
	assert.True(t, committed)
	assert.True(t, called)
}

func TestRenderPipeline_Workers(t *testing.T) {
	p := NewRenderPipeline(domain.RenderOptions{Workers: 4})
	assert.Equal(t, 2, p.workers(2))
	assert.Equal(t, 4, p.workers(10))
	assert.Equal(t, 1, p.workers(0))
}
