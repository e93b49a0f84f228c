package services

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/livepreview/internal/core/domain"
	"github.com/custodia-labs/livepreview/internal/core/ports/driven"
)

// --- Fakes shared by the services tests ---

// fakeSource returns whatever fetch decides for each call.
type fakeSource struct {
	mu    sync.Mutex
	calls int
	fetch func(ctx context.Context, call int) ([]byte, error)
}

func (s *fakeSource) Fetch(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	s.calls++
	call := s.calls
	s.mu.Unlock()
	if s.fetch == nil {
		return []byte("fetched"), nil
	}
	return s.fetch(ctx, call)
}

func (s *fakeSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func staticSource(content string) *fakeSource {
	return &fakeSource{fetch: func(context.Context, int) ([]byte, error) {
		return []byte(content), nil
	}}
}

// fakeEngine splits documents into pages on form feeds.
// Content starting with "bad" fails to parse.
type fakeEngine struct {
	mu       sync.Mutex
	opened   int
	released int
	// paintDelay, when set, delays painting page i.
	paintDelay func(i int) time.Duration
	paintErr   error
}

func (e *fakeEngine) Open(_ context.Context, data []byte) (driven.Document, error) {
	if strings.HasPrefix(string(data), "bad") {
		return nil, fmt.Errorf("%w: unparseable", domain.ErrInvalidContent)
	}
	e.mu.Lock()
	e.opened++
	e.mu.Unlock()
	return &fakeDocument{engine: e, pages: strings.Split(string(data), "\f")}, nil
}

func (e *fakeEngine) Released() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.released
}

type fakeDocument struct {
	engine *fakeEngine
	pages  []string
	once   sync.Once
}

func (d *fakeDocument) PageCount() int { return len(d.pages) }

func (d *fakeDocument) Page(_ context.Context, index int) (driven.Page, error) {
	if index < 0 || index >= len(d.pages) {
		return nil, domain.ErrNotFound
	}
	return &fakePage{doc: d, index: index, text: d.pages[index]}, nil
}

func (d *fakeDocument) Release() error {
	d.once.Do(func() {
		d.engine.mu.Lock()
		d.engine.released++
		d.engine.mu.Unlock()
	})
	return nil
}

type fakePage struct {
	doc   *fakeDocument
	index int
	text  string
}

func (p *fakePage) Index() int { return p.index }

func (p *fakePage) Layout(scale float64) domain.Geometry {
	return domain.Geometry{Width: int(40 * scale), Height: 1, Scale: scale}
}

func (p *fakePage) Paint(ctx context.Context, canvas *domain.Canvas) error {
	if p.doc.engine.paintDelay != nil {
		select {
		case <-time.After(p.doc.engine.paintDelay(p.index)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if p.doc.engine.paintErr != nil {
		return p.doc.engine.paintErr
	}
	canvas.SetLine(0, p.text)
	return nil
}

func (p *fakePage) ExtractText(context.Context) iter.Seq2[domain.TextFragment, error] {
	return func(yield func(domain.TextFragment, error) bool) {
		for i, word := range strings.Fields(p.text) {
			if !yield(domain.TextFragment{Text: word, Column: i}, nil) {
				return
			}
		}
	}
}

type commitRecord struct {
	gen   domain.Generation
	pages []domain.RenderedPage
}

// fakeSurface records commits and status reports.
type fakeSurface struct {
	mu        sync.Mutex
	commits   []commitRecord
	statuses  []domain.PreviewStatus
	commitErr error
}

func (s *fakeSurface) Commit(gen domain.Generation, pages []domain.RenderedPage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.commitErr != nil {
		return s.commitErr
	}
	s.commits = append(s.commits, commitRecord{gen: gen, pages: pages})
	return nil
}

func (s *fakeSurface) ShowStatus(status domain.PreviewStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses = append(s.statuses, status)
}

func (s *fakeSurface) Commits() []commitRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]commitRecord(nil), s.commits...)
}

func (s *fakeSurface) Statuses() []domain.PreviewStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.PreviewStatus(nil), s.statuses...)
}

// fakeViewport holds a position and the scroll-settled callback.
type fakeViewport struct {
	mu       sync.Mutex
	pos      domain.ScrollPosition
	restored []domain.ScrollPosition
	settled  func()
}

func (v *fakeViewport) Position() domain.ScrollPosition {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.pos
}

func (v *fakeViewport) SetPosition(p domain.ScrollPosition) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pos = p
	v.restored = append(v.restored, p)
}

func (v *fakeViewport) OnScrollSettled(fn func()) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.settled = fn
}

// scroll moves the viewport as a user would and fires scroll-settled.
func (v *fakeViewport) scroll(p domain.ScrollPosition) {
	v.mu.Lock()
	v.pos = p
	fn := v.settled
	v.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (v *fakeViewport) Restored() []domain.ScrollPosition {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]domain.ScrollPosition(nil), v.restored...)
}

// fakePositions is a map-backed position store.
type fakePositions struct {
	mu     sync.Mutex
	values map[string]string
	setErr error
}

func newFakePositions() *fakePositions {
	return &fakePositions{values: make(map[string]string)}
}

func (p *fakePositions) Get(_ context.Context, key string) (string, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.values[key]
	return v, ok, nil
}

func (p *fakePositions) Set(_ context.Context, key, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.setErr != nil {
		return p.setErr
	}
	p.values[key] = value
	return nil
}

// fakeBroadcaster records published changes.
type fakeBroadcaster struct {
	mu        sync.Mutex
	published []domain.DocumentChange
	clients   int
}

func (b *fakeBroadcaster) Publish(change domain.DocumentChange) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = append(b.published, change)
}

func (b *fakeBroadcaster) Clients() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.clients
}

func (b *fakeBroadcaster) Published() []domain.DocumentChange {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]domain.DocumentChange(nil), b.published...)
}

// fakeNotifier replays events, then blocks until ctx ends.
type fakeNotifier struct {
	events []domain.ReloadEvent
	err    error
}

func (n *fakeNotifier) Listen(ctx context.Context, handle func(context.Context, domain.ReloadEvent)) error {
	for _, ev := range n.events {
		handle(ctx, ev)
	}
	if n.err != nil {
		return n.err
	}
	<-ctx.Done()
	return ctx.Err()
}

// fakeWatcher fires onChange a fixed number of times.
type fakeWatcher struct {
	fires int
	err   error
}

func (w *fakeWatcher) Watch(_ context.Context, onChange func()) error {
	for i := 0; i < w.fires; i++ {
		onChange()
	}
	return w.err
}

func (w *fakeWatcher) Close() error { return nil }

var errConnRefused = errors.New("connection refused")

// Ensure fakes implement interfaces.
var (
	_ driven.DocumentSource = (*fakeSource)(nil)
	_ driven.RenderEngine   = (*fakeEngine)(nil)
	_ driven.TextExtractor  = (*fakePage)(nil)
	_ driven.Surface        = (*fakeSurface)(nil)
	_ driven.Viewport       = (*fakeViewport)(nil)
	_ driven.PositionStore  = (*fakePositions)(nil)
	_ driven.Broadcaster    = (*fakeBroadcaster)(nil)
	_ driven.ReloadNotifier = (*fakeNotifier)(nil)
	_ driven.ChangeWatcher  = (*fakeWatcher)(nil)
)
