package tui

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/livepreview/internal/core/domain"
	"github.com/custodia-labs/livepreview/internal/core/ports/driving"
)

var _ driving.PreviewCoordinator = (*MockPreviewCoordinator)(nil)

// MockPreviewCoordinator records advance and reload calls.
type MockPreviewCoordinator struct {
	mu      sync.Mutex
	gen     domain.Generation
	reloads []domain.Generation
}

func (m *MockPreviewCoordinator) InitialLoad(_ context.Context) {}

func (m *MockPreviewCoordinator) Advance() domain.Generation {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gen++
	return m.gen
}

func (m *MockPreviewCoordinator) Reload(_ context.Context, gen domain.Generation, _ []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reloads = append(m.reloads, gen)
}

func (m *MockPreviewCoordinator) Status() domain.PreviewStatus { return domain.PreviewStatus{} }

func (m *MockPreviewCoordinator) Wait() {}

func (m *MockPreviewCoordinator) Reloads() []domain.Generation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Generation(nil), m.reloads...)
}

// MockReloadHandler records handled events.
type MockReloadHandler struct {
	events []domain.ReloadEvent
}

func (m *MockReloadHandler) Handle(_ context.Context, event domain.ReloadEvent) {
	m.events = append(m.events, event)
}

func TestPorts_Validate(t *testing.T) {
	t.Run("missing coordinator", func(t *testing.T) {
		assert.ErrorIs(t, (&Ports{}).Validate(), ErrMissingPreviewCoordinator)
	})

	t.Run("reload handler is optional", func(t *testing.T) {
		assert.NoError(t, (&Ports{Preview: &MockPreviewCoordinator{}}).Validate())
	})
}
