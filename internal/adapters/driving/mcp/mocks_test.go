package mcp

import (
	"context"

	"github.com/custodia-labs/livepreview/internal/core/domain"
	"github.com/custodia-labs/livepreview/internal/core/ports/driving"
)

var _ driving.ServeService = (*mockServeService)(nil)

// mockServeService is a mock implementation of driving.ServeService.
type mockServeService struct {
	status  domain.ServeStatus
	changed bool
	err     error

	checks int
	forced int
}

func (m *mockServeService) Check(_ context.Context) (bool, error) {
	m.checks++
	return m.changed, m.err
}

func (m *mockServeService) ForceReload(_ context.Context) error {
	m.forced++
	return m.err
}

func (m *mockServeService) Status() domain.ServeStatus {
	return m.status
}
