// Package tui provides the terminal surface of the viewer.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/livepreview/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
type Ports struct {
	// Preview keeps the surface in sync with the document.
	Preview driving.PreviewCoordinator

	// Reload handles manual reloads. When nil, a manual reload skips
	// capturing the scroll position and goes straight to the coordinator.
	Reload driving.ReloadHandler
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Preview == nil {
		return ErrMissingPreviewCoordinator
	}
	return nil
}
