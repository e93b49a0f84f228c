// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/livepreview/internal/core/domain"
)

// PagesCommitted replaces everything on screen with a new generation's pages.
type PagesCommitted struct {
	Generation domain.Generation
	Pages      []domain.RenderedPage
}

// StatusChanged carries a progress report from the coordinator.
type StatusChanged struct {
	Status domain.PreviewStatus
}

// PositionRequested asks the view to scroll to a restored position.
type PositionRequested struct {
	Position domain.ScrollPosition
}

// ScrollSettled fires after a quiet period following a scroll.
// Seq identifies the scroll it belongs to; older ones are ignored.
type ScrollSettled struct {
	Seq int
}

// ReloadRequested asks for a manual re-fetch of the document.
type ReloadRequested struct{}

// Quit signals the application should exit.
type Quit struct{}
