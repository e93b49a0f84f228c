package driven

import "github.com/custodia-labs/livepreview/internal/core/domain"

// Surface is the single visible rendering target.
type Surface interface {
	// Commit replaces all visible pages with pages, in the given order.
	// It is called at most once per generation.
	Commit(gen domain.Generation, pages []domain.RenderedPage) error

	// ShowStatus reports progress and terminal failures to the user.
	ShowStatus(status domain.PreviewStatus)
}

// Viewport exposes the scroll position of the surface.
type Viewport interface {
	// Position returns the current offsets.
	Position() domain.ScrollPosition

	// SetPosition scrolls to p, clamped to the content.
	SetPosition(p domain.ScrollPosition)

	// OnScrollSettled registers fn to run whenever the user stops scrolling.
	// Registering again replaces the previous callback.
	OnScrollSettled(fn func())
}
