// Package domain defines the core entities of the live-preview coordinator.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Generation: The monotonic tag identifying the current desired reload
//   - ScrollPosition: The viewport offsets preserved across re-renders
//   - Geometry, Canvas, RenderedPage: The output of one page render
//   - LoadError: The closed set of load failure variants
//   - PreviewSettings: Resolved configuration for serving and viewing
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
