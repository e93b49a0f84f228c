// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Viewer Interfaces
//
//   - DocumentSource: Fetches the current document bytes (cache-busted)
//   - RenderEngine: Parses bytes into pages that can be laid out and painted
//   - ReloadNotifier: Delivers "reload requested" events from the serve side
//   - PositionStore: Durable key/value storage for the scroll position
//   - Surface: The visible rendering target, replaced atomically on commit
//   - Viewport: Reads and restores the scroll position, reports scroll-settled
//
// # Serve Interfaces
//
//   - ChangeWatcher: Debounced filesystem change notifications
//   - Broadcaster: Fans a document change out to connected viewers
//   - ConfigStore: Application configuration
//
// # Optional Capabilities
//
//   - TextExtractor: Implemented by pages that can produce a text layer.
//     The pipeline checks for it with a type assertion.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
