// Package services implements the driving port interfaces.
// Services contain the core coordination logic and orchestrate
// calls to driven ports (adapters).
//
// The viewer side is built from the Coordinator, which owns the generation
// counter and the active load session, the RenderPipeline, the ReloadTrigger
// and the PositionKeeper. The serve side is the ChangeDetector and the Poller.
//
// Services are pure Go with no CGO or external dependencies.
package services
