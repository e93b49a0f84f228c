package mcp

import (
	"github.com/custodia-labs/livepreview/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
type Ports struct {
	// Serve tracks the served document and notifies viewers.
	Serve driving.ServeService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Serve == nil {
		return ErrMissingServeService
	}
	return nil
}
