// Package mcp exposes the serve side over the Model Context Protocol, so an
// agent editing the document can trigger and inspect reloads.
package mcp

import "errors"

// ErrMissingServeService is returned when the serve service is not provided.
var ErrMissingServeService = errors.New("mcp: serve service is required")
