package httpserver

import "errors"

// ErrMissingServeService is returned when the serve service is not provided.
var ErrMissingServeService = errors.New("httpserver: serve service is required")

// ErrMissingHub is returned when the broadcast hub is not provided.
var ErrMissingHub = errors.New("httpserver: broadcast hub is required")

// ErrHubClosed is returned when a client connects after the hub shut down.
var ErrHubClosed = errors.New("httpserver: hub closed")
