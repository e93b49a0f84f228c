package domain

import (
	"fmt"
	"time"
)

// Defaults for PreviewSettings.
const (
	DefaultServerAddress = "127.0.0.1:3000"
	DefaultWatchDir      = "./"
	DefaultDebounce      = 100 * time.Millisecond
	DefaultFetchRate     = 20.0
)

// ServeSettings configures the serving side.
type ServeSettings struct {
	// Address is the host:port the HTTP server binds.
	Address string

	// WatchDir is watched recursively for changes.
	WatchDir string

	// File is the document that is served and whose modification time is tracked.
	File string

	// Inline sends the new bytes with each notification instead of a bare reload.
	Inline bool

	// Debounce coalesces bursts of filesystem events.
	Debounce time.Duration

	// PollInterval re-checks the document on a timer. Zero disables polling.
	PollInterval time.Duration
}

// ViewerSettings configures the viewing side.
type ViewerSettings struct {
	// ServerAddress is the host:port of a running serve command.
	ServerAddress string

	// Scale is applied to each page's intrinsic size.
	Scale float64

	// ExtractText enables the text layer.
	ExtractText bool

	// DataDir holds the position database. Empty means ~/.livepreview/data.
	DataDir string

	// FetchRate caps document fetches per second.
	FetchRate float64
}

// PreviewSettings holds all resolved configuration.
type PreviewSettings struct {
	Serve  ServeSettings
	Viewer ViewerSettings
}

// DefaultPreviewSettings returns the settings used when nothing is configured.
func DefaultPreviewSettings() PreviewSettings {
	return PreviewSettings{
		Serve: ServeSettings{
			Address:  DefaultServerAddress,
			WatchDir: DefaultWatchDir,
			Debounce: DefaultDebounce,
		},
		Viewer: ViewerSettings{
			ServerAddress: DefaultServerAddress,
			Scale:         DefaultScale,
			FetchRate:     DefaultFetchRate,
		},
	}
}

// RenderOptions derives pipeline options from the viewer settings.
func (v ViewerSettings) RenderOptions() RenderOptions {
	opts := DefaultRenderOptions()
	if v.Scale > 0 {
		opts.Scale = v.Scale
	}
	opts.ExtractText = v.ExtractText
	return opts
}

// Validate checks the settings are usable.
func (s PreviewSettings) Validate() error {
	if s.Viewer.Scale <= 0 {
		return fmt.Errorf("%w: viewer scale must be positive, got %v", ErrInvalidInput, s.Viewer.Scale)
	}
	if s.Serve.Debounce < 0 || s.Serve.PollInterval < 0 {
		return fmt.Errorf("%w: intervals must not be negative", ErrInvalidInput)
	}
	if s.Viewer.FetchRate < 0 {
		return fmt.Errorf("%w: fetch rate must not be negative", ErrInvalidInput)
	}
	return nil
}
