package services

import (
	"fmt"
	"strconv"
	"time"

	"github.com/custodia-labs/livepreview/internal/core/domain"
	"github.com/custodia-labs/livepreview/internal/core/ports/driven"
	"github.com/custodia-labs/livepreview/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyServerAddress = "server.address"
	keyWatchDir      = "serve.watch_dir"
	keyServeFile     = "serve.file"
	keyServeInline   = "serve.inline"
	keyDebounceMS    = "serve.debounce_ms"
	keyPollMS        = "serve.poll_ms"
	keyViewerScale   = "viewer.scale"
	keyExtractText   = "viewer.extract_text"
	keyDataDir       = "viewer.data_dir"
	keyFetchRate     = "viewer.fetch_rate"
)

type settingKind int

const (
	kindString settingKind = iota
	kindBool
	kindInt
	kindFloat
)

// settingKeys lists the recognised keys in display order.
var settingKeys = []struct {
	key  string
	kind settingKind
}{
	{keyServerAddress, kindString},
	{keyWatchDir, kindString},
	{keyServeFile, kindString},
	{keyServeInline, kindBool},
	{keyDebounceMS, kindInt},
	{keyPollMS, kindInt},
	{keyViewerScale, kindFloat},
	{keyExtractText, kindBool},
	{keyDataDir, kindString},
	{keyFetchRate, kindFloat},
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.PreviewSettings, error) {
	defaults := domain.DefaultPreviewSettings()

	settings := &domain.PreviewSettings{
		Serve: domain.ServeSettings{
			Address:      s.getString(keyServerAddress, defaults.Serve.Address),
			WatchDir:     s.getString(keyWatchDir, defaults.Serve.WatchDir),
			File:         s.configStore.GetString(keyServeFile),
			Inline:       s.getBool(keyServeInline, defaults.Serve.Inline),
			Debounce:     s.getMillis(keyDebounceMS, defaults.Serve.Debounce),
			PollInterval: s.getMillis(keyPollMS, defaults.Serve.PollInterval),
		},
		Viewer: domain.ViewerSettings{
			ServerAddress: s.getString(keyServerAddress, defaults.Viewer.ServerAddress),
			Scale:         s.getFloat(keyViewerScale, defaults.Viewer.Scale),
			ExtractText:   s.getBool(keyExtractText, defaults.Viewer.ExtractText),
			DataDir:       s.configStore.GetString(keyDataDir),
			FetchRate:     s.getFloat(keyFetchRate, defaults.Viewer.FetchRate),
		},
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.PreviewSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	values := []struct {
		key   string
		value any
	}{
		{keyServerAddress, settings.Serve.Address},
		{keyWatchDir, settings.Serve.WatchDir},
		{keyServeFile, settings.Serve.File},
		{keyServeInline, settings.Serve.Inline},
		{keyDebounceMS, int(settings.Serve.Debounce / time.Millisecond)},
		{keyPollMS, int(settings.Serve.PollInterval / time.Millisecond)},
		{keyViewerScale, settings.Viewer.Scale},
		{keyExtractText, settings.Viewer.ExtractText},
		{keyDataDir, settings.Viewer.DataDir},
		{keyFetchRate, settings.Viewer.FetchRate},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	return nil
}

// Set parses value according to the key's type and stores it.
func (s *SettingsService) Set(key, value string) error {
	for _, k := range settingKeys {
		if k.key != key {
			continue
		}

		var parsed any
		var err error
		switch k.kind {
		case kindBool:
			parsed, err = strconv.ParseBool(value)
		case kindInt:
			parsed, err = strconv.Atoi(value)
		case kindFloat:
			parsed, err = strconv.ParseFloat(value, 64)
		default:
			parsed = value
		}
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %v", domain.ErrInvalidInput, key, value, err)
		}

		if err := s.configStore.Set(key, parsed); err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
		return nil
	}
	return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
}

// Value returns the resolved value of key, formatted for display.
func (s *SettingsService) Value(key string) (string, error) {
	settings, err := s.Get()
	if err != nil {
		return "", err
	}

	switch key {
	case keyServerAddress:
		return settings.Viewer.ServerAddress, nil
	case keyWatchDir:
		return settings.Serve.WatchDir, nil
	case keyServeFile:
		return settings.Serve.File, nil
	case keyServeInline:
		return strconv.FormatBool(settings.Serve.Inline), nil
	case keyDebounceMS:
		return strconv.FormatInt(settings.Serve.Debounce.Milliseconds(), 10), nil
	case keyPollMS:
		return strconv.FormatInt(settings.Serve.PollInterval.Milliseconds(), 10), nil
	case keyViewerScale:
		return strconv.FormatFloat(settings.Viewer.Scale, 'g', -1, 64), nil
	case keyExtractText:
		return strconv.FormatBool(settings.Viewer.ExtractText), nil
	case keyDataDir:
		return settings.Viewer.DataDir, nil
	case keyFetchRate:
		return strconv.FormatFloat(settings.Viewer.FetchRate, 'g', -1, 64), nil
	}
	return "", fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
}

// Keys returns every recognised config key in display order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, len(settingKeys))
	for i, k := range settingKeys {
		keys[i] = k.key
	}
	return keys
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.PreviewSettings {
	return domain.DefaultPreviewSettings()
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getMillis(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return time.Duration(val) * time.Millisecond
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	val := s.configStore.GetFloat(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}
