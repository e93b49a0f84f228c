package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/livepreview/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/livepreview/internal/core/domain"
)

func TestNewSettingsService(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)

	require.NotNil(t, service)
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	settings, err := service.Get()

	require.NoError(t, err)
	require.NotNil(t, settings)
	assert.Equal(t, service.GetDefaults(), *settings)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("server.address", "0.0.0.0:8080")
	_ = store.Set("serve.inline", true)
	_ = store.Set("serve.debounce_ms", 250)
	_ = store.Set("viewer.scale", 1.5)
	_ = store.Set("viewer.fetch_rate", int64(5))

	service := NewSettingsService(store)

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:8080", settings.Serve.Address)
	assert.Equal(t, "0.0.0.0:8080", settings.Viewer.ServerAddress)
	assert.True(t, settings.Serve.Inline)
	assert.Equal(t, 250*time.Millisecond, settings.Serve.Debounce)
	assert.Equal(t, 1.5, settings.Viewer.Scale)
	assert.Equal(t, 5.0, settings.Viewer.FetchRate)
}

func TestSettingsService_Get_InvalidValuesReturnDefaults(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("viewer.scale", "huge")
	_ = store.Set("serve.debounce_ms", -5)

	service := NewSettingsService(store)

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultScale, settings.Viewer.Scale)
	assert.Equal(t, domain.DefaultDebounce, settings.Serve.Debounce)
}

func TestSettingsService_Save(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)

	settings := service.GetDefaults()
	settings.Serve.File = "out/report.txt"
	settings.Serve.PollInterval = 2 * time.Second
	settings.Viewer.ExtractText = true

	require.NoError(t, service.Save(&settings))

	assert.Equal(t, "out/report.txt", store.GetString("serve.file"))
	assert.Equal(t, 2000, store.GetInt("serve.poll_ms"))
	assert.True(t, store.GetBool("viewer.extract_text"))

	got, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, settings, *got)
}

func TestSettingsService_Save_RejectsInvalid(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	settings := service.GetDefaults()
	settings.Viewer.Scale = -1

	assert.ErrorIs(t, service.Save(&settings), domain.ErrInvalidInput)
}

func TestSettingsService_Set(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)

	require.NoError(t, service.Set("serve.inline", "true"))
	require.NoError(t, service.Set("serve.debounce_ms", "50"))
	require.NoError(t, service.Set("viewer.scale", "2"))
	require.NoError(t, service.Set("serve.watch_dir", "docs"))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.True(t, settings.Serve.Inline)
	assert.Equal(t, 50*time.Millisecond, settings.Serve.Debounce)
	assert.Equal(t, 2.0, settings.Viewer.Scale)
	assert.Equal(t, "docs", settings.Serve.WatchDir)
}

func TestSettingsService_Set_Errors(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	assert.ErrorIs(t, service.Set("no.such.key", "x"), domain.ErrInvalidInput)
	assert.ErrorIs(t, service.Set("serve.inline", "maybe"), domain.ErrInvalidInput)
	assert.ErrorIs(t, service.Set("viewer.scale", "big"), domain.ErrInvalidInput)
}

func TestSettingsService_Keys(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	keys := service.Keys()

	assert.Equal(t, "server.address", keys[0])
	assert.Contains(t, keys, "viewer.extract_text")
	assert.Len(t, keys, len(settingKeys))
}

func TestSettingsService_Value(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())
	require.NoError(t, service.Set("serve.debounce_ms", "250"))
	require.NoError(t, service.Set("viewer.scale", "1.5"))

	tests := []struct {
		key  string
		want string
	}{
		{"server.address", domain.DefaultServerAddress},
		{"serve.debounce_ms", "250"},
		{"serve.poll_ms", "0"},
		{"serve.inline", "false"},
		{"viewer.scale", "1.5"},
		{"viewer.fetch_rate", "20"},
		{"serve.file", ""},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, err := service.Value(tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, key := range service.Keys() {
		_, err := service.Value(key)
		assert.NoError(t, err, key)
	}

	_, err := service.Value("nope")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
