package cli

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/livepreview/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/livepreview/internal/core/services"
)

// useMemorySettings injects an in-memory settings service for one test.
func useMemorySettings(t *testing.T) *services.SettingsService {
	t.Helper()
	svc := services.NewSettingsService(memory.NewConfigStore())
	prev := settingsService
	settingsService = svc
	t.Cleanup(func() { settingsService = prev })
	return svc
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

// syncBuffer is a bytes.Buffer safe for a writer and a poller.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestRootCmd_RegistersCommands(t *testing.T) {
	names := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}

	for _, want := range []string{"serve", "view", "settings", "version"} {
		assert.True(t, names[want], "missing command %q", want)
	}
}

func TestRootCmd_GlobalFlags(t *testing.T) {
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("verbose"))
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("config-dir"))
}

func TestSetup_BuildsSettingsFromConfigDir(t *testing.T) {
	prev := settingsService
	prevDir := configDir
	settingsService = nil
	configDir = t.TempDir()
	t.Cleanup(func() {
		settingsService = prev
		configDir = prevDir
	})

	require.NoError(t, setup(rootCmd, nil))

	require.NotNil(t, settingsService)
	settings, err := loadSettings()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:3000", settings.Viewer.ServerAddress)
}

func TestSetup_KeepsInjectedService(t *testing.T) {
	svc := useMemorySettings(t)

	require.NoError(t, setup(rootCmd, nil))

	assert.Same(t, svc, settingsService)
}

func TestLoadSettings_NotConfigured(t *testing.T) {
	prev := settingsService
	settingsService = nil
	t.Cleanup(func() { settingsService = prev })

	_, err := loadSettings()
	assert.Error(t, err)
}

func TestSetVersion(t *testing.T) {
	original := version
	t.Cleanup(func() { version = original })

	SetVersion("")
	assert.Equal(t, original, version)

	SetVersion("1.2.3")
	assert.Equal(t, "1.2.3", version)
}
