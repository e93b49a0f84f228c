package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/livepreview/internal/core/domain"
)

func TestSettingsCmd_ListsAllKeys(t *testing.T) {
	svc := useMemorySettings(t)

	out, err := execute(t, "settings")

	require.NoError(t, err)
	for _, key := range svc.Keys() {
		assert.Contains(t, out, key)
	}
	assert.Contains(t, out, "(not set)")
	assert.Contains(t, out, "127.0.0.1:3000")
}

func TestSettingsCmd_SetThenGet(t *testing.T) {
	svc := useMemorySettings(t)

	out, err := execute(t, "settings", "viewer.scale", "1.5")
	require.NoError(t, err)
	assert.Contains(t, out, "viewer.scale set to 1.5")

	settings, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, 1.5, settings.Viewer.Scale)

	out, err = execute(t, "settings", "viewer.scale")
	require.NoError(t, err)
	assert.Equal(t, "1.5\n", out)
}

func TestSettingsCmd_RejectsBadInput(t *testing.T) {
	useMemorySettings(t)

	_, err := execute(t, "settings", "serve.inline", "sometimes")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = execute(t, "settings", "no.such.key")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = execute(t, "settings", "a", "b", "c")
	assert.Error(t, err)
}
