package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors_AreDistinct(t *testing.T) {
	assert.NotEqual(t, ErrMissingPreviewCoordinator, ErrMissingBridge)
	assert.Contains(t, ErrMissingPreviewCoordinator.Error(), "tui:")
	assert.Contains(t, ErrMissingBridge.Error(), "tui:")
}
