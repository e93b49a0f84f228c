package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScrollPosition_JSONShape(t *testing.T) {
	data, err := json.Marshal(ScrollPosition{X: 120, Y: 880})
	require.NoError(t, err)

	assert.JSONEq(t, `{"x":120,"y":880}`, string(data))
}

func TestScrollPosition_Clamp(t *testing.T) {
	tests := []struct {
		name       string
		pos        ScrollPosition
		maxX, maxY int
		want       ScrollPosition
	}{
		{"inside", ScrollPosition{X: 3, Y: 5}, 10, 10, ScrollPosition{X: 3, Y: 5}},
		{"beyond", ScrollPosition{X: 30, Y: 50}, 10, 20, ScrollPosition{X: 10, Y: 20}},
		{"negative", ScrollPosition{X: -1, Y: -7}, 10, 10, ScrollPosition{}},
		{"negative maxima", ScrollPosition{X: 4, Y: 4}, -1, -5, ScrollPosition{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.pos.Clamp(tt.maxX, tt.maxY))
		})
	}
}
