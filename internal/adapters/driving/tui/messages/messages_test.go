package messages

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/livepreview/internal/core/domain"
)

func TestMessages_AreTeaMessages(t *testing.T) {
	msgs := []tea.Msg{
		PagesCommitted{Generation: 1, Pages: []domain.RenderedPage{{Index: 0}}},
		StatusChanged{Status: domain.PreviewStatus{State: domain.PreviewReady}},
		PositionRequested{Position: domain.ScrollPosition{X: 1, Y: 2}},
		ScrollSettled{Seq: 3},
		ReloadRequested{},
		Quit{},
	}

	for _, msg := range msgs {
		assert.NotNil(t, msg)
	}
}

func TestPagesCommitted_CarriesGeneration(t *testing.T) {
	msg := PagesCommitted{Generation: 4}
	assert.Equal(t, domain.Generation(4), msg.Generation)
	assert.Empty(t, msg.Pages)
}
