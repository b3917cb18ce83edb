package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pilah-labs/pilah/internal/adapters/driving/tui/messages"
	"github.com/pilah-labs/pilah/internal/core/domain"
)

// mockChatService implements driving.ChatService for testing.
type mockChatService struct{}

func (mockChatService) Ask(_ context.Context, question string) domain.Answer {
	return domain.NoInformationAnswer(question)
}

func (mockChatService) Retrieve(context.Context, string) ([]domain.IndexedDocument, error) {
	return nil, domain.ErrNoRelevantInformation
}

func TestPorts_Validate(t *testing.T) {
	assert.ErrorIs(t, (*Ports)(nil).Validate(), ErrInvalidPorts)
	assert.ErrorIs(t, (&Ports{}).Validate(), ErrMissingChatService)
	assert.NoError(t, (&Ports{Chat: mockChatService{}}).Validate())
}

func TestNewApp_InvalidPorts(t *testing.T) {
	app, err := NewApp(&Ports{})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingChatService)
	assert.Nil(t, app)
}

func TestApp_Init(t *testing.T) {
	app, err := NewApp(&Ports{Chat: mockChatService{}})
	require.NoError(t, err)

	assert.NotNil(t, app.Init())
}

func TestApp_WindowSizeReachesView(t *testing.T) {
	app, err := NewApp(&Ports{Chat: mockChatService{}})
	require.NoError(t, err)
	assert.False(t, app.Ready())

	model, cmd := app.Update(tea.WindowSizeMsg{Width: 90, Height: 30})

	assert.Nil(t, cmd)
	assert.Same(t, app, model)
	assert.True(t, app.Ready())
	assert.True(t, app.ChatView().Ready())
	assert.Contains(t, app.View(), "Chatbot Sampah")
}

func TestApp_QuitMessageQuits(t *testing.T) {
	app, err := NewApp(&Ports{Chat: mockChatService{}})
	require.NoError(t, err)

	_, cmd := app.Update(messages.Quit{})

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestApp_AskRoundTrip(t *testing.T) {
	app, err := NewApp(&Ports{Chat: mockChatService{}})
	require.NoError(t, err)
	app.SetDimensions(100, 30)

	for _, r := range "plasma" {
		app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	app.Update(cmd())

	answers := app.ChatView().Answers()
	require.Len(t, answers, 1)
	assert.Equal(t, domain.AnswerNoInformation, answers[0].Status)
}
