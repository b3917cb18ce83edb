package chat

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pilah-labs/pilah/internal/adapters/driving/tui/messages"
	"github.com/pilah-labs/pilah/internal/core/domain"
)

// mockChatService implements driving.ChatService for testing.
type mockChatService struct {
	askFunc   func(ctx context.Context, question string) domain.Answer
	questions []string
}

func (m *mockChatService) Ask(ctx context.Context, question string) domain.Answer {
	m.questions = append(m.questions, question)
	if m.askFunc != nil {
		return m.askFunc(ctx, question)
	}
	return domain.Answer{Question: question, Text: "Masuk ke Organik.", Status: domain.AnswerSuccess}
}

func (m *mockChatService) Retrieve(context.Context, string) ([]domain.IndexedDocument, error) {
	return nil, domain.ErrNoRelevantInformation
}

func typeText(v *View, text string) *View {
	for _, r := range text {
		v, _ = v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return v
}

func sized(v *View) *View {
	v, _ = v.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return v
}

// submit presses enter and feeds the resulting answer back into the view.
func submit(t *testing.T, v *View) *View {
	t.Helper()
	v, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, v.Busy())

	msg := cmd()
	require.IsType(t, messages.AnswerReceived{}, msg)
	v, _ = v.Update(msg)
	return v
}

func TestNewView_Defaults(t *testing.T) {
	v := NewView(nil, nil, nil)

	require.NotNil(t, v)
	assert.NotNil(t, v.styles)
	assert.NotNil(t, v.keymap)
	assert.False(t, v.Ready())
	assert.Equal(t, "Initialising...", v.View())
	assert.NotNil(t, v.Init())
}

func TestView_AskShowsAnswer(t *testing.T) {
	chat := &mockChatService{}
	v := sized(NewView(nil, nil, chat))

	v = typeText(v, "Kulit pisang?")
	v = submit(t, v)

	assert.False(t, v.Busy())
	assert.Equal(t, []string{"Kulit pisang?"}, chat.questions)
	require.Len(t, v.Answers(), 1)
	assert.Equal(t, domain.AnswerSuccess, v.Answers()[0].Status)

	view := v.View()
	assert.Contains(t, view, "> Kulit pisang?")
	assert.Contains(t, view, "[Jawaban] Masuk ke Organik.")
	assert.Equal(t, "", v.input.Value(), "input is cleared after asking")
}

func TestView_NoInformationAndErrorAreTagged(t *testing.T) {
	chat := &mockChatService{askFunc: func(_ context.Context, q string) domain.Answer {
		if q == "plasma" {
			return domain.NoInformationAnswer(q)
		}
		return domain.ErrorAnswer(q, errors.New("quota"))
	}}
	v := sized(NewView(nil, nil, chat))

	v = submit(t, typeText(v, "plasma"))
	v = submit(t, typeText(v, "lain"))

	view := v.View()
	assert.Contains(t, view, "[Info] "+domain.NoInformationText)
	assert.Contains(t, view, "[Galat] Terjadi kesalahan: quota")
	assert.Equal(t, domain.AnswerError, v.statusbar.LastStatus())
}

func TestView_EmptyQuestionIgnored(t *testing.T) {
	v := sized(NewView(nil, nil, &mockChatService{}))

	v = typeText(v, "   ")
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.False(t, v.Busy())
}

func TestView_IgnoresEnterWhileBusy(t *testing.T) {
	v := sized(NewView(nil, nil, &mockChatService{}))

	v = typeText(v, "satu")
	v, first := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, first)

	v = typeText(v, "dua")
	_, second := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, second)
}

func TestView_NilChatServiceAnswersWithError(t *testing.T) {
	v := sized(NewView(nil, nil, nil))

	v = submit(t, typeText(v, "apa?"))

	require.Len(t, v.Answers(), 1)
	assert.Equal(t, domain.AnswerError, v.Answers()[0].Status)
	assert.Contains(t, v.Answers()[0].Text, ErrNoChatService.Error())
}

func TestView_ToggleSources(t *testing.T) {
	chat := &mockChatService{askFunc: func(_ context.Context, q string) domain.Answer {
		return domain.Answer{
			Question: q,
			Text:     "B3.",
			Status:   domain.AnswerSuccess,
			Sources: []domain.IndexedDocument{{
				Content:  "Nama: Baterai bekas\nKategori: B3",
				Metadata: domain.DocumentMetadata{Category: domain.CategoryB3},
			}},
		}
	}}
	v := sized(NewView(nil, nil, chat))
	v = submit(t, typeText(v, "baterai"))
	assert.NotContains(t, v.View(), "[1] Nama: Baterai bekas")

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyCtrlS})

	assert.True(t, v.ShowSources())
	assert.Contains(t, v.View(), "[1] Nama: Baterai bekas (B3)")
}

func TestView_ClearTranscript(t *testing.T) {
	v := sized(NewView(nil, nil, &mockChatService{}))
	v = submit(t, typeText(v, "x"))

	v, cmd := v.Update(tea.KeyMsg{Type: tea.KeyCtrlL})

	require.NotNil(t, cmd)
	assert.IsType(t, messages.TranscriptCleared{}, cmd())
	assert.Empty(t, v.Answers())
	assert.Zero(t, v.statusbar.Answers())
}

func TestView_EscQuits(t *testing.T) {
	v := sized(NewView(nil, nil, nil))

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})

	require.NotNil(t, cmd)
	assert.IsType(t, messages.Quit{}, cmd())
}

func TestView_ErrorOccurred(t *testing.T) {
	v := sized(NewView(nil, nil, nil))

	v, _ = v.Update(messages.ErrorOccurred{Err: errors.New("index gone")})

	assert.Contains(t, v.View(), "Error: index gone")
}

func TestView_WithContextReachesService(t *testing.T) {
	type ctxKey string
	var got context.Context
	chat := &mockChatService{askFunc: func(ctx context.Context, q string) domain.Answer {
		got = ctx
		return domain.NoInformationAnswer(q)
	}}
	ctx := context.WithValue(context.Background(), ctxKey("k"), "v")

	v := sized(NewView(nil, nil, chat).WithContext(ctx))
	submit(t, typeText(v, "x"))

	assert.Equal(t, ctx, got)
}
