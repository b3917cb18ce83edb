// Package chat provides the chatbot view: a scrolling transcript above a
// question input and a status bar.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pilah-labs/pilah/internal/adapters/driving/tui/components/input"
	"github.com/pilah-labs/pilah/internal/adapters/driving/tui/components/status"
	"github.com/pilah-labs/pilah/internal/adapters/driving/tui/keymap"
	"github.com/pilah-labs/pilah/internal/adapters/driving/tui/messages"
	"github.com/pilah-labs/pilah/internal/adapters/driving/tui/styles"
	"github.com/pilah-labs/pilah/internal/core/domain"
	"github.com/pilah-labs/pilah/internal/core/ports/driving"
)

// ErrNoChatService indicates that no chat service was provided.
var ErrNoChatService = errors.New("chat service is required")

// reserved is the number of lines used by header, input and status bar.
const reserved = 7

type entry struct {
	question string
	answer   *domain.Answer
}

// View is the chat view.
type View struct {
	styles     *styles.Styles
	keymap     *keymap.KeyMap
	input      *input.QuestionInput
	transcript viewport.Model
	statusbar  *status.Bar

	chat driving.ChatService
	ctx  context.Context

	entries     []entry
	showSources bool
	busy        bool

	width  int
	height int
	ready  bool
}

// NewView creates a new chat view.
func NewView(s *styles.Styles, km *keymap.KeyMap, chat driving.ChatService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:     s,
		keymap:     km,
		input:      input.NewQuestionInput(s),
		transcript: viewport.New(80, 24-reserved),
		statusbar:  status.NewBar(s, km),
		chat:       chat,
		ctx:        context.Background(),
		width:      80,
		height:     24,
	}
}

// WithContext sets the context passed to the chat service.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AnswerReceived:
		v.handleAnswer(msg.Answer)
		return v, nil

	case messages.ErrorOccurred:
		v.busy = false
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	k := msg.String()

	switch {
	case keymap.Matches(k, v.keymap.Quit):
		return v, func() tea.Msg { return messages.Quit{} }

	case keymap.Matches(k, v.keymap.Ask):
		question := v.input.Value()
		if question == "" || v.busy {
			return v, nil
		}
		v.entries = append(v.entries, entry{question: question})
		v.busy = true
		v.input.Reset()
		v.statusbar.SetState(status.StateThinking)
		v.refresh()
		return v, v.ask(question)

	case keymap.Matches(k, v.keymap.ScrollUp):
		v.transcript.SetYOffset(v.transcript.YOffset - v.transcript.Height/2)
		return v, nil

	case keymap.Matches(k, v.keymap.ScrollDown):
		v.transcript.SetYOffset(v.transcript.YOffset + v.transcript.Height/2)
		return v, nil

	case keymap.Matches(k, v.keymap.ToggleSources):
		v.showSources = !v.showSources
		v.refresh()
		return v, nil

	case keymap.Matches(k, v.keymap.Clear):
		if v.busy {
			return v, nil
		}
		v.entries = nil
		v.statusbar.Clear()
		v.refresh()
		return v, func() tea.Msg { return messages.TranscriptCleared{} }
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// ask calls the chat service off the update loop.
func (v *View) ask(question string) tea.Cmd {
	chat, ctx := v.chat, v.ctx
	return func() tea.Msg {
		if chat == nil {
			return messages.AnswerReceived{Answer: domain.ErrorAnswer(question, ErrNoChatService)}
		}
		return messages.AnswerReceived{Answer: chat.Ask(ctx, question)}
	}
}

func (v *View) handleAnswer(a domain.Answer) {
	v.busy = false
	for i := len(v.entries) - 1; i >= 0; i-- {
		if v.entries[i].answer == nil {
			v.entries[i].answer = &a
			break
		}
	}
	v.statusbar.RecordAnswer(a.Status)
	v.refresh()
}

// refresh re-renders the transcript and keeps the newest entry in view.
func (v *View) refresh() {
	v.transcript.SetContent(v.renderTranscript())
	v.transcript.GotoBottom()
}

func (v *View) renderTranscript() string {
	if len(v.entries) == 0 {
		return v.styles.Muted.Render("Contoh: \"Kulit pisang termasuk sampah apa?\"")
	}

	wrap := lipgloss.NewStyle().Width(v.width - 2)
	blocks := make([]string, 0, len(v.entries))
	for _, e := range v.entries {
		lines := []string{v.styles.Question.Render("> " + e.question)}

		if e.answer == nil {
			lines = append(lines, v.styles.Muted.Render("..."))
		} else {
			style := v.styles.StyleFor(e.answer.Status)
			text := fmt.Sprintf("[%s] %s", styles.Label(e.answer.Status), e.answer.Text)
			lines = append(lines, style.Inherit(wrap).Render(text))
			if v.showSources {
				lines = append(lines, v.renderSources(e.answer.Sources)...)
			}
		}
		blocks = append(blocks, strings.Join(lines, "\n"))
	}
	return strings.Join(blocks, "\n\n")
}

func (v *View) renderSources(docs []domain.IndexedDocument) []string {
	out := make([]string, 0, len(docs))
	for i, d := range docs {
		first, _, _ := strings.Cut(d.Content, "\n")
		out = append(out, v.styles.Muted.Render(
			fmt.Sprintf("  [%d] %s (%s)", i+1, first, d.Metadata.Category)))
	}
	return out
}

// View renders the chat view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		v.styles.Title.Render("Pilah · Chatbot Sampah"),
		"",
		v.transcript.View(),
		"",
		v.input.View(),
		v.statusbar.View(),
	)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)
	v.transcript.Width = width
	v.transcript.Height = max(height-reserved, 3)
	v.refresh()
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Busy returns whether a question is waiting for its answer.
func (v *View) Busy() bool {
	return v.busy
}

// Answers returns the answered entries in order.
func (v *View) Answers() []domain.Answer {
	out := make([]domain.Answer, 0, len(v.entries))
	for _, e := range v.entries {
		if e.answer != nil {
			out = append(out, *e.answer)
		}
	}
	return out
}

// ShowSources returns whether sources are listed under answers.
func (v *View) ShowSources() bool {
	return v.showSources
}
