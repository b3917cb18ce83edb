// Package styles provides colour themes and styling for the TUI and the
// styled CLI output.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/pilah-labs/pilah/internal/core/domain"
)

// Theme defines the colour palette.
type Theme struct {
	// Primary is the main accent colour.
	Primary lipgloss.Color

	// Secondary is used for questions.
	Secondary lipgloss.Color

	// Foreground is the default text colour.
	Foreground lipgloss.Color

	// Muted is for less important text.
	Muted lipgloss.Color

	// Success marks grounded answers.
	Success lipgloss.Color

	// Warning marks answers without enough information.
	Warning lipgloss.Color

	// Error marks failed answers.
	Error lipgloss.Color

	// Border is the border colour.
	Border lipgloss.Color
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() *Theme {
	return &Theme{
		Primary:    lipgloss.Color("#40A02B"), // Leaf green
		Secondary:  lipgloss.Color("#06B6D4"), // Cyan
		Foreground: lipgloss.Color("#CDD6F4"), // Light gray
		Muted:      lipgloss.Color("#6C7086"), // Medium gray
		Success:    lipgloss.Color("#A6E3A1"), // Green
		Warning:    lipgloss.Color("#F9E2AF"), // Yellow
		Error:      lipgloss.Color("#F38BA8"), // Red
		Border:     lipgloss.Color("#45475A"), // Border gray
	}
}

// Styles contains pre-configured lipgloss styles.
type Styles struct {
	theme *Theme

	// Title style for headers.
	Title lipgloss.Style

	// Question style for the user's questions in the transcript.
	Question lipgloss.Style

	// Normal style for regular text.
	Normal lipgloss.Style

	// Muted style for less important text.
	Muted lipgloss.Style

	// Error style for failed answers.
	Error lipgloss.Style

	// Success style for grounded answers.
	Success lipgloss.Style

	// Warning style for answers without enough information.
	Warning lipgloss.Style

	// InputField style for input areas.
	InputField lipgloss.Style

	// StatusBar style for the status bar.
	StatusBar lipgloss.Style

	// Help style for help text.
	Help lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	return &Styles{
		theme: theme,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Primary),

		Question: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Secondary),

		Normal: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Error: lipgloss.NewStyle().
			Foreground(theme.Error),

		Success: lipgloss.NewStyle().
			Foreground(theme.Success),

		Warning: lipgloss.NewStyle().
			Foreground(theme.Warning),

		InputField: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),

		StatusBar: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Background(lipgloss.Color("#181825")).
			Padding(0, 1),

		Help: lipgloss.NewStyle().
			Foreground(theme.Muted),
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the theme used by these styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}

// StyleFor returns the style an answer with the given status is rendered in.
func (s *Styles) StyleFor(status domain.AnswerStatus) lipgloss.Style {
	switch status {
	case domain.AnswerSuccess:
		return s.Success
	case domain.AnswerNoInformation:
		return s.Warning
	case domain.AnswerError:
		return s.Error
	default:
		return s.Normal
	}
}

// StyleFor returns the default-theme style for status.
func StyleFor(status domain.AnswerStatus) lipgloss.Style {
	return DefaultStyles().StyleFor(status)
}

// Label returns the short tag shown next to an answer.
func Label(status domain.AnswerStatus) string {
	switch status {
	case domain.AnswerSuccess:
		return "Jawaban"
	case domain.AnswerNoInformation:
		return "Info"
	case domain.AnswerError:
		return "Galat"
	default:
		return string(status)
	}
}
