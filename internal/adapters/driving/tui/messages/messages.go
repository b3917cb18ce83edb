// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/pilah-labs/pilah/internal/core/domain"
)

// QuestionSubmitted is sent when the user presses enter on a question.
type QuestionSubmitted struct {
	Question string
}

// AnswerReceived carries the chatbot's answer back to the model.
// Failures arrive as answers with the Error status.
type AnswerReceived struct {
	Answer domain.Answer
}

// TranscriptCleared is sent after the transcript has been emptied.
type TranscriptCleared struct{}

// ErrorOccurred signals that an error happened outside of an answer.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
