package domain

import "strings"

// AnswerStatus tags a chatbot answer for presentation.
type AnswerStatus string

// Answer statuses.
const (
	// AnswerSuccess is a grounded answer from the model.
	AnswerSuccess AnswerStatus = "success"

	// AnswerNoInformation means nothing relevant was found or the model declined.
	AnswerNoInformation AnswerStatus = "no_information"

	// AnswerError means retrieval or generation failed.
	AnswerError AnswerStatus = "error"
)

// String returns the string representation.
func (s AnswerStatus) String() string {
	return string(s)
}

// Marker phrases carried in answer text.
const (
	// NoInformationMarker appears in every NoInformation answer.
	NoInformationMarker = "tidak memiliki informasi cukup"

	// DontKnowMarker is an alternative refusal phrase models produce.
	DontKnowMarker = "tidak tahu"

	// ErrorMarker prefixes every Error answer.
	ErrorMarker = "Terjadi kesalahan"
)

// NoInformationText is the reply used when retrieval finds nothing.
const NoInformationText = "Maaf, saya tidak memiliki informasi cukup untuk menjawab pertanyaan tersebut."

// Answer is the result of asking the chatbot a question.
type Answer struct {
	Question string            `json:"question"`
	Text     string            `json:"answer"`
	Status   AnswerStatus      `json:"status"`
	Sources  []IndexedDocument `json:"sources,omitempty"`
}

// ClassifyAnswerText derives a status from answer text alone.
// Refusal phrases win over the error marker.
func ClassifyAnswerText(text string) AnswerStatus {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, NoInformationMarker), strings.Contains(lower, DontKnowMarker):
		return AnswerNoInformation
	case strings.Contains(text, ErrorMarker):
		return AnswerError
	default:
		return AnswerSuccess
	}
}

// ErrorAnswer builds an Error answer whose text carries the error.
func ErrorAnswer(question string, err error) Answer {
	return Answer{
		Question: question,
		Text:     ErrorMarker + ": " + err.Error(),
		Status:   AnswerError,
	}
}

// NoInformationAnswer builds the standard NoInformation answer.
func NoInformationAnswer(question string) Answer {
	return Answer{
		Question: question,
		Text:     NoInformationText,
		Status:   AnswerNoInformation,
	}
}
