package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyAnswerText(t *testing.T) {
	tests := []struct {
		name string
		text string
		want AnswerStatus
	}{
		{
			name: "plain answer is success",
			text: "Kulit pisang termasuk sampah organik.",
			want: AnswerSuccess,
		},
		{
			name: "not enough information is a warning",
			text: NoInformationText,
			want: AnswerNoInformation,
		},
		{
			name: "model says it does not know",
			text: "Saya tidak tahu jawabannya.",
			want: AnswerNoInformation,
		},
		{
			name: "refusal phrase is case insensitive",
			text: "Maaf, Saya TIDAK TAHU.",
			want: AnswerNoInformation,
		},
		{
			name: "error marker is an error",
			text: "Terjadi kesalahan: connection refused",
			want: AnswerError,
		},
		{
			name: "empty text is success",
			text: "",
			want: AnswerSuccess,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyAnswerText(tt.text))
		})
	}
}

func TestErrorAnswer(t *testing.T) {
	a := ErrorAnswer("apa itu B3?", errors.New("quota exceeded"))

	assert.Equal(t, AnswerError, a.Status)
	assert.Equal(t, "Terjadi kesalahan: quota exceeded", a.Text)
	assert.Equal(t, AnswerError, ClassifyAnswerText(a.Text))
}

func TestNoInformationAnswer(t *testing.T) {
	a := NoInformationAnswer("siapa presiden?")

	assert.Equal(t, AnswerNoInformation, a.Status)
	assert.Contains(t, a.Text, NoInformationMarker)
	assert.Equal(t, AnswerNoInformation, ClassifyAnswerText(a.Text))
}
