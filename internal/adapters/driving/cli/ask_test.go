package cli

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pilah-labs/pilah/internal/core/domain"
)

func TestAsk_Styled(t *testing.T) {
	tests := []struct {
		name     string
		answer   domain.Answer
		expected string
	}{
		{
			name:     "success",
			answer:   domain.Answer{Text: "Masuk ke Organik.", Status: domain.AnswerSuccess},
			expected: "[Jawaban] Masuk ke Organik.",
		},
		{
			name:     "no information",
			answer:   domain.NoInformationAnswer(""),
			expected: "[Info] " + domain.NoInformationText,
		},
		{
			name:     "error",
			answer:   domain.ErrorAnswer("", errors.New("quota")),
			expected: "[Galat] Terjadi kesalahan: quota",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newFakeBackend(t)
			b.chat.answer = tt.answer
			useBackend(t, b)

			out, err := execute(t, "ask", "kulit", "pisang?")

			require.NoError(t, err)
			assert.Contains(t, out, tt.expected)
			assert.Equal(t, []string{"kulit pisang?"}, b.chat.questions)
		})
	}
}

func TestAsk_JSON(t *testing.T) {
	b := newFakeBackend(t)
	b.chat.answer = domain.Answer{
		Text:    "Baterai termasuk B3.",
		Status:  domain.AnswerSuccess,
		Sources: []domain.IndexedDocument{{Content: "Nama: Baterai bekas"}},
	}
	useBackend(t, b)

	out, err := execute(t, "ask", "--json", "baterai?")

	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "baterai?", got["question"])
	assert.Equal(t, "Baterai termasuk B3.", got["answer"])
	assert.Equal(t, "success", got["status"])
	assert.Len(t, got["sources"], 1)
}

func TestAsk_Sources(t *testing.T) {
	b := newFakeBackend(t)
	b.chat.answer = domain.Answer{
		Text:    "B3.",
		Status:  domain.AnswerSuccess,
		Sources: []domain.IndexedDocument{{
			Content:  "Nama: Baterai bekas\nKategori: B3",
			Metadata: domain.DocumentMetadata{Category: domain.CategoryB3},
		}},
	}
	useBackend(t, b)

	out, err := execute(t, "ask", "-s", "baterai?")

	require.NoError(t, err)
	assert.Contains(t, out, "Sources:")
	assert.Contains(t, out, "[1] Nama: Baterai bekas (B3)")
}

func TestAsk_Errors(t *testing.T) {
	t.Run("requires a question", func(t *testing.T) {
		useBackend(t, newFakeBackend(t))

		_, err := execute(t, "ask")
		assert.Error(t, err)

		_, err = execute(t, "ask", "  ")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("chatbot unavailable", func(t *testing.T) {
		b := newFakeBackend(t)
		b.chatErr = domain.ErrEmbeddingUnavailable
		useBackend(t, b)

		_, err := execute(t, "ask", "x")

		assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	})
}

func TestAskCmd_Flags(t *testing.T) {
	assert.NotNil(t, askCmd.Flags().Lookup("json"))
	flag := askCmd.Flags().Lookup("sources")
	require.NotNil(t, flag)
	assert.Equal(t, "s", flag.Shorthand)
}
