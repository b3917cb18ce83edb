package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pilah-labs/pilah/internal/core/domain"
)

func TestServer_handleAsk(t *testing.T) {
	ctx := context.Background()

	t.Run("returns tagged answer with sources", func(t *testing.T) {
		mockChat := &mockChatService{
			answer: domain.Answer{
				Text:    "Baterai termasuk B3.",
				Status:  domain.AnswerSuccess,
				Sources: []domain.IndexedDocument{{
					Content:  "Nama: Baterai bekas",
					Metadata: domain.DocumentMetadata{
						Source:   domain.SourceWasteItems,
						Category: domain.CategoryB3,
					},
				}},
			},
		}

		server, err := NewServer(&Ports{Chat: mockChat})
		require.NoError(t, err)

		_, output, err := server.handleAsk(ctx, nil, AskInput{Question: "  baterai?  "})

		require.NoError(t, err)
		assert.Equal(t, []string{"baterai?"}, mockChat.questions)
		assert.Equal(t, "Baterai termasuk B3.", output.Answer)
		assert.Equal(t, "success", output.Status)
		require.Len(t, output.Sources, 1)
		assert.Equal(t, "B3", output.Sources[0].Category)
		assert.Equal(t, domain.SourceWasteItems, output.Sources[0].Origin)
	})

	t.Run("no information is not a tool error", func(t *testing.T) {
		mockChat := &mockChatService{answer: domain.NoInformationAnswer("")}
		server, err := NewServer(&Ports{Chat: mockChat})
		require.NoError(t, err)

		_, output, err := server.handleAsk(ctx, nil, AskInput{Question: "plasma"})

		require.NoError(t, err)
		assert.Equal(t, "no_information", output.Status)
		assert.Equal(t, domain.NoInformationText, output.Answer)
		assert.Empty(t, output.Sources)
	})

	t.Run("empty question returns error", func(t *testing.T) {
		mockChat := &mockChatService{}
		server, err := NewServer(&Ports{Chat: mockChat})
		require.NoError(t, err)

		_, _, err = server.handleAsk(ctx, nil, AskInput{Question: "   "})

		require.Error(t, err)
		assert.Empty(t, mockChat.questions)
	})
}

func TestServer_handleListItems(t *testing.T) {
	ctx := context.Background()

	t.Run("lists all items", func(t *testing.T) {
		ports := &Ports{Chat: &mockChatService{}, Seed: &mockSeedService{items: sampleItems()}}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, output, err := server.handleListItems(ctx, nil, ListItemsInput{})

		require.NoError(t, err)
		assert.Equal(t, 3, output.Count)
		assert.Equal(t, "Kulit pisang", output.Items[0].Name)
		assert.Equal(t, "Organik", output.Items[0].Category)
	})

	t.Run("filters by category", func(t *testing.T) {
		ports := &Ports{Chat: &mockChatService{}, Seed: &mockSeedService{items: sampleItems()}}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, output, err := server.handleListItems(ctx, nil, ListItemsInput{Category: "B3"})

		require.NoError(t, err)
		require.Equal(t, 1, output.Count)
		assert.Equal(t, "Baterai bekas", output.Items[0].Name)
	})

	t.Run("unknown category returns error", func(t *testing.T) {
		ports := &Ports{Chat: &mockChatService{}, Seed: &mockSeedService{items: sampleItems()}}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, _, err = server.handleListItems(ctx, nil, ListItemsInput{Category: "Kaca"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "Kaca")
	})

	t.Run("nil seed service returns empty list", func(t *testing.T) {
		server, err := NewServer(&Ports{Chat: &mockChatService{}})
		require.NoError(t, err)

		_, output, err := server.handleListItems(ctx, nil, ListItemsInput{})

		require.NoError(t, err)
		assert.Zero(t, output.Count)
		assert.NotNil(t, output.Items)
	})

	t.Run("returns error on seed failure", func(t *testing.T) {
		ports := &Ports{Chat: &mockChatService{}, Seed: &mockSeedService{err: errors.New("database locked")}}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, _, err = server.handleListItems(ctx, nil, ListItemsInput{})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "database locked")
	})
}
