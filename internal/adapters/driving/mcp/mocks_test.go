package mcp

import (
	"context"

	"github.com/pilah-labs/pilah/internal/core/domain"
)

// mockChatService is a mock implementation of driving.ChatService.
type mockChatService struct {
	answer    domain.Answer
	questions []string
}

func (m *mockChatService) Ask(_ context.Context, question string) domain.Answer {
	m.questions = append(m.questions, question)
	answer := m.answer
	answer.Question = question
	return answer
}

func (m *mockChatService) Retrieve(_ context.Context, _ string) ([]domain.IndexedDocument, error) {
	return m.answer.Sources, nil
}

// mockSeedService is a mock implementation of driving.SeedService.
type mockSeedService struct {
	items []domain.WasteItem
	err   error
}

func (m *mockSeedService) Initialise(_ context.Context) (int, error) {
	return 0, m.err
}

func (m *mockSeedService) Items(_ context.Context) ([]domain.WasteItem, error) {
	return m.items, m.err
}

func sampleItems() []domain.WasteItem {
	return []domain.WasteItem{
		{ID: 1, Name: "Kulit pisang", Category: domain.CategoryOrganic, Description: "Bisa dikompos."},
		{ID: 2, Name: "Botol plastik", Category: domain.CategoryNonOrganic, Description: "Bisa didaur ulang."},
		{ID: 3, Name: "Baterai bekas", Category: domain.CategoryB3, Description: "Serahkan ke dropbox B3."},
	}
}
