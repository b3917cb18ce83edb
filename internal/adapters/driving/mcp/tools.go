package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/pilah-labs/pilah/internal/core/domain"
)

// AskInput is the input schema for the ask_waste tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"a question about waste sorting in Indonesian or English"`
}

// AskOutput is the output schema for the ask_waste tool.
type AskOutput struct {
	Answer  string         `json:"answer"`
	Status  string         `json:"status"`
	Sources []SourceOutput `json:"sources,omitempty"`
}

// SourceOutput is a retrieved document that grounded an answer.
type SourceOutput struct {
	Content  string `json:"content"`
	Category string `json:"category,omitempty"`
	Origin   string `json:"origin,omitempty"`
}

// ListItemsInput is the input schema for the list_waste_items tool.
type ListItemsInput struct {
	Category string `json:"category,omitempty" jsonschema:"only list items in this category (Organik, Non-Organik or B3)"`
}

// ListItemsOutput is the output schema for the list_waste_items tool.
type ListItemsOutput struct {
	Items []ItemOutput `json:"items"`
	Count int          `json:"count"`
}

// ItemOutput is a single seeded waste item.
type ItemOutput struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask_waste",
		Description: "Ask the waste chatbot how an item should be sorted or handled",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_waste_items",
		Description: "List the known waste items with their category",
	}, s.handleListItems)
}

// handleAsk handles the ask_waste tool invocation.
// Chatbot failures are reported in the answer status, not as tool errors.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	question := strings.TrimSpace(input.Question)
	if question == "" {
		return nil, AskOutput{}, errors.New("question is required")
	}

	answer := s.ports.Chat.Ask(ctx, question)

	output := AskOutput{
		Answer:  answer.Text,
		Status:  answer.Status.String(),
		Sources: make([]SourceOutput, len(answer.Sources)),
	}
	for i, doc := range answer.Sources {
		output.Sources[i] = SourceOutput{
			Content:  doc.Content,
			Category: doc.Metadata.Category.String(),
			Origin:   doc.Metadata.Source,
		}
	}

	return nil, output, nil
}

// handleListItems handles the list_waste_items tool invocation.
func (s *Server) handleListItems(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListItemsInput,
) (*mcp.CallToolResult, ListItemsOutput, error) {
	var filter domain.Category
	if input.Category != "" {
		filter = domain.Category(input.Category)
		if !filter.IsValid() {
			return nil, ListItemsOutput{}, fmt.Errorf("unknown category %q", input.Category)
		}
	}

	items, err := s.items(ctx)
	if err != nil {
		return nil, ListItemsOutput{}, err
	}

	output := ListItemsOutput{Items: []ItemOutput{}}
	for _, item := range items {
		if filter != "" && item.Category != filter {
			continue
		}
		output.Items = append(output.Items, ItemOutput{
			Name:        item.Name,
			Category:    item.Category.String(),
			Description: item.Description,
		})
	}
	output.Count = len(output.Items)

	return nil, output, nil
}

// items returns the seeded items, or none when no seed service is wired.
func (s *Server) items(ctx context.Context) ([]domain.WasteItem, error) {
	if s.ports.Seed == nil {
		return nil, nil
	}
	items, err := s.ports.Seed.Items(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing waste items: %w", err)
	}
	return items, nil
}
