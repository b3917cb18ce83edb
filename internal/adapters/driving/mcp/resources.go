package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/pilah-labs/pilah/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for pilah resources.
	uriScheme = "pilah://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "items",
		Name:        "waste-items",
		Description: "All seeded waste items",
		MIMEType:    "application/json",
	}, s.handleItemsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "categories/{category}",
		Name:        "category-items",
		Description: "Waste items of a single category",
		MIMEType:    "application/json",
	}, s.handleCategoryResource)
}

// handleItemsResource returns every seeded item.
func (s *Server) handleItemsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	items, err := s.items(ctx)
	if err != nil {
		return nil, err
	}
	return jsonResource(req.Params.URI, items)
}

// handleCategoryResource returns the items of the category named in the URI.
func (s *Server) handleCategoryResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	category := extractCategory(req.Params.URI)
	if !category.IsValid() {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	items, err := s.items(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]domain.WasteItem, 0, len(items))
	for _, item := range items {
		if item.Category == category {
			matched = append(matched, item)
		}
	}
	return jsonResource(req.Params.URI, matched)
}

func jsonResource(uri string, items []domain.WasteItem) (*mcp.ReadResourceResult, error) {
	if items == nil {
		items = []domain.WasteItem{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling items: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractCategory extracts the category from a URI like pilah://categories/{category}.
func extractCategory(uri string) domain.Category {
	const prefix = uriScheme + "categories/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	return domain.Category(strings.TrimPrefix(uri, prefix))
}
