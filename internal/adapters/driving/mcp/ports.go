package mcp

import (
	"github.com/pilah-labs/pilah/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Chat answers waste questions.
	Chat driving.ChatService

	// Seed lists the seeded waste items.
	Seed driving.SeedService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Chat == nil {
		return ErrMissingChatService
	}
	// Seed is optional; item listings are empty without it.
	return nil
}
