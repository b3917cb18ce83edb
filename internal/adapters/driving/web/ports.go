// Package web serves the waste chatbot over HTTP.
// It renders a small HTML form and exposes a JSON API on a goa muxer.
package web

import (
	"errors"

	"github.com/pilah-labs/pilah/internal/core/ports/driving"
)

// ErrMissingChatService is returned when the chat service is not provided.
var ErrMissingChatService = errors.New("web: chat service is required")

// ErrInvalidPorts is returned when the ports are nil.
var ErrInvalidPorts = errors.New("web: invalid ports configuration")

// Ports aggregates the driving ports required by the web server.
type Ports struct {
	// Chat answers questions.
	Chat driving.ChatService

	// Seed lists waste items. Optional.
	Seed driving.SeedService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Chat == nil {
		return ErrMissingChatService
	}
	return nil
}
