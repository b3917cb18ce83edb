// Package mcp provides an MCP (Model Context Protocol) server adapter for pilah.
// It lets AI assistants ask the waste chatbot and browse the seeded items.
package mcp

import "errors"

// ErrMissingChatService is returned when the chat service is not provided.
var ErrMissingChatService = errors.New("mcp: chat service is required")

// ErrInvalidPorts is returned when the ports are nil.
var ErrInvalidPorts = errors.New("mcp: invalid ports configuration")
