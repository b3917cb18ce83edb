// Package driving holds the inbound ports of pilah: the sorter loop, the
// seed and index maintenance services, the chatbot and settings.
//
// The CLI, TUI, web and MCP adapters call these; internal/core/services
// implements them.
package driving
