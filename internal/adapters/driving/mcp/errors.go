// Package mcp provides an MCP (Model Context Protocol) server adapter for Merkuze.
// It lets AI assistants ask grounded hospital questions and search the index.
package mcp

import "errors"

// ErrMissingChatService is returned when the chat service is not provided.
var ErrMissingChatService = errors.New("mcp: chat service is required")
