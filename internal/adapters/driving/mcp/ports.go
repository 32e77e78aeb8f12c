package mcp

import (
	"github.com/merkuze-health/merkuze/internal/core/ports/driving"
)

// Ports are the services the MCP server exposes. Only Chat is required.
type Ports struct {
	// Chat answers questions and retrieves chunks.
	Chat driving.ChatService

	// Index reports collection statistics.
	Index driving.IndexService

	// Document lists administrator-uploaded documents.
	Document driving.DocumentService
}

// Validate reports a missing chat service.
func (p *Ports) Validate() error {
	if p.Chat == nil {
		return ErrMissingChatService
	}
	return nil
}
