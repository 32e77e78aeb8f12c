// Package tui provides an interactive terminal chat client for merkuze.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/merkuze-health/merkuze/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces used by the TUI.
type Ports struct {
	// Chat answers questions. Required.
	Chat driving.ChatService

	// Index reports collection health in the status bar. Optional.
	Index driving.IndexService

	// Document lists uploaded knowledge documents. Optional.
	Document driving.DocumentService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(
	chat driving.ChatService,
	index driving.IndexService,
	document driving.DocumentService,
) *Ports {
	return &Ports{
		Chat:     chat,
		Index:    index,
		Document: document,
	}
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
