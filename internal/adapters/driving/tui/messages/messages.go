// Package messages holds the tea.Msg types passed between the app and its
// views. Results of background commands carry their error instead of
// failing the command.
package messages

import "github.com/merkuze-health/merkuze/internal/core/domain"

type ViewType int

const (
	ViewMenu ViewType = iota
	ViewChat
	ViewHelp
	ViewDocuments
	ViewDocContent
)

var viewNames = [...]string{
	ViewMenu:       "menu",
	ViewChat:       "chat",
	ViewHelp:       "help",
	ViewDocuments:  "documents",
	ViewDocContent: "doc_content",
}

func (v ViewType) String() string {
	if v < 0 || int(v) >= len(viewNames) {
		return "unknown"
	}
	return viewNames[v]
}

// ViewChanged asks the app to switch views.
type ViewChanged struct{ View ViewType }

// Quit exits the program.
type Quit struct{}

// ErrorOccurred shows Err in the active view.
type ErrorOccurred struct{ Err error }

type QuestionSubmitted struct{ Question string }

// AnswerReceived is delivered even after the user left the chat view. The
// answer text is always displayable, including the fallback message.
type AnswerReceived struct {
	Question string
	Answer   *domain.Answer
}

// StatsLoaded reports embedder readiness and the active collection.
type StatsLoaded struct {
	Readiness domain.Readiness
	Stats     *domain.IndexStats
	Err       error
}

type DocumentsLoaded struct {
	Documents []domain.KnowledgeDocument
	Err       error
}

type DocumentSelected struct{ Document domain.KnowledgeDocument }

type DocumentContentLoaded struct {
	DocumentID string
	Content    string
	Err        error
}

type DocumentRemoved struct {
	DocumentID string
	Err        error
}
