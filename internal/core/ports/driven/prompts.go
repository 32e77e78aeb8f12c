package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names.
const (
	// PromptPersona is the assistant persona instruction. No placeholders.
	PromptPersona = "persona"

	// PromptAnswer is the grounding template. It expects three %s placeholders
	// in order: persona, retrieved context, user question.
	PromptAnswer = "answer"
)
