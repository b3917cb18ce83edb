package driven

// PromptStore provides access to LLM prompt templates.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Implementations fall back to a built-in default when one exists.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names.
const (
	// PromptChatAnswer answers a waste question from retrieved context.
	// The template uses {context} and {question} placeholders.
	PromptChatAnswer = "chat_answer"
)
