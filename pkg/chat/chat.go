package chat

// ChatResponse is the raw completion returned by an LLM backend.
type ChatResponse struct {
	Message string `json:"message,omitempty"`
	Model   string `json:"model,omitempty"`
}

const (
	ChatRoleUser   = "user"      // Player
	ChatRoleAgent  = "assistant" // Game master
	ChatRoleSystem = "system"    // Instructions or client notices
)

// ChatMessage is a single message in the prompt sent to an LLM.
// The shape matches what Ollama, OpenAI and Anthropic all accept.
type ChatMessage struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}
