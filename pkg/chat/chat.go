package chat

const (
	ChatRoleUser   = "user"
	ChatRoleAgent  = "assistant" // game master narration
	ChatRoleSystem = "system"
)

// ChatMessage represents a single chat message in a conversation.
// This shape is defined by Ollama's API and is used to structure messages
// sent to the LLM.
type ChatMessage struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// ChatResponse represents the LLM's reply to a chat request.
type ChatResponse struct {
	Message string `json:"message,omitempty"`
}
