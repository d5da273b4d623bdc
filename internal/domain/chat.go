package domain

// Role identifies who authored a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is a single caller-supplied conversation turn.
type ChatMessage struct {
	Role      Role   `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp,omitempty"`
}

// ChatRequest is the inbound chat payload. History is ordered oldest first.
type ChatRequest struct {
	Message             string        `json:"message"`
	ConversationHistory []ChatMessage `json:"conversation_history"`
}

const StatusSuccess = "success"

type ChatResponse struct {
	Response string `json:"response"`
	Status   string `json:"status"`
}

type StatusResponse struct {
	Status      string   `json:"status"`
	AIProviders []string `json:"ai_providers"`
	Message     string   `json:"message"`
}
