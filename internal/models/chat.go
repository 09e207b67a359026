package models

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatTurn is one role-tagged message in a session's history.
type ChatTurn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// ModelRequest is the transient value object handed to the model invoker:
// the accumulated history plus the final user message.
type ModelRequest struct {
	History []ChatTurn
	Message string
}
