package domain

// Role attributes a chat turn to one side of the conversation.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in the simulated assessment conversation.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// UserTurn builds a turn authored by the patient.
func UserTurn(content string) Turn {
	return Turn{Role: RoleUser, Content: content}
}

// AssistantTurn builds a turn authored by the assessment agent.
func AssistantTurn(content string) Turn {
	return Turn{Role: RoleAssistant, Content: content}
}

// IsUser reports whether the turn was written by the patient.
// Any role other than "user" renders as the assistant.
func (t Turn) IsUser() bool {
	return t.Role == RoleUser
}
