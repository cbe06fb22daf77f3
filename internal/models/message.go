package models

// Role identifies who produced a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is one conversational turn. Immutable once created; AudioURL is
// set at construction when speech synthesis succeeded for the turn and is
// preserved through persistence.
type Message struct {
	Role     Role   `json:"role"`
	Content  string `json:"content"`
	AudioURL string `json:"audio_url,omitempty"`
}
