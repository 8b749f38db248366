package store

// RoleAssistant marks generated content. The history only ever holds assistant entries.
const RoleAssistant = "assistant"

// User is both the wire format and the persisted format. Timestamps are Unix milliseconds.
type User struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Username      string `json:"username"`
	Password      string `json:"password"`
	TotalSessions int    `json:"totalSessions"`
	MasteredCards int    `json:"masteredCards"`
	CreatedAt     int64  `json:"createdAt"`
}

type ChatMessage struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Mode      string `json:"mode"`
	Topic     string `json:"topic"`
	Timestamp int64  `json:"timestamp"`
	OK        bool   `json:"ok"` // false when Content is the generation fallback text
}

// Snapshot is the full persisted state.
type Snapshot struct {
	Users   []User
	History map[string][]ChatMessage
}
