package domain

import "time"

type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

type ChatMessage struct {
	ID        string      `json:"id"`
	PageID    string      `json:"pageId"`
	BoardID   string      `json:"boardId,omitempty"`
	Role      ChatRole    `json:"role"`
	Content   string      `json:"content,omitempty"`
	ImageURLs []string    `json:"imageUrls,omitempty"`
	Status    BoardStatus `json:"status,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
}

type ChatStore interface {
	AddMessage(m *ChatMessage) error
	UpdateMessage(m *ChatMessage) error
	ListMessages(pageID string) ([]ChatMessage, error)
	DeleteMessagesByPage(pageID string) error
}
