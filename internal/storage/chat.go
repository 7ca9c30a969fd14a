package storage

import (
	"encoding/json"
	"time"

	"infinicanvas/internal/domain"
)

// ChatStore implements domain.ChatStore using SQLite.
type ChatStore struct {
	db *DB
}

func NewChatStore(db *DB) *ChatStore {
	return &ChatStore{db: db}
}

func (s *ChatStore) AddMessage(m *domain.ChatMessage) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	urls, err := marshalURLs(m.ImageURLs)
	if err != nil {
		return err
	}
	_, err = s.db.conn.Exec(
		`INSERT INTO chat_messages (id, page_id, board_id, role, content, image_urls_json, status, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.PageID, m.BoardID, m.Role, m.Content, urls, m.Status, m.CreatedAt,
	)
	return err
}

func (s *ChatStore) UpdateMessage(m *domain.ChatMessage) error {
	urls, err := marshalURLs(m.ImageURLs)
	if err != nil {
		return err
	}
	_, err = s.db.conn.Exec(
		`UPDATE chat_messages SET content = ?, image_urls_json = ?, status = ? WHERE id = ?`,
		m.Content, urls, m.Status, m.ID,
	)
	return err
}

func (s *ChatStore) ListMessages(pageID string) ([]domain.ChatMessage, error) {
	rows, err := s.db.conn.Query(
		`SELECT id, page_id, board_id, role, content, image_urls_json, status, created_at FROM chat_messages WHERE page_id = ? ORDER BY created_at ASC, rowid ASC`,
		pageID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []domain.ChatMessage
	for rows.Next() {
		var m domain.ChatMessage
		var urls string
		if err := rows.Scan(&m.ID, &m.PageID, &m.BoardID, &m.Role, &m.Content, &urls, &m.Status, &m.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(urls), &m.ImageURLs); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func (s *ChatStore) DeleteMessagesByPage(pageID string) error {
	_, err := s.db.conn.Exec(`DELETE FROM chat_messages WHERE page_id = ?`, pageID)
	return err
}

func marshalURLs(urls []string) (string, error) {
	if urls == nil {
		urls = []string{}
	}
	b, err := json.Marshal(urls)
	return string(b), err
}
